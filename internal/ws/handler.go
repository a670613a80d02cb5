// Package ws is the event gateway: one websocket per connection, one named
// event per message. Inbound events map to hub lookups or room commands;
// outbound traffic is whatever the room actor puts on this connection's
// outbox. Reads have no deadline — a round simply waits for the host.
package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/moneydrop/moneydrop-backend/internal/engine"
	"github.com/moneydrop/moneydrop-backend/internal/hub"
	"github.com/moneydrop/moneydrop-backend/internal/room"
	"github.com/moneydrop/moneydrop-backend/internal/types"
)

func Handler(h *hub.Hub, log *zap.Logger, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := randID(8)
		clog := log.With(zap.String("conn", connID))
		clog.Debug("connection open")

		// The room this connection is attached to, if any. Only the room
		// actor writes to an outbox; the handler replies to protocol errors
		// directly on the socket so a closed outbox can never be hit here.
		var current *room.Room
		defer func() {
			if current != nil {
				current.Inbox() <- room.Leave{ConnID: connID}
			}
			clog.Debug("connection closed")
		}()

		// The room owns each outbox and closes it whenever it drops the
		// registration (leave, kick, reattach, slow drop). Every Attach or
		// Join therefore hands over a fresh channel with its own writer;
		// a closed channel is never re-registered and the old writer just
		// drains out.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		startWriter := func(out <-chan types.ServerMessage) {
			go func() {
				for msg := range out {
					payload, err := json.Marshal(msg)
					if err != nil {
						continue
					}
					ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
					_ = conn.Write(ctx, websocket.MessageText, payload)
					cancel()
				}
			}()
		}

		// Reader loop: per-connection FIFO is preserved because every
		// command is forwarded from this single loop in receive order.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			switch cm.Type {
			case types.EvCreateRoom:
				if current != nil {
					writeError(r.Context(), conn, "already in a room")
					continue
				}
				reply := make(chan hub.CreateResult, 1)
				h.Inbox() <- hub.CreateRoom{HostName: cm.HostName, MaxPlayers: cm.MaxPlayers, Reply: reply}
				res := <-reply
				if res.Err != nil {
					writeError(r.Context(), conn, res.Err.Error())
					continue
				}
				current = res.Room
				out := make(chan types.ServerMessage, 16)
				startWriter(out)
				current.Inbox() <- room.Attach{ConnID: connID, Outbox: out}

			case types.EvJoinRoom:
				rm := findRoom(h, cm.RoomCode)
				if rm == nil {
					writeError(r.Context(), conn, "room not found")
					continue
				}
				if current != nil && current != rm {
					current.Inbox() <- room.Leave{ConnID: connID}
				}
				current = rm
				out := make(chan types.ServerMessage, 16)
				startWriter(out)
				rm.Inbox() <- room.Join{ConnID: connID, Name: cm.PlayerName, Outbox: out}

			default:
				cmd, ok := toCommand(cm, connID)
				if !ok {
					writeError(r.Context(), conn, "unknown event type")
					continue
				}
				rm := findRoom(h, cm.RoomCode)
				if rm == nil {
					writeError(r.Context(), conn, "room not found")
					continue
				}
				rm.Inbox() <- room.FromClient{Cmd: cmd}
			}
		}
	}
}

func findRoom(h *hub.Hub, code string) *room.Room {
	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
	return <-reply
}

func toCommand(m types.ClientMessage, connID string) (engine.Command, bool) {
	switch m.Type {
	case types.EvStartGame:
		return engine.Command{Type: engine.CmdStartGame, ConnID: connID}, true
	case types.EvUpdateBet:
		return engine.Command{Type: engine.CmdUpdateBet, ConnID: connID, Bet: m.Bet}, true
	case types.EvConfirmBet:
		return engine.Command{Type: engine.CmdConfirmBet, ConnID: connID}, true
	case types.EvRevealResult:
		return engine.Command{Type: engine.CmdReveal, ConnID: connID}, true
	case types.EvNextQuestion:
		return engine.Command{Type: engine.CmdAdvance, ConnID: connID}, true
	case types.EvKickPlayer:
		return engine.Command{Type: engine.CmdKick, ConnID: connID, Target: m.ConnectionID}, true
	default:
		return engine.Command{}, false
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, message string) {
	payload, err := json.Marshal(types.ServerMessage{
		Type:    types.EvError,
		Payload: types.ErrorPayload{Message: message},
	})
	if err != nil {
		return
	}
	_ = conn.Write(ctx, websocket.MessageText, payload)
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
