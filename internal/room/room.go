// Package room runs one game session as a single-writer actor: every
// mutation and broadcast happens on the room goroutine, so the engine
// state needs no locks and events from one connection stay in order.
package room

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/moneydrop/moneydrop-backend/internal/bank"
	"github.com/moneydrop/moneydrop-backend/internal/engine"
	"github.com/moneydrop/moneydrop-backend/internal/types"
)

// KickedMessage is shown to a player removed by the host.
const KickedMessage = "Has estat expulsat de la sala pel presentador."

type Msg interface{ isRoomMsg() }

// Attach registers a connection for broadcasts without creating a player
// (the host's connection on room creation). The current snapshot is sent
// to the outbox immediately.
type Attach struct {
	ConnID string
	Outbox chan types.ServerMessage
}

func (Attach) isRoomMsg() {}

// Join adds a player, or rebinds the connection of an existing player
// with the same name (reconnection), then broadcasts the full state.
type Join struct {
	ConnID string
	Name   string
	Outbox chan types.ServerMessage
}

func (Join) isRoomMsg() {}

type FromClient struct {
	Cmd engine.Command
}

func (FromClient) isRoomMsg() {}

type Leave struct{ ConnID string }

func (Leave) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// View reflects internal state without data races (tests only).
type View struct {
	Version    int
	NumClients int
	State      engine.State
}

type Room struct {
	code    string
	inbox   chan Msg
	state   engine.State
	version int
	clients map[string]chan types.ServerMessage
	idleTTL time.Duration
	onIdle  func()
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewRoom starts the room goroutine. onIdle is called (once, from the room
// goroutine) when the room has sat idle with no clients for idleTTL; the
// owner should then forget the room.
func NewRoom(parent context.Context, initial engine.State, idleTTL time.Duration, onIdle func(), log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		code:    initial.Code,
		inbox:   make(chan Msg, 64),
		state:   initial,
		clients: make(map[string]chan types.ServerMessage),
		idleTTL: idleTTL,
		onIdle:  onIdle,
		log:     log.With(zap.String("room", initial.Code)),
		ctx:     ctx,
		cancel:  cancel,
	}

	go r.loop()
	return r
}

func (r *Room) Code() string { return r.code }

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	idle := time.NewTimer(r.idleTTL)
	defer idle.Stop()

	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case <-idle.C:
			if len(r.clients) == 0 {
				r.log.Info("room idle, expiring")
				if r.onIdle != nil {
					r.onIdle()
				}
				r.shutdown()
				return
			}
			idle.Reset(r.idleTTL)

		case m := <-r.inbox:
			if _, ok := m.(Shutdown); ok {
				r.shutdown()
				return
			}
			r.handle(m)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(r.idleTTL)
		}
	}
}

func (r *Room) handle(m Msg) {
	switch msg := m.(type) {
	case Attach:
		// Register + send the current snapshot immediately, sender only.
		r.register(msg.ConnID, msg.Outbox)
		r.sendTo(msg.ConnID, types.ServerMessage{Type: types.EvStateUpdate, Version: r.version, Payload: r.snapshot()})

	case Join:
		events, next, err := engine.Apply(r.state, engine.Command{Type: engine.CmdJoin, ConnID: msg.ConnID, Name: msg.Name})
		if err != nil {
			select {
			case msg.Outbox <- errorMessage(err):
			default:
			}
			close(msg.Outbox)
			return
		}
		r.state = next
		r.version++
		for _, ev := range events {
			if ev.Type == engine.EvtPlayerReattached && ev.OldConnID != ev.ConnID {
				// The old connection is stale now; stop addressing it.
				if old, ok := r.clients[ev.OldConnID]; ok {
					close(old)
					delete(r.clients, ev.OldConnID)
				}
			}
		}
		r.register(msg.ConnID, msg.Outbox)
		r.broadcast(types.ServerMessage{Type: types.EvStateUpdate, Version: r.version, Payload: r.snapshot()})
		r.log.Info("player joined", zap.String("name", msg.Name), zap.Int("players", len(r.state.Players)))

	case FromClient:
		events, next, err := engine.Apply(r.state, msg.Cmd)
		if err != nil {
			r.sendTo(msg.Cmd.ConnID, errorMessage(err))
			return
		}
		if len(events) == 0 {
			// Idempotent no-op (double reveal, advance when finished...).
			return
		}
		r.state = next
		r.version++
		for _, ev := range events {
			r.publish(ev)
		}

	case Leave:
		// A disconnect detaches the connection but keeps the player record,
		// so a later join with the same name reconnects.
		if ch, ok := r.clients[msg.ConnID]; ok {
			close(ch)
			delete(r.clients, msg.ConnID)
		}

	case GetState:
		msg.Reply <- View{Version: r.version, NumClients: len(r.clients), State: r.state}
	}
}

// publish picks the broadcast scope for one engine event.
func (r *Room) publish(ev engine.Event) {
	switch ev.Type {
	case engine.EvtGameStarted, engine.EvtRoundAdvanced, engine.EvtGameFinished:
		r.broadcast(types.ServerMessage{Type: types.EvStateUpdate, Version: r.version, Payload: r.snapshot()})

	case engine.EvtBetUpdated:
		// Ack the sender only; other players never see pending bets.
		r.sendTo(ev.ConnID, types.ServerMessage{Type: types.EvBetSaved, Payload: types.BetSavedPayload{OK: true}})

	case engine.EvtBetConfirmed:
		r.broadcast(types.ServerMessage{Type: types.EvPlayersUpdate, Version: r.version, Payload: types.RosterPayload{Players: r.state.Players}})

	case engine.EvtRoundRevealed:
		r.broadcast(types.ServerMessage{Type: types.EvStateUpdate, Version: r.version, Payload: types.RevealPayload{
			Players:        r.state.Players,
			RevealedAnswer: r.state.Revealed,
		}})

	case engine.EvtPlayerKicked:
		if target, ok := r.clients[ev.ConnID]; ok {
			select {
			case target <- types.ServerMessage{Type: types.EvKicked, Payload: types.KickedPayload{Message: KickedMessage}}:
			default:
			}
			close(target)
			delete(r.clients, ev.ConnID)
		}
		r.broadcast(types.ServerMessage{Type: types.EvPlayersUpdate, Version: r.version, Payload: types.RosterPayload{Players: r.state.Players}})
		r.log.Info("player kicked", zap.String("conn", ev.ConnID))
	}
}

func (r *Room) snapshot() types.StatePayload {
	var current *bank.Question
	if r.state.Status == engine.StatusPlaying {
		if q, ok := r.state.CurrentQuestion(); ok {
			current = &q
		}
	}
	var revealed *string
	if r.state.Revealed != "" {
		v := r.state.Revealed
		revealed = &v
	}
	return types.StatePayload{
		RoomCode:             r.state.Code,
		Status:               r.state.Status,
		Players:              r.state.Players,
		CurrentQuestionIndex: r.state.QuestionIndex,
		CurrentQuestion:      current,
		TotalQuestions:       len(r.state.Questions),
		Questions:            r.state.Questions,
		RevealedAnswer:       revealed,
	}
}

// register records a connection's outbox. The room owns every channel it
// holds: a replaced registration is closed here, and every other removal
// path (leave, kick, reattach, slow drop, shutdown) closes before deleting,
// so a channel the room let go of can never be sent to again. Callers must
// hand in a fresh channel per Attach/Join, never a previously closed one.
func (r *Room) register(connID string, outbox chan types.ServerMessage) {
	if old, ok := r.clients[connID]; ok && old != outbox {
		close(old)
	}
	r.clients[connID] = outbox
}

func (r *Room) sendTo(connID string, msg types.ServerMessage) {
	ch, ok := r.clients[connID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		close(ch)
		delete(r.clients, connID)
	}
}

func (r *Room) broadcast(msg types.ServerMessage) {
	for id, ch := range r.clients {
		select {
		case ch <- msg:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
	r.cancel()
}

func errorMessage(err error) types.ServerMessage {
	return types.ServerMessage{Type: types.EvError, Payload: types.ErrorPayload{Message: err.Error()}}
}
