// Package hub owns the process-wide registry of rooms. It is a single
// actor: all map access happens on the hub goroutine, so room codes stay
// unique without locks.
package hub

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/moneydrop/moneydrop-backend/internal/bank"
	"github.com/moneydrop/moneydrop-backend/internal/engine"
	"github.com/moneydrop/moneydrop-backend/internal/room"
)

var ErrCodeExhausted = errors.New("could not generate a unique room code")

const codeAttempts = 5

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	HostName   string
	MaxPlayers int
	Reply      chan CreateResult
}

type CreateResult struct {
	Code string
	Room *room.Room
	Err  error
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox     chan HubMsg
	rooms     map[string]*room.Room
	questions []bank.Question
	idleTTL   time.Duration
	log       *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewHub(parent context.Context, questions []bank.Question, idleTTL time.Duration, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:     make(chan HubMsg, 64),
		rooms:     make(map[string]*room.Room),
		questions: questions,
		idleTTL:   idleTTL,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				msg.Reply <- h.create(msg)

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // May be nil

			case RemoveRoom:
				delete(h.rooms, msg.Code)

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Inbox() <- room.Shutdown{}
				}
				clear(h.rooms)
				h.cancel()
			}
		}
	}
}

func (h *Hub) create(msg CreateRoom) CreateResult {
	code, err := h.freshCode()
	if err != nil {
		return CreateResult{Err: err}
	}

	st := engine.NewState(code, msg.HostName, msg.MaxPlayers, h.questions)
	onIdle := func() { h.removeAsync(code) }
	rm := room.NewRoom(h.ctx, st, h.idleTTL, onIdle, h.log)
	h.rooms[code] = rm
	h.log.Info("room created", zap.String("room", code), zap.String("host", msg.HostName))
	return CreateResult{Code: code, Room: rm}
}

// removeAsync forgets a room from outside the hub goroutine (the room's
// idle expiry). If the hub is already gone its inbox is no longer drained,
// so the send must not block the expiring room forever.
func (h *Hub) removeAsync(code string) {
	select {
	case h.inbox <- RemoveRoom{Code: code}:
	case <-h.ctx.Done():
	}
}

// freshCode regenerates on collision, bounded so a pathological registry
// cannot spin forever.
func (h *Hub) freshCode() (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}
		if _, taken := h.rooms[code]; !taken {
			return code, nil
		}
		h.log.Warn("room code collision, regenerating", zap.String("room", code))
	}
	return "", ErrCodeExhausted
}

// GenerateCode returns a 6-char uppercase alphanumeric room code.
func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}
