// Package engine is the authoritative room state machine. Apply is pure:
// it never touches I/O and returns the next state plus the events the
// caller should broadcast. The room actor owns persistence and fan-out.
package engine

import (
	"errors"
)

var ErrRoomFull = errors.New("room is full")
var ErrUnknownPlayer = errors.New("unknown player")
var ErrPlayerEliminated = errors.New("player is eliminated")
var ErrBetsClosed = errors.New("bets are closed for this round")
var ErrInvalidBet = errors.New("invalid bet")
var ErrUnsupportedCommand = errors.New("unsupported command")

// StartingMoney is every player's pool on first join.
const StartingMoney = 1_000_000

// BetStep is the smallest unit a bet can move by.
const BetStep = 25_000

type CommandType string

const (
	CmdJoin       CommandType = "Join"
	CmdStartGame  CommandType = "StartGame"
	CmdUpdateBet  CommandType = "UpdateBet"
	CmdConfirmBet CommandType = "ConfirmBet"
	CmdReveal     CommandType = "Reveal"
	CmdAdvance    CommandType = "Advance"
	CmdKick       CommandType = "Kick"
)

type Command struct {
	Type   CommandType
	ConnID string         // acting connection
	Name   string         // Join: display name
	Bet    map[string]int // UpdateBet: option letter -> amount
	Target string         // Kick: connection id of the target
}

type EventType string

const (
	EvtPlayerJoined     EventType = "PlayerJoined"
	EvtPlayerReattached EventType = "PlayerReattached"
	EvtGameStarted      EventType = "GameStarted"
	EvtBetUpdated       EventType = "BetUpdated"
	EvtBetConfirmed     EventType = "BetConfirmed"
	EvtRoundRevealed    EventType = "RoundRevealed"
	EvtRoundAdvanced    EventType = "RoundAdvanced"
	EvtGameFinished     EventType = "GameFinished"
	EvtPlayerKicked     EventType = "PlayerKicked"
)

type Event struct {
	Type      EventType
	ConnID    string
	OldConnID string // PlayerReattached: the stale connection being replaced
}

// Apply runs one command against the room state. Invalid transitions that
// the protocol treats as idempotent (double reveal, advance when finished,
// start when already playing) return no events and no error, so the caller
// broadcasts nothing. Real faults come back as sentinel errors.
func Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {

	case CmdJoin:
		return applyJoin(s, cmd)

	case CmdStartGame:
		if s.Status != StatusWaiting {
			return nil, s, nil
		}
		next := s
		next.Status = StatusPlaying
		next.QuestionIndex = 0
		next.Revealed = ""
		return []Event{{Type: EvtGameStarted}}, next, nil

	case CmdUpdateBet:
		p, i := s.playerByConn(cmd.ConnID)
		if p == nil {
			return nil, s, ErrUnknownPlayer
		}
		if p.Status != PlayerActive {
			return nil, s, ErrPlayerEliminated
		}
		if s.Revealed != "" {
			return nil, s, ErrBetsClosed
		}
		next := s
		next.Players = clonePlayers(s.Players)
		next.Players[i].CurrentBet = sanitizeBet(cmd.Bet)
		return []Event{{Type: EvtBetUpdated, ConnID: cmd.ConnID}}, next, nil

	case CmdConfirmBet:
		p, i := s.playerByConn(cmd.ConnID)
		if p == nil {
			return nil, s, ErrUnknownPlayer
		}
		if p.Status != PlayerActive {
			return nil, s, ErrPlayerEliminated
		}
		if s.Revealed != "" {
			return nil, s, ErrBetsClosed
		}
		q, ok := s.CurrentQuestion()
		if !ok {
			return nil, s, ErrBetsClosed
		}
		if err := checkBet(p.CurrentBet, p.Money, q.MaxOptionsToBet); err != nil {
			return nil, s, err
		}
		next := s
		next.Players = clonePlayers(s.Players)
		next.Players[i].HasConfirmed = true
		return []Event{{Type: EvtBetConfirmed, ConnID: cmd.ConnID}}, next, nil

	case CmdReveal:
		if s.Status != StatusPlaying || s.Revealed != "" {
			return nil, s, nil
		}
		q, ok := s.CurrentQuestion()
		if !ok {
			return nil, s, nil
		}
		next := s
		next.Players = Settle(s.Players, q.CorrectLetter())
		next.Revealed = q.CorrectLetter()
		return []Event{{Type: EvtRoundRevealed}}, next, nil

	case CmdAdvance:
		if s.Status != StatusPlaying || s.Revealed == "" {
			return nil, s, nil
		}
		next := s
		next.Players = clonePlayers(s.Players)
		if s.QuestionIndex+1 >= len(s.Questions) {
			next.Status = StatusFinished
			markWinners(next.Players)
			return []Event{{Type: EvtGameFinished}}, next, nil
		}
		next.QuestionIndex = s.QuestionIndex + 1
		next.Revealed = ""
		for i := range next.Players {
			if next.Players[i].Status != PlayerActive {
				continue
			}
			next.Players[i].CurrentBet = map[string]int{}
			next.Players[i].HasConfirmed = false
		}
		return []Event{{Type: EvtRoundAdvanced}}, next, nil

	case CmdKick:
		p, i := s.playerByConn(cmd.Target)
		if p == nil {
			// Stale connection id (target already reconnected or left).
			return nil, s, nil
		}
		next := s
		players := clonePlayers(s.Players)
		next.Players = append(players[:i], players[i+1:]...)
		return []Event{{Type: EvtPlayerKicked, ConnID: cmd.Target}}, next, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func applyJoin(s State, cmd Command) ([]Event, State, error) {
	// Same name in the same room means reconnection: rebind the connection,
	// keep money, status and the pending bet.
	for i, p := range s.Players {
		if p.Name == cmd.Name {
			next := s
			next.Players = clonePlayers(s.Players)
			old := next.Players[i].ConnID
			next.Players[i].ConnID = cmd.ConnID
			return []Event{{Type: EvtPlayerReattached, ConnID: cmd.ConnID, OldConnID: old}}, next, nil
		}
	}

	if s.MaxPlayers > 0 && len(s.Players) >= s.MaxPlayers {
		return nil, s, ErrRoomFull
	}

	next := s
	next.Players = clonePlayers(s.Players)
	next.NextPlayerID = s.NextPlayerID + 1
	next.Players = append(next.Players, Player{
		ID:         s.NextPlayerID,
		ConnID:     cmd.ConnID,
		Name:       cmd.Name,
		Money:      StartingMoney,
		Status:     PlayerActive,
		CurrentBet: map[string]int{},
	})
	return []Event{{Type: EvtPlayerJoined, ConnID: cmd.ConnID}}, next, nil
}

// sanitizeBet copies the client's distribution, dropping non-positive
// amounts so settlement can never mint money from a negative entry.
func sanitizeBet(bet map[string]int) map[string]int {
	out := make(map[string]int, len(bet))
	for letter, amount := range bet {
		if amount <= 0 {
			continue
		}
		out[letter] = amount
	}
	return out
}

// checkBet enforces the confirm-time rules: the whole pool allocated, at
// most maxOptions options carrying money, amounts in BetStep multiples.
// Unconfirmed partial bets stay legal at settlement time.
func checkBet(bet map[string]int, money, maxOptions int) error {
	total := 0
	nonzero := 0
	for _, amount := range bet {
		if amount < 0 || amount%BetStep != 0 {
			return ErrInvalidBet
		}
		if amount > 0 {
			nonzero++
		}
		total += amount
	}
	if total != money {
		return ErrInvalidBet
	}
	if nonzero > maxOptions {
		return ErrInvalidBet
	}
	return nil
}
