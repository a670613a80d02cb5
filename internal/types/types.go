package types

import (
	"github.com/moneydrop/moneydrop-backend/internal/bank"
	"github.com/moneydrop/moneydrop-backend/internal/engine"
)

// Inbound event names.
const (
	EvCreateRoom   = "CREATE_ROOM"
	EvJoinRoom     = "JOIN_ROOM"
	EvStartGame    = "START_GAME"
	EvUpdateBet    = "UPDATE_BET"
	EvConfirmBet   = "CONFIRM_BET"
	EvRevealResult = "REVEAL_RESULT"
	EvNextQuestion = "NEXT_QUESTION"
	EvKickPlayer   = "KICK_PLAYER"
)

// Outbound event names.
const (
	EvStateUpdate   = "STATE_UPDATE"
	EvPlayersUpdate = "PLAYERS_UPDATE"
	EvBetSaved      = "BET_SAVED"
	EvKicked        = "KICKED"
	EvError         = "ERROR"
)

type ClientMessage struct {
	Type         string         `json:"type"`
	HostName     string         `json:"hostName,omitempty"`
	MaxPlayers   int            `json:"maxPlayers,omitempty"`
	RoomCode     string         `json:"roomCode,omitempty"`
	PlayerName   string         `json:"playerName,omitempty"`
	Bet          map[string]int `json:"bet,omitempty"`
	ConnectionID string         `json:"connectionId,omitempty"`
}

// ServerMessage is the outbound envelope. Payloads are full or partial
// snapshots the client merges shallowly; last write wins.
type ServerMessage struct {
	Type    string `json:"type"`
	Version int    `json:"version,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// StatePayload is the full room snapshot.
type StatePayload struct {
	RoomCode             string          `json:"roomCode"`
	Status               engine.Status   `json:"status"`
	Players              []engine.Player `json:"players"`
	CurrentQuestionIndex int             `json:"currentQuestionIndex"`
	CurrentQuestion      *bank.Question  `json:"currentQuestion,omitempty"`
	TotalQuestions       int             `json:"totalQuestions"`
	Questions            []bank.Question `json:"questions,omitempty"`
	RevealedAnswer       *string         `json:"revealedAnswer"`
}

// RosterPayload carries only the player list (confirm-bet, kick cleanup).
type RosterPayload struct {
	Players []engine.Player `json:"players"`
}

// RevealPayload carries the settled roster plus the correct letter.
type RevealPayload struct {
	Players        []engine.Player `json:"players"`
	RevealedAnswer string          `json:"revealedAnswer"`
}

type BetSavedPayload struct {
	OK bool `json:"ok"`
}

type KickedPayload struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
