package engine

import (
	"time"

	"github.com/moneydrop/moneydrop-backend/internal/bank"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

type PlayerStatus string

const (
	PlayerActive     PlayerStatus = "active"
	PlayerEliminated PlayerStatus = "eliminated"
	PlayerWinner     PlayerStatus = "winner"
)

type Player struct {
	ID           int            `json:"id"`
	ConnID       string         `json:"connectionId"`
	Name         string         `json:"name"`
	Money        int            `json:"money"`
	Status       PlayerStatus   `json:"status"`
	CurrentBet   map[string]int `json:"currentBet"`
	HasConfirmed bool           `json:"hasConfirmed"`
}

// State is one room's complete authoritative state. Questions are shared
// read-only; everything else belongs to this room alone. The round
// sub-state is carried by Revealed: empty while betting is open, the
// correct letter once the round has been resolved.
type State struct {
	Code          string
	HostName      string
	MaxPlayers    int
	Status        Status
	QuestionIndex int
	Revealed      string
	Players       []Player
	Questions     []bank.Question
	CreatedAt     time.Time
	NextPlayerID  int
}

func NewState(code, hostName string, maxPlayers int, questions []bank.Question) State {
	return State{
		Code:         code,
		HostName:     hostName,
		MaxPlayers:   maxPlayers,
		Status:       StatusWaiting,
		Players:      []Player{},
		Questions:    questions,
		CreatedAt:    time.Now(),
		NextPlayerID: 1,
	}
}

func (s State) CurrentQuestion() (bank.Question, bool) {
	if s.QuestionIndex < 0 || s.QuestionIndex >= len(s.Questions) {
		return bank.Question{}, false
	}
	return s.Questions[s.QuestionIndex], true
}

func (s State) playerByConn(connID string) (*Player, int) {
	for i := range s.Players {
		if s.Players[i].ConnID == connID {
			return &s.Players[i], i
		}
	}
	return nil, -1
}

func clonePlayers(players []Player) []Player {
	out := make([]Player, len(players))
	copy(out, players)
	return out
}
