package engine

import (
	"errors"
	"testing"

	"github.com/moneydrop/moneydrop-backend/internal/bank"
)

func testQuestions(t *testing.T) []bank.Question {
	t.Helper()
	qs, err := bank.Default()
	if err != nil {
		t.Fatalf("load default bank: %v", err)
	}
	return qs
}

func playingState(t *testing.T) State {
	t.Helper()
	s := NewState("AB12CD", "Hosta", 8, testQuestions(t))
	_, s, err := Apply(s, Command{Type: CmdStartGame})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func join(t *testing.T, s State, connID, name string) State {
	t.Helper()
	_, next, err := Apply(s, Command{Type: CmdJoin, ConnID: connID, Name: name})
	if err != nil {
		t.Fatalf("join %s: %v", name, err)
	}
	return next
}

func containsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func TestStartGame(t *testing.T) {
	s := NewState("AB12CD", "Hosta", 2, testQuestions(t))

	events, next, err := Apply(s, Command{Type: CmdStartGame})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if next.Status != StatusPlaying || next.QuestionIndex != 0 {
		t.Fatalf("want playing at question 0, got %s/%d", next.Status, next.QuestionIndex)
	}
	if !containsEvent(events, EvtGameStarted) {
		t.Fatalf("expected EvtGameStarted")
	}

	// Starting twice is a no-op, not an error.
	events, again, err := Apply(next, Command{Type: CmdStartGame})
	if err != nil || len(events) != 0 || again.Status != StatusPlaying {
		t.Fatalf("second start should be a silent no-op, got events=%v err=%v", events, err)
	}
}

func TestJoinReattachPreservesPlayerState(t *testing.T) {
	s := playingState(t)
	s = join(t, s, "conn-1", "Ana")

	_, s, err := Apply(s, Command{Type: CmdUpdateBet, ConnID: "conn-1", Bet: map[string]int{"A": 250_000}})
	if err != nil {
		t.Fatalf("update bet: %v", err)
	}

	events, next, err := Apply(s, Command{Type: CmdJoin, ConnID: "conn-2", Name: "Ana"})
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if !containsEvent(events, EvtPlayerReattached) {
		t.Fatalf("expected EvtPlayerReattached, got %v", events)
	}
	if len(next.Players) != 1 {
		t.Fatalf("rejoin must not create a second player, roster=%d", len(next.Players))
	}
	p := next.Players[0]
	if p.ConnID != "conn-2" {
		t.Fatalf("want rebound conn-2, got %s", p.ConnID)
	}
	if p.Money != StartingMoney || p.Status != PlayerActive || p.CurrentBet["A"] != 250_000 {
		t.Fatalf("reconnect must preserve money/status/bet, got %+v", p)
	}
}

func TestJoinRespectsMaxPlayers(t *testing.T) {
	s := NewState("AB12CD", "Hosta", 1, testQuestions(t))
	s = join(t, s, "conn-1", "Ana")

	_, _, err := Apply(s, Command{Type: CmdJoin, ConnID: "conn-2", Name: "Ben"})
	if !errors.Is(err, ErrRoomFull) {
		t.Fatalf("want ErrRoomFull, got %v", err)
	}
}

func TestConfirmBetValidation(t *testing.T) {
	cases := []struct {
		name    string
		bet     map[string]int
		wantErr error
	}{
		{
			name: "full allocation across allowed options",
			bet:  map[string]int{"A": 500_000, "B": 250_000, "C": 250_000},
		},
		{
			name:    "under-allocation rejected at confirm",
			bet:     map[string]int{"A": 500_000},
			wantErr: ErrInvalidBet,
		},
		{
			name:    "too many options carry money",
			bet:     map[string]int{"A": 250_000, "B": 250_000, "C": 250_000, "D": 250_000},
			wantErr: ErrInvalidBet,
		},
		{
			name:    "amount not a step multiple",
			bet:     map[string]int{"A": 999_999, "B": 1},
			wantErr: ErrInvalidBet,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := playingState(t)
			s = join(t, s, "conn-1", "Ana")
			_, s, err := Apply(s, Command{Type: CmdUpdateBet, ConnID: "conn-1", Bet: tc.bet})
			if err != nil {
				t.Fatalf("update bet: %v", err)
			}

			_, next, err := Apply(s, Command{Type: CmdConfirmBet, ConnID: "conn-1"})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if !next.Players[0].HasConfirmed {
				t.Fatalf("expected hasConfirmed=true")
			}
		})
	}
}

func TestRevealIsIdempotent(t *testing.T) {
	s := playingState(t)
	s = join(t, s, "conn-1", "Ana")

	events, s, err := Apply(s, Command{Type: CmdReveal})
	if err != nil || !containsEvent(events, EvtRoundRevealed) {
		t.Fatalf("first reveal: events=%v err=%v", events, err)
	}
	if s.Revealed != "A" {
		t.Fatalf("question 1 correct letter is A, got %q", s.Revealed)
	}

	events, again, err := Apply(s, Command{Type: CmdReveal})
	if err != nil || len(events) != 0 {
		t.Fatalf("second reveal should be a silent no-op, got events=%v err=%v", events, err)
	}
	if again.Revealed != s.Revealed {
		t.Fatalf("second reveal changed state")
	}
}

func TestBetsClosedAfterReveal(t *testing.T) {
	s := playingState(t)
	s = join(t, s, "conn-1", "Ana")
	_, s, _ = Apply(s, Command{Type: CmdReveal})

	_, _, err := Apply(s, Command{Type: CmdUpdateBet, ConnID: "conn-1", Bet: map[string]int{"A": 25_000}})
	if !errors.Is(err, ErrBetsClosed) {
		t.Fatalf("want ErrBetsClosed, got %v", err)
	}
	_, _, err = Apply(s, Command{Type: CmdConfirmBet, ConnID: "conn-1"})
	if !errors.Is(err, ErrBetsClosed) {
		t.Fatalf("want ErrBetsClosed, got %v", err)
	}
}

func TestAdvanceResetsRoundState(t *testing.T) {
	s := playingState(t)
	s = join(t, s, "conn-1", "Ana")

	_, s, err := Apply(s, Command{Type: CmdUpdateBet, ConnID: "conn-1", Bet: map[string]int{"A": 1_000_000}})
	if err != nil {
		t.Fatalf("update bet: %v", err)
	}
	_, s, err = Apply(s, Command{Type: CmdConfirmBet, ConnID: "conn-1"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	// Advance before reveal must not skip the reveal step.
	events, unchanged, err := Apply(s, Command{Type: CmdAdvance})
	if err != nil || len(events) != 0 || unchanged.QuestionIndex != 0 {
		t.Fatalf("advance while betting should be a no-op, got events=%v err=%v", events, err)
	}

	_, s, _ = Apply(s, Command{Type: CmdReveal})
	events, s, err = Apply(s, Command{Type: CmdAdvance})
	if err != nil || !containsEvent(events, EvtRoundAdvanced) {
		t.Fatalf("advance: events=%v err=%v", events, err)
	}
	if s.QuestionIndex != 1 || s.Revealed != "" {
		t.Fatalf("want question 1 with no revealed answer, got %d/%q", s.QuestionIndex, s.Revealed)
	}
	p := s.Players[0]
	if len(p.CurrentBet) != 0 || p.HasConfirmed {
		t.Fatalf("active player round state not reset: %+v", p)
	}
}

func TestAdvancePastLastQuestionFinishesOnce(t *testing.T) {
	s := playingState(t)
	s = join(t, s, "conn-1", "Ana")
	s.QuestionIndex = len(s.Questions) - 1

	_, s, _ = Apply(s, Command{Type: CmdReveal})
	events, s, err := Apply(s, Command{Type: CmdAdvance})
	if err != nil || !containsEvent(events, EvtGameFinished) {
		t.Fatalf("finish: events=%v err=%v", events, err)
	}
	if s.Status != StatusFinished {
		t.Fatalf("want finished, got %s", s.Status)
	}
	if s.Players[0].Status != PlayerWinner {
		t.Fatalf("sole survivor should be marked winner, got %s", s.Players[0].Status)
	}

	// Never regresses to playing.
	events, again, err := Apply(s, Command{Type: CmdAdvance})
	if err != nil || len(events) != 0 || again.Status != StatusFinished {
		t.Fatalf("advance after finish should be a no-op, got events=%v err=%v status=%s", events, err, again.Status)
	}
}

func TestKickByStaleConnIDIsNoOp(t *testing.T) {
	// Scenario: Ana joined as conn-1, reconnected as conn-2; the host still
	// holds conn-1 and kicks it. Nothing must happen to the new record.
	s := playingState(t)
	s = join(t, s, "conn-1", "Ana")
	s = join(t, s, "conn-2", "Ana")

	events, next, err := Apply(s, Command{Type: CmdKick, Target: "conn-1"})
	if err != nil || len(events) != 0 {
		t.Fatalf("stale kick should be a silent no-op, got events=%v err=%v", events, err)
	}
	if len(next.Players) != 1 || next.Players[0].ConnID != "conn-2" {
		t.Fatalf("stale kick must not touch the reconnected player, roster=%+v", next.Players)
	}
}

func TestKickRemovesPlayer(t *testing.T) {
	s := playingState(t)
	s = join(t, s, "conn-1", "Ana")
	s = join(t, s, "conn-2", "Ben")

	events, next, err := Apply(s, Command{Type: CmdKick, Target: "conn-1"})
	if err != nil || !containsEvent(events, EvtPlayerKicked) {
		t.Fatalf("kick: events=%v err=%v", events, err)
	}
	if len(next.Players) != 1 || next.Players[0].Name != "Ben" {
		t.Fatalf("want only Ben left, got %+v", next.Players)
	}
}

func TestEliminatedPlayerTakesNoFurtherBets(t *testing.T) {
	s := playingState(t)
	s = join(t, s, "conn-1", "Ana")
	s.Players[0].Status = PlayerEliminated

	_, _, err := Apply(s, Command{Type: CmdUpdateBet, ConnID: "conn-1", Bet: map[string]int{"A": 25_000}})
	if !errors.Is(err, ErrPlayerEliminated) {
		t.Fatalf("want ErrPlayerEliminated, got %v", err)
	}
}
