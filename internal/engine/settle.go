package engine

// Settle computes the post-round projection for every player. Money on the
// correct option comes back in full, money on wrong options is lost, money
// never placed stays untouched: newMoney = betOnCorrect + (money - totalBet).
// A player dropping to zero or below is eliminated for good. Eliminated
// players pass through unchanged so the roster stays complete.
//
// Pure: the input slice is not mutated; the caller persists the result.
func Settle(players []Player, correctLetter string) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = p
		if p.Status != PlayerActive {
			continue
		}

		totalBet := 0
		for _, amount := range p.CurrentBet {
			totalBet += amount
		}
		betOnCorrect := p.CurrentBet[correctLetter]
		newMoney := betOnCorrect + (p.Money - totalBet)
		if newMoney < 0 {
			// Over-allocated bets can only lose; never show negative money.
			newMoney = 0
		}

		out[i].Money = newMoney
		if newMoney <= 0 {
			out[i].Status = PlayerEliminated
		}
	}
	return out
}

// markWinners flags the surviving players holding the largest positive
// pool once the game is finished. Mutates in place; callers pass a clone.
func markWinners(players []Player) {
	best := 0
	for _, p := range players {
		if p.Status == PlayerActive && p.Money > best {
			best = p.Money
		}
	}
	if best <= 0 {
		return
	}
	for i := range players {
		if players[i].Status == PlayerActive && players[i].Money == best {
			players[i].Status = PlayerWinner
		}
	}
}
