package game

import (
	"fmt"
	rand "math/rand/v2"

	"schwimmen/internal/deck"
)

// DealCards shuffles cards once and deals 3 to every non-dealer,
// non-eliminated player in seating order. A non-eliminated dealer gets
// no hand yet; instead two reserved 3-card sets are returned for the
// dealer-decision step. The second return value is the remaining deck.
func DealCards(players []*Player, cards []deck.Card, rng *rand.Rand) (*[2][]deck.Card, []deck.Card) {
	shuffled := deck.Shuffled(cards, rng)
	next := 0
	draw := func(n int) []deck.Card {
		hand := make([]deck.Card, n)
		copy(hand, shuffled[next:next+n])
		next += n
		return hand
	}

	var dealer *Player
	for _, p := range players {
		p.Hand = nil
		if p.IsDealer {
			dealer = p
			continue
		}
		if p.IsEliminated {
			continue
		}
		p.Hand = draw(deck.HandSize)
	}

	var dealerSets *[2][]deck.Card
	if dealer != nil && !dealer.IsEliminated {
		dealerSets = &[2][]deck.Card{draw(deck.HandSize), draw(deck.HandSize)}
	}

	return dealerSets, shuffled[next:]
}

// DetermineRoundResults scores every active player holding a full hand
// and decides who loses a life this round.
//
// If any active player holds three aces they win outright and every
// other active player loses a life regardless of score. Otherwise every
// active player at the minimum score loses; ties at the minimum all
// lose, there is no single-loser tie-break.
func DetermineRoundResults(players []*Player) (RoundResult, error) {
	result := RoundResult{Scores: make(map[string]deck.ScoreResult)}

	var scored []*Player
	for _, p := range players {
		if p.IsEliminated || len(p.Hand) != deck.HandSize {
			continue
		}
		sr, err := deck.Score(p.Hand)
		if err != nil {
			return RoundResult{}, fmt.Errorf("scoring player %s: %w", p.ID, err)
		}
		result.Scores[p.ID] = sr
		scored = append(scored, p)

		if deck.HasThreeAces(p.Hand) && result.ThreeAcesPlayerID == "" {
			result.ThreeAcesPlayerID = p.ID
		}
	}

	if result.ThreeAcesPlayerID != "" {
		for _, p := range scored {
			if p.ID != result.ThreeAcesPlayerID {
				result.LoserIDs = append(result.LoserIDs, p.ID)
			}
		}
		return result, nil
	}

	minScore := -1.0
	for _, p := range scored {
		if s := result.Scores[p.ID].Score; minScore < 0 || s < minScore {
			minScore = s
		}
	}
	for _, p := range scored {
		if result.Scores[p.ID].Score == minScore {
			result.LoserIDs = append(result.LoserIDs, p.ID)
		}
	}
	return result, nil
}

// UpdatePlayerLives applies the round's losses. A player reaching zero
// lives starts swimming (one more chance); a swimming player losing
// again is eliminated with lives pinned at zero. Non-losers are
// untouched.
func UpdatePlayerLives(players []*Player, loserIDs []string) {
	losers := make(map[string]bool, len(loserIDs))
	for _, id := range loserIDs {
		losers[id] = true
	}

	for _, p := range players {
		if !losers[p.ID] || p.IsEliminated {
			continue
		}
		if p.IsSwimming {
			p.IsSwimming = false
			p.IsEliminated = true
			p.Lives = 0
			continue
		}
		p.Lives--
		if p.Lives <= 0 {
			p.Lives = 0
			p.IsSwimming = true
		}
	}
}

// NextDealerIndex picks the next dealer: the first loser in seating
// order still in the game, falling back to the first non-eliminated
// player when every loser was just eliminated. Returns -1 if nobody is
// left, which callers treat as game end.
func NextDealerIndex(players []*Player, loserIDs []string) int {
	for _, id := range loserIDs {
		for i, p := range players {
			if p.ID == id && !p.IsEliminated {
				return i
			}
		}
	}
	for i, p := range players {
		if !p.IsEliminated {
			return i
		}
	}
	return -1
}

// ShouldGameEnd reports whether at most one player remains in the game
func ShouldGameEnd(players []*Player) bool {
	active := 0
	for _, p := range players {
		if !p.IsEliminated {
			active++
		}
	}
	return active <= 1
}

// Winner returns the last non-eliminated player, or nil if the game is
// still going (or nobody survived)
func Winner(players []*Player) *Player {
	var winner *Player
	for _, p := range players {
		if p.IsEliminated {
			continue
		}
		if winner != nil {
			return nil
		}
		winner = p
	}
	return winner
}

// NextPlayerIndex returns the circular successor of seat i among n seats
func NextPlayerIndex(i, n int) int {
	return (i + 1) % n
}
