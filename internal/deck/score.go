package deck

import "fmt"

// HandSize is the number of cards in a scorable hand
const HandSize = 3

// ThreeOfAKindScore is the score for three cards of identical rank.
// It beats every possible suit sum (max 31) but is not itself a sum.
const ThreeOfAKindScore = 30.5

// ScoreResult holds a hand's score and the subset of cards it came from
type ScoreResult struct {
	Score        float64 `json:"score"`
	ScoringCards []Card  `json:"scoringCards"`
}

// Score computes the Schwimmen score of a 3-card hand.
//
// Three identical ranks score 30.5 with the whole hand as the scoring
// subset. Otherwise the score is the best per-suit point sum; when no two
// cards share a suit this degenerates to the single highest-value card.
// Equal suit sums are resolved by suit enumeration order, which only
// affects which cards are reported as scoring.
func Score(hand []Card) (ScoreResult, error) {
	if len(hand) != HandSize {
		return ScoreResult{}, fmt.Errorf("hand must have exactly %d cards, got %d", HandSize, len(hand))
	}

	if hand[0].Rank == hand[1].Rank && hand[1].Rank == hand[2].Rank {
		return ScoreResult{
			Score:        ThreeOfAKindScore,
			ScoringCards: append([]Card(nil), hand...),
		}, nil
	}

	var best ScoreResult
	for _, suit := range Suits {
		sum := 0
		var cards []Card
		for _, c := range hand {
			if c.Suit == suit {
				sum += c.Value()
				cards = append(cards, c)
			}
		}
		if float64(sum) > best.Score {
			best = ScoreResult{Score: float64(sum), ScoringCards: cards}
		}
	}
	return best, nil
}

// HasThreeAces returns true iff the hand is exactly three Aces
func HasThreeAces(hand []Card) bool {
	if len(hand) != HandSize {
		return false
	}
	for _, c := range hand {
		if !c.IsAce() {
			return false
		}
	}
	return true
}
