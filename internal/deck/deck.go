package deck

import rand "math/rand/v2"

// Size is the number of cards in a full Schwimmen deck (4 suits x 8 ranks)
const Size = 32

// New creates the fixed 32-card deck in deterministic suit-major order
func New() []Card {
	cards := make([]Card, 0, Size)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}

// Shuffled returns a uniform Fisher-Yates permutation of cards drawn
// from rng. The input slice is not mutated.
func Shuffled(cards []Card, rng *rand.Rand) []Card {
	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
