package deck

// Suit represents a card suit
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Suits lists all suits in enumeration order. Scoring tie-breaks
// follow this order, so it is part of the rules, not just cosmetics.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Symbol returns the unicode symbol for a suit
func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank in the 32-card Schwimmen deck
type Rank string

const (
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

// Ranks lists all ranks in ascending order
var Ranks = []Rank{Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// Value returns the point value of the rank: 7-10 face value,
// face cards count 10, Aces count 11.
func (r Rank) Value() int {
	switch r {
	case Seven:
		return 7
	case Eight:
		return 8
	case Nine:
		return 9
	case Ten, Jack, Queen, King:
		return 10
	case Ace:
		return 11
	default:
		return 0
	}
}

// Card represents a playing card. Cards are value-only and immutable;
// identity within a shuffled sequence is by ID.
type Card struct {
	Suit Suit   `json:"suit"`
	Rank Rank   `json:"rank"`
	ID   string `json:"id"`
}

// NewCard creates a new card with its canonical "<suit>-<rank>" ID
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank, ID: string(suit) + "-" + string(rank)}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return string(c.Rank) + c.Suit.Symbol()
}

// Value returns the point value of the card
func (c Card) Value() int {
	return c.Rank.Value()
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}
