package game

import "schwimmen/internal/deck"

// Player represents a seated player. Seating order is fixed for the
// lifetime of a room; eliminated players keep their seat but never act,
// never deal and never receive cards again.
type Player struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	IsAI           bool        `json:"isAI"`
	Lives          int         `json:"lives"`
	Hand           []deck.Card `json:"hand"`
	IsSwimming     bool        `json:"isSwimming"`
	IsEliminated   bool        `json:"isEliminated"`
	IsDealer       bool        `json:"isDealer"`
	HasClosedRound bool        `json:"hasClosedRound"`
}

// IsActive returns true if the player is still in the game
func (p *Player) IsActive() bool {
	return !p.IsEliminated
}

// HandCard returns the hand card with the given id, if present
func (p *Player) HandCard(id string) (deck.Card, bool) {
	for _, c := range p.Hand {
		if c.ID == id {
			return c, true
		}
	}
	return deck.Card{}, false
}
