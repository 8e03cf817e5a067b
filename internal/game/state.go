package game

import "schwimmen/internal/deck"

// Phase identifies where a room is in the round lifecycle
type Phase string

const (
	PhaseSetup          Phase = "setup"
	PhaseDealing        Phase = "dealing"
	PhaseDealerDecision Phase = "dealer-decision"
	PhasePlaying        Phase = "playing"
	PhaseLastRound      Phase = "last-round"
	PhaseScoring        Phase = "scoring"
	PhaseRoundEnd       Phase = "round-end"
	PhaseGameEnd        Phase = "game-end"
)

// ActionType identifies a player action
type ActionType string

const (
	ActionSkip        ActionType = "skip"
	ActionExchangeOne ActionType = "exchange-one"
	ActionExchangeAll ActionType = "exchange-all"
	ActionCloseRound  ActionType = "close-round"
)

// Valid returns true for the four known action types
func (a ActionType) Valid() bool {
	switch a {
	case ActionSkip, ActionExchangeOne, ActionExchangeAll, ActionCloseRound:
		return true
	}
	return false
}

// ActionRecord captures the most recent applied action so clients can
// animate it
type ActionRecord struct {
	PlayerID   string      `json:"playerId"`
	Action     ActionType  `json:"action"`
	CardGiven  *deck.Card  `json:"cardGiven,omitempty"`
	CardTaken  *deck.Card  `json:"cardTaken,omitempty"`
	CardsGiven []deck.Card `json:"cardsGiven,omitempty"`
	CardsTaken []deck.Card `json:"cardsTaken,omitempty"`
}

// RoundResult is the outcome of scoring one round
type RoundResult struct {
	LoserIDs          []string                    `json:"loserIds"`
	ThreeAcesPlayerID string                      `json:"threeAcesPlayerId,omitempty"`
	Scores            map[string]deck.ScoreResult `json:"scores"`
}

// State is the sole mutable aggregate for one room. The room's mutex
// serializes every mutation; rule functions read and return values but
// never retain references into it.
type State struct {
	Players            []*Player        `json:"players"`
	PublicCards        []deck.Card      `json:"publicCards"`
	Deck               []deck.Card      `json:"-"`
	CurrentPlayerIndex int              `json:"currentPlayerIndex"`
	DealerIndex        int              `json:"dealerIndex"`
	Phase              Phase            `json:"phase"`
	RoundNumber        int              `json:"roundNumber"`
	DealerSets         *[2][]deck.Card  `json:"-"`
	SeenSetIndex       int              `json:"-"`
	ActedAfterClose    map[string]bool  `json:"-"`
	RoundClosedBy      string           `json:"roundClosedByPlayerId,omitempty"`
	LastAction         *ActionRecord    `json:"lastAction,omitempty"`
	LastRoundResult    *RoundResult     `json:"lastRoundResult,omitempty"`
	TurnsTaken         int              `json:"-"`
	WinnerID           string           `json:"winnerId,omitempty"`
}

// NewState seats the given players and returns a fresh room state in
// the setup phase. Seat 0 is the initial dealer.
func NewState(players []*Player) *State {
	if len(players) > 0 {
		players[0].IsDealer = true
	}
	return &State{
		Players:         players,
		Phase:           PhaseSetup,
		ActedAfterClose: make(map[string]bool),
	}
}

// CurrentPlayer returns the player whose turn it is
func (s *State) CurrentPlayer() *Player {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentPlayerIndex]
}

// Dealer returns the current dealer
func (s *State) Dealer() *Player {
	if s.DealerIndex < 0 || s.DealerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.DealerIndex]
}

// PlayerByID returns the seated player with the given id
func (s *State) PlayerByID(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ActiveCount returns the number of non-eliminated players
func (s *State) ActiveCount() int {
	n := 0
	for _, p := range s.Players {
		if p.IsActive() {
			n++
		}
	}
	return n
}

// FirstRoundCompleted reports whether every active player has already
// acted at least once this round. Closing is only offered to the AI
// after the first full lap.
func (s *State) FirstRoundCompleted() bool {
	return s.TurnsTaken >= s.ActiveCount()
}
