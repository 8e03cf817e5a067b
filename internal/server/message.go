package server

import (
	"encoding/json"
	"time"

	"schwimmen/internal/deck"
	"schwimmen/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

// GameConfig is the room setup requested by the creating client
type GameConfig struct {
	HumanPlayers  int `json:"humanPlayers"`
	AIPlayers     int `json:"aiPlayers"`
	StartingLives int `json:"startingLives"`
}

type CreateGameData struct {
	Config     GameConfig `json:"config"`
	PlayerName string     `json:"playerName"`
}

type JoinGameData struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type DealerDecisionData struct {
	KeepSeenSet bool `json:"keepSeenSet"`
}

// PlayerActionData names cards by id; a reference to a card not present
// in its expected collection makes the whole action a rejected no-op.
type PlayerActionData struct {
	Action           game.ActionType `json:"action"`
	CardToExchange   string          `json:"cardToExchange,omitempty"`
	PublicCardToTake string          `json:"publicCardToTake,omitempty"`
}

// Server → Client Messages

type GameCreatedData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type GameJoinedData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type ErrorData struct {
	Message string `json:"message"`
}

type GameStateData struct {
	GameState    *GameStateView `json:"gameState"`
	YourPlayerID string         `json:"yourPlayerId"`
}

// PlayerView is a player as one particular viewer is allowed to see them
type PlayerView struct {
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

// GameStateView is a per-viewer redacted snapshot of a room's state
type GameStateView struct {
	Players            []PlayerView       `json:"players"`
	PublicCards        []deck.Card        `json:"publicCards"`
	CurrentPlayerIndex int                `json:"currentPlayerIndex"`
	DealerIndex        int                `json:"dealerIndex"`
	Phase              game.Phase         `json:"phase"`
	RoundNumber        int                `json:"roundNumber"`
	SeenSet            []deck.Card        `json:"seenSet,omitempty"`
	SeenSetIndex       *int               `json:"seenSetIndex,omitempty"`
	RoundClosedBy      string             `json:"roundClosedByPlayerId,omitempty"`
	LastAction         *game.ActionRecord `json:"lastAction,omitempty"`
	LastRoundResult    *game.RoundResult  `json:"lastRoundResult,omitempty"`
	WinnerID           string             `json:"winnerId,omitempty"`
}

// handsRevealed reports whether all human hands are face-up for everyone
func handsRevealed(phase game.Phase) bool {
	return phase == game.PhaseScoring || phase == game.PhaseRoundEnd
}

// NewGameStateView builds the snapshot of st that viewerID may see.
// Human hands are concealed outside the scoring phases except from
// their owner; AI hands are always visible. Of the dealer sets only the
// seen one is exposed, and only to the dealer.
func NewGameStateView(st *game.State, viewerID string) *GameStateView {
	view := &GameStateView{
		Players:            make([]PlayerView, len(st.Players)),
		PublicCards:        st.PublicCards,
		CurrentPlayerIndex: st.CurrentPlayerIndex,
		DealerIndex:        st.DealerIndex,
		Phase:              st.Phase,
		RoundNumber:        st.RoundNumber,
		RoundClosedBy:      st.RoundClosedBy,
		LastAction:         st.LastAction,
		LastRoundResult:    st.LastRoundResult,
		WinnerID:           st.WinnerID,
	}

	for i, p := range st.Players {
		hand := p.Hand
		if !p.IsAI && p.ID != viewerID && !handsRevealed(st.Phase) {
			hand = []deck.Card{}
		}
		view.Players[i] = PlayerView{
			ID:             p.ID,
			Name:           p.Name,
			IsAI:           p.IsAI,
			Lives:          p.Lives,
			Hand:           hand,
			IsSwimming:     p.IsSwimming,
			IsEliminated:   p.IsEliminated,
			IsDealer:       p.IsDealer,
			HasClosedRound: p.HasClosedRound,
		}
	}

	if st.DealerSets != nil {
		if dealer := st.Dealer(); dealer != nil && dealer.ID == viewerID {
			idx := st.SeenSetIndex
			view.SeenSet = st.DealerSets[idx]
			view.SeenSetIndex = &idx
		}
	}

	return view
}
