package server

import (
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"schwimmen/internal/deck"
	"schwimmen/internal/game"
)

// sink is the outbound half of a connection. Rooms only ever push
// messages; they never read from clients directly.
type sink interface {
	SendMessage(msg *Message) error
}

// Room owns one game's mutable state. The mutex serializes every
// mutation, whether it arrives as a client message or a fired AI
// timer, so at most one transition is in flight per room. Connections
// hold only room id and player id, never the state.
type Room struct {
	ID string

	mu    sync.Mutex
	state *game.State
	conns map[string]sink
	rng   *rand.Rand // guarded by mu, like everything else here
	ai    *game.AIEngine
	clock quartz.Clock
	cfg   Config

	logger *log.Logger
}

func newRoom(id string, state *game.State, cfg Config, rng *rand.Rand, clock quartz.Clock, logger *log.Logger) *Room {
	roomLogger := logger.WithPrefix("room").With("room", id)
	return &Room{
		ID:     id,
		state:  state,
		conns:  make(map[string]sink),
		rng:    rng,
		ai:     game.NewAIEngine(rng, roomLogger),
		clock:  clock,
		cfg:    cfg,
		logger: roomLogger,
	}
}

// AttachConn maps a player id to a live connection and pushes a fresh
// snapshot to everyone.
func (r *Room) AttachConn(playerID string, s sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[playerID] = s
	r.broadcastLocked()
}

// DetachConn drops the connection mapping for a player. Game state and
// any pending AI timers are deliberately untouched; a fired timer whose
// turn has passed is a no-op anyway.
func (r *Room) DetachConn(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, playerID)
}

// ClaimSeat assigns the first unclaimed human seat to a joining player
func (r *Room) ClaimSeat(playerName string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.state.Players {
		if !p.IsAI && p.Name == "" {
			p.Name = playerName
			return p.ID, nil
		}
	}
	return "", ErrRoomFull
}

// StartRound begins dealing the first round
func (r *Room) StartRound(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Phase != game.PhaseSetup {
		r.rejectLocked(playerID, "start-round", "phase is "+string(r.state.Phase))
		return
	}
	r.dealLocked()
}

// ContinueGame re-deals after a finished round
func (r *Room) ContinueGame(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Phase != game.PhaseRoundEnd {
		r.rejectLocked(playerID, "continue-game", "phase is "+string(r.state.Phase))
		return
	}
	r.dealLocked()
}

// ProcessDealerDecision resolves the dealer's choice between the two
// hidden sets
func (r *Room) ProcessDealerDecision(playerID string, keepSeenSet bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dealerDecisionLocked(playerID, keepSeenSet)
}

// ProcessPlayerAction validates and applies one player action. It
// returns whether the action was applied; rejected actions are logged
// and otherwise silent no-ops.
func (r *Room) ProcessPlayerAction(playerID string, data PlayerActionData) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.actionLocked(playerID, data)
}

// dealLocked starts a new round: fresh shuffle, hands out, dealer sets
// reserved, phase forward to the dealer decision.
func (r *Room) dealLocked() {
	st := r.state
	st.RoundNumber++
	st.Phase = game.PhaseDealing
	st.RoundClosedBy = ""
	st.ActedAfterClose = make(map[string]bool)
	st.LastAction = nil
	st.LastRoundResult = nil
	st.TurnsTaken = 0
	st.PublicCards = nil
	for _, p := range st.Players {
		p.HasClosedRound = false
	}

	st.DealerSets, st.Deck = game.DealCards(st.Players, deck.New(), r.rng)
	if st.DealerSets == nil {
		// Dealer selection always lands on an active player, so this
		// is a programming error, not a game situation.
		r.logger.Error("Deal produced no dealer sets", "dealerIndex", st.DealerIndex)
		return
	}
	st.SeenSetIndex = r.rng.IntN(2)
	st.Phase = game.PhaseDealerDecision

	r.logger.Info("Round dealt",
		"round", st.RoundNumber,
		"dealer", st.Dealer().ID,
		"deckRemaining", len(st.Deck))

	r.broadcastLocked()

	if dealer := st.Dealer(); dealer != nil && dealer.IsAI {
		r.scheduleAIDealerDecisionLocked(dealer.ID)
	}
}

func (r *Room) dealerDecisionLocked(playerID string, keepSeenSet bool) bool {
	st := r.state
	if st.Phase != game.PhaseDealerDecision {
		r.rejectLocked(playerID, "dealer-decision", "phase is "+string(st.Phase))
		return false
	}
	dealer := st.Dealer()
	if dealer == nil || dealer.ID != playerID || st.DealerSets == nil {
		r.rejectLocked(playerID, "dealer-decision", "not the dealer")
		return false
	}

	keepIdx := st.SeenSetIndex
	if !keepSeenSet {
		keepIdx = 1 - keepIdx
	}
	dealer.Hand = st.DealerSets[keepIdx]
	st.PublicCards = st.DealerSets[1-keepIdx]
	st.DealerSets = nil

	st.Phase = game.PhasePlaying
	next := r.nextEligibleLocked(st.DealerIndex)
	if next < 0 {
		r.finishGameLocked()
		return true
	}
	st.CurrentPlayerIndex = next

	r.logger.Info("Dealer decided",
		"dealer", dealer.ID,
		"keptSeenSet", keepSeenSet,
		"firstToAct", st.CurrentPlayer().ID)

	// A dealt three-of-aces ends the round before anyone acts
	for _, p := range st.Players {
		if p.IsActive() && deck.HasThreeAces(p.Hand) {
			r.finishRoundLocked()
			return true
		}
	}

	r.broadcastLocked()
	r.maybeScheduleAILocked()
	return true
}

func (r *Room) actionLocked(playerID string, data PlayerActionData) bool {
	st := r.state
	if st.Phase != game.PhasePlaying && st.Phase != game.PhaseLastRound {
		r.rejectLocked(playerID, string(data.Action), "phase is "+string(st.Phase))
		return false
	}
	cur := st.CurrentPlayer()
	if cur == nil || cur.ID != playerID || cur.IsEliminated {
		r.rejectLocked(playerID, string(data.Action), "not current player")
		return false
	}

	switch data.Action {
	case game.ActionSkip:
		st.LastAction = &game.ActionRecord{PlayerID: playerID, Action: game.ActionSkip}

	case game.ActionExchangeOne:
		give, ok := cur.HandCard(data.CardToExchange)
		if !ok {
			r.rejectLocked(playerID, string(data.Action), "card not in hand")
			return false
		}
		takeIdx := -1
		for i, c := range st.PublicCards {
			if c.ID == data.PublicCardToTake {
				takeIdx = i
				break
			}
		}
		if takeIdx < 0 {
			r.rejectLocked(playerID, string(data.Action), "card not in public pool")
			return false
		}
		take := st.PublicCards[takeIdx]
		for i, c := range cur.Hand {
			if c.ID == give.ID {
				cur.Hand[i] = take
				break
			}
		}
		st.PublicCards[takeIdx] = give
		st.LastAction = &game.ActionRecord{
			PlayerID:  playerID,
			Action:    game.ActionExchangeOne,
			CardGiven: &give,
			CardTaken: &take,
		}

	case game.ActionExchangeAll:
		oldHand := cur.Hand
		cur.Hand = st.PublicCards
		st.PublicCards = oldHand
		st.LastAction = &game.ActionRecord{
			PlayerID:   playerID,
			Action:     game.ActionExchangeAll,
			CardsGiven: oldHand,
			CardsTaken: cur.Hand,
		}

	case game.ActionCloseRound:
		if st.Phase != game.PhasePlaying {
			r.rejectLocked(playerID, string(data.Action), "round already closed")
			return false
		}
		st.Phase = game.PhaseLastRound
		st.RoundClosedBy = playerID
		cur.HasClosedRound = true
		st.LastAction = &game.ActionRecord{PlayerID: playerID, Action: game.ActionCloseRound}

	default:
		r.rejectLocked(playerID, string(data.Action), "unknown action")
		return false
	}

	st.TurnsTaken++

	r.logger.Debug("Action applied",
		"player", playerID,
		"action", data.Action,
		"phase", st.Phase)

	if deck.HasThreeAces(cur.Hand) {
		r.finishRoundLocked()
		return true
	}

	if st.Phase == game.PhaseLastRound && playerID != st.RoundClosedBy {
		st.ActedAfterClose[playerID] = true
	}
	if st.Phase == game.PhaseLastRound && r.allActedAfterCloseLocked() {
		r.finishRoundLocked()
		return true
	}

	next := r.nextEligibleLocked(st.CurrentPlayerIndex)
	if next < 0 {
		r.finishGameLocked()
		return true
	}
	st.CurrentPlayerIndex = next

	r.broadcastLocked()
	r.maybeScheduleAILocked()
	return true
}

// allActedAfterCloseLocked reports whether every active player other
// than the closer has taken their final turn.
func (r *Room) allActedAfterCloseLocked() bool {
	st := r.state
	for _, p := range st.Players {
		if p.IsEliminated || p.ID == st.RoundClosedBy {
			continue
		}
		if !st.ActedAfterClose[p.ID] {
			return false
		}
	}
	return true
}

// nextEligibleLocked walks the seating order starting after seat from,
// skipping eliminated players. The walk is bounded by the player count;
// -1 means nobody can act, which callers treat as game end.
func (r *Room) nextEligibleLocked(from int) int {
	n := len(r.state.Players)
	idx := from
	for i := 0; i < n; i++ {
		idx = game.NextPlayerIndex(idx, n)
		if !r.state.Players[idx].IsEliminated {
			return idx
		}
	}
	return -1
}

// finishRoundLocked scores the round, applies losses and parks the room
// in the scoring phase; a timer then advances to round-end or game-end
// so clients get a beat to show the revealed hands.
func (r *Room) finishRoundLocked() {
	st := r.state
	result, err := game.DetermineRoundResults(st.Players)
	if err != nil {
		// A hand without exactly 3 cards here is an engine bug; refuse
		// to score rather than invent a result.
		r.logger.Error("Refusing to score round", "error", err)
		return
	}
	st.LastRoundResult = &result
	game.UpdatePlayerLives(st.Players, result.LoserIDs)
	st.Phase = game.PhaseScoring

	r.logger.Info("Round scored",
		"round", st.RoundNumber,
		"losers", result.LoserIDs,
		"threeAces", result.ThreeAcesPlayerID)

	r.broadcastLocked()

	round := st.RoundNumber
	r.clock.AfterFunc(r.cfg.ScoringPause, func() {
		r.advanceFromScoring(round)
	})
}

// advanceFromScoring moves scoring -> round-end (or game-end). The
// round number guards against a stale timer outliving a re-deal.
func (r *Room) advanceFromScoring(round int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state
	if st.Phase != game.PhaseScoring || st.RoundNumber != round {
		return
	}

	if game.ShouldGameEnd(st.Players) {
		r.finishGameLocked()
		return
	}

	next := game.NextDealerIndex(st.Players, st.LastRoundResult.LoserIDs)
	if next < 0 {
		r.finishGameLocked()
		return
	}
	for _, p := range st.Players {
		p.IsDealer = false
	}
	st.Players[next].IsDealer = true
	st.DealerIndex = next
	st.Phase = game.PhaseRoundEnd

	r.logger.Info("Round ended", "round", st.RoundNumber, "nextDealer", st.Players[next].ID)

	r.broadcastLocked()
}

func (r *Room) finishGameLocked() {
	st := r.state
	st.Phase = game.PhaseGameEnd
	if w := game.Winner(st.Players); w != nil {
		st.WinnerID = w.ID
	}
	r.logger.Info("Game over", "winner", st.WinnerID, "rounds", st.RoundNumber)
	r.broadcastLocked()
}

// maybeScheduleAILocked arms a randomized timer for the next AI turn.
// The callback re-enters the normal action path, where the ownership
// check makes a stale firing a safe no-op.
func (r *Room) maybeScheduleAILocked() {
	st := r.state
	cur := st.CurrentPlayer()
	if cur == nil || !cur.IsAI {
		return
	}
	if st.Phase != game.PhasePlaying && st.Phase != game.PhaseLastRound {
		return
	}

	playerID := cur.ID
	r.clock.AfterFunc(r.aiDelayLocked(), func() {
		r.runAITurn(playerID)
	})
}

func (r *Room) runAITurn(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state
	if st.Phase != game.PhasePlaying && st.Phase != game.PhaseLastRound {
		return
	}
	cur := st.CurrentPlayer()
	if cur == nil || cur.ID != playerID || !cur.IsAI {
		// Turn moved on while the timer was pending
		return
	}

	choice := r.ai.ChooseAction(cur.Hand, st.PublicCards,
		st.FirstRoundCompleted(), st.Phase == game.PhaseLastRound)

	data := PlayerActionData{Action: choice.Action}
	if choice.CardToExchange != nil {
		data.CardToExchange = choice.CardToExchange.ID
	}
	if choice.PublicCardToTake != nil {
		data.PublicCardToTake = choice.PublicCardToTake.ID
	}
	r.actionLocked(playerID, data)
}

func (r *Room) scheduleAIDealerDecisionLocked(dealerID string) {
	r.clock.AfterFunc(r.aiDelayLocked(), func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		st := r.state
		if st.Phase != game.PhaseDealerDecision || st.DealerSets == nil {
			return
		}
		dealer := st.Dealer()
		if dealer == nil || dealer.ID != dealerID || !dealer.IsAI {
			return
		}
		keep := r.ai.ChooseDealerDecision(st.DealerSets[st.SeenSetIndex])
		r.dealerDecisionLocked(dealerID, keep)
	})
}

// aiDelayLocked picks a uniform delay in [MinAIDelay, MaxAIDelay]
func (r *Room) aiDelayLocked() time.Duration {
	spread := r.cfg.MaxAIDelay - r.cfg.MinAIDelay
	if spread <= 0 {
		return r.cfg.MinAIDelay
	}
	return r.cfg.MinAIDelay + time.Duration(r.rng.Int64N(int64(spread)+1))
}

// rejectLocked is the single funnel for dropped actions: structured log
// on the server, silence on the wire.
func (r *Room) rejectLocked(playerID, action, reason string) {
	r.logger.Warn("Rejected action",
		"player", playerID,
		"action", action,
		"reason", reason)
}

// broadcastLocked sends every connected client its personalized view
func (r *Room) broadcastLocked() {
	for playerID, conn := range r.conns {
		view := NewGameStateView(r.state, playerID)
		msg, err := NewMessage(MessageTypeGameState, GameStateData{
			GameState:    view,
			YourPlayerID: playerID,
		})
		if err != nil {
			r.logger.Error("Failed to build game-state message", "error", err)
			continue
		}
		if err := conn.SendMessage(msg); err != nil {
			r.logger.Error("Failed to send game state", "player", playerID, "error", err)
		}
	}
}
