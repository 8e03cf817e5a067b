package game

import (
	rand "math/rand/v2"
	"sort"

	"github.com/charmbracelet/log"

	"schwimmen/internal/deck"
)

// AIEngine makes decisions for computer players. All randomness comes
// from the injected RNG so that seeded games replay deterministically.
type AIEngine struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewAIEngine creates a new AI engine
func NewAIEngine(rng *rand.Rand, logger *log.Logger) *AIEngine {
	return &AIEngine{
		rng:    rng,
		logger: logger.WithPrefix("ai"),
	}
}

// AIAction is the action an AI player wants to take on its turn
type AIAction struct {
	Action           ActionType
	CardToExchange   *deck.Card
	PublicCardToTake *deck.Card
}

// candidate is an evaluated action with a hand-tuned confidence in [0,1].
// Candidates are ranked by expectedScore x confidence.
type candidate struct {
	action        AIAction
	expectedScore float64
	confidence    float64
}

func (c candidate) weight() float64 {
	return c.expectedScore * c.confidence
}

// ChooseAction evaluates skip, the best single exchange, the full
// exchange and (when eligible) closing the round, then picks the top
// candidate 85% of the time and the runner-up 15% so play never becomes
// fully predictable. Three aces force an immediate skip: that hand
// already wins.
func (ai *AIEngine) ChooseAction(hand, public []deck.Card, firstRoundCompleted, isLastRound bool) AIAction {
	if deck.HasThreeAces(hand) {
		return AIAction{Action: ActionSkip}
	}

	current, err := deck.Score(hand)
	if err != nil {
		ai.logger.Error("Cannot score AI hand", "error", err)
		return AIAction{Action: ActionSkip}
	}

	candidates := []candidate{
		{action: AIAction{Action: ActionSkip}, expectedScore: current.Score, confidence: 0.5},
	}

	if best, ok := ai.bestSingleExchange(hand, public); ok {
		conf := 0.3
		if best.expectedScore > current.Score {
			conf = 0.85
		}
		best.confidence = conf
		candidates = append(candidates, best)
	}

	if full, err := deck.Score(public); err == nil {
		conf := 0.25
		if full.Score > current.Score {
			conf = 0.75
		}
		candidates = append(candidates, candidate{
			action:        AIAction{Action: ActionExchangeAll},
			expectedScore: full.Score,
			confidence:    conf,
		})
	}

	if firstRoundCompleted && !isLastRound {
		if conf := ai.closeConfidence(current.Score); conf > 0 {
			candidates = append(candidates, candidate{
				action:        AIAction{Action: ActionCloseRound},
				expectedScore: current.Score,
				confidence:    conf,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].weight() > candidates[j].weight()
	})

	pick := candidates[0]
	if len(candidates) > 1 && ai.rng.Float64() >= 0.85 {
		pick = candidates[1]
	}

	ai.logger.Debug("AI action chosen",
		"action", pick.action.Action,
		"expectedScore", pick.expectedScore,
		"currentScore", current.Score)

	return pick.action
}

// bestSingleExchange exhaustively tries every hand-card x public-card
// swap and keeps the one with the highest resulting score.
func (ai *AIEngine) bestSingleExchange(hand, public []deck.Card) (candidate, bool) {
	var best candidate
	found := false

	trial := make([]deck.Card, len(hand))
	for i, give := range hand {
		for j, take := range public {
			copy(trial, hand)
			trial[i] = public[j]
			sr, err := deck.Score(trial)
			if err != nil {
				continue
			}
			if !found || sr.Score > best.expectedScore {
				best = candidate{
					action: AIAction{
						Action:           ActionExchangeOne,
						CardToExchange:   &give,
						PublicCardToTake: &take,
					},
					expectedScore: sr.Score,
				}
				found = true
			}
		}
	}
	return best, found
}

// closeConfidence weights closing toward strong hands: near-certain at
// 27 and above, a randomized chance between 24 and 27, never below.
func (ai *AIEngine) closeConfidence(score float64) float64 {
	switch {
	case score >= 27:
		return 0.95
	case score >= 24:
		return 0.3 + ai.rng.Float64()*0.4
	default:
		return 0
	}
}

// ChooseDealerDecision decides whether an AI dealer keeps the set it
// was shown. Three aces or 29+ are kept outright; middling sets are
// kept probabilistically; weak sets favour switching to the unseen one.
func (ai *AIEngine) ChooseDealerDecision(seenSet []deck.Card) bool {
	if deck.HasThreeAces(seenSet) {
		return true
	}
	sr, err := deck.Score(seenSet)
	if err != nil {
		ai.logger.Error("Cannot score dealer set", "error", err)
		return true
	}
	switch {
	case sr.Score >= 29:
		return true
	case sr.Score >= 25:
		return ai.rng.Float64() < 0.75
	case sr.Score >= 20:
		return ai.rng.Float64() < 0.5
	default:
		return ai.rng.Float64() < 0.15
	}
}
