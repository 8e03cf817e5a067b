// Package game implements the core rules of Schwimmen/31.
//
// The main type is State, which holds everything a single room needs:
// the seated players, the public card pool, the remaining deck and the
// phase machine that walks a round from dealing to scoring. The rule
// functions (DealCards, DetermineRoundResults, UpdatePlayerLives, ...)
// operate on the player slice the room owns and retain no references.
//
// # Deterministic Testing
//
// Everything random takes an injected *rand.Rand:
//
//	rng := randutil.New(42)
//	dealerSets, remaining := game.DealCards(players, deck.New(), rng)
//
// The AI engine is seeded the same way, so full games replay exactly
// from a single seed.
package game
