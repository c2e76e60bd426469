// Package game implements multi-round No-Limit Texas Hold'em between
// pluggable decision policies.
//
// The main types are Game, which plays rounds until one player holds every
// chip, and Round, which plays a single hand.
//
// # Basic Usage
//
// Seat players in a Roster and run a game to completion:
//
//	roster := game.NewRoster()
//	roster.Add("Alice", 2000, policy.NewMonteCarlo(rng, logger))
//	roster.Add("Bob", 2000, policy.NewRandom(rng))
//	g, err := game.New(roster, game.WithSmallBlind(1), game.WithLogger(logger))
//	result, err := g.Run(ctx)
//
// # Deterministic Testing
//
// Inject the random source with WithRand, or control the cards directly
// with WithDealer and deck.NewStacked:
//
//	r, err := game.NewRound(roster, seats, button,
//	    deck.NewStacked(deck.MustParseCards("AsAh KsKh 2c7d9s 3c 4d")...),
//	    game.RoundConfig{SmallBlind: 1})
//
// # Architecture
//
// Round delegates responsibilities to specialized components:
//   - Pot: contribution ledger, bet bounds and settlement
//   - validators/appliers: pure tables deciding and applying each ActionKind
//   - Policy: the suspension point where a decision is requested
//   - evaluator.BestHand: ranks the players still holding cards at showdown
//
// Progress is reported on an EventBus, which never blocks the game.
package game
