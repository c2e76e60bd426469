package policy

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemsim/internal/evaluator"
	"github.com/lox/holdemsim/internal/game"
)

// CallThreshold is the share of the leader's wins the hero needs before
// calling a bet it is not leading
const CallThreshold = 0.70

// MonteCarlo plays out the rest of the hand many times at random and acts
// on how often its own pocket comes out on top
type MonteCarlo struct {
	rng     *rand.Rand
	rollout evaluator.Rollout
	logger  *log.Logger
}

// MonteCarloOption configures a MonteCarlo policy
type MonteCarloOption func(*MonteCarlo)

// WithTrials sets the number of simulated deals per decision
func WithTrials(n int) MonteCarloOption {
	return func(m *MonteCarlo) { m.rollout.Trials = n }
}

// WithWorkers sets how many goroutines share the trials
func WithWorkers(n int) MonteCarloOption {
	return func(m *MonteCarlo) { m.rollout.Workers = n }
}

// NewMonteCarlo creates a MonteCarlo policy
func NewMonteCarlo(rng *rand.Rand, logger *log.Logger, opts ...MonteCarloOption) *MonteCarlo {
	m := &MonteCarlo{
		rng:     rng,
		rollout: evaluator.Rollout{Trials: evaluator.DefaultTrials},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MonteCarlo) Decide(ctx context.Context, v game.View) (game.ActionKind, error) {
	res, err := m.rollout.Run(ctx, m.rng, v.Pocket, v.Community, v.Opponents())
	if err != nil {
		return game.Fold, fmt.Errorf("rollout: %w", err)
	}

	kind := choose(res, v)
	m.logger.Debug("Monte Carlo decision",
		"player", v.Name,
		"street", v.Street,
		"wins", res.Wins,
		"ties", res.Ties,
		"ratio", res.Ratio(),
		"action", kind)
	return kind, nil
}

// choose maps rollout results to a legal action. Leading outright means
// betting, otherwise check if free, call if close enough to the leader and
// fold when nothing else applies.
func choose(res evaluator.RolloutResult, v game.View) game.ActionKind {
	if res.HeroLeadsOutright() {
		for _, kind := range []game.ActionKind{game.Bet, game.Call, game.Check} {
			if v.Can(kind) {
				return kind
			}
		}
	}
	if v.Can(game.Check) {
		return game.Check
	}
	if res.Ratio() > CallThreshold && v.Can(game.Call) {
		return game.Call
	}
	return game.Fold
}

func (m *MonteCarlo) Amount(_ context.Context, _ game.View, minBet, maxBet int) (int, error) {
	return uniform(m.rng, minBet, maxBet), nil
}
