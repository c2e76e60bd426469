// Package simulator plays many independent games from one table
// configuration and tallies who wins.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdemsim/internal/config"
	"github.com/lox/holdemsim/internal/game"
	"github.com/lox/holdemsim/internal/policy"
	"github.com/lox/holdemsim/internal/randutil"
	"github.com/lox/holdemsim/internal/statistics"
)

// ErrInteractive is returned when the table seats a human player, who
// cannot sit through unattended games
var ErrInteractive = errors.New("simulations cannot seat human players")

// Config holds configuration for running simulations
type Config struct {
	Games   int
	Seed    int64 // game i is seeded with Seed+i
	Workers int   // concurrent games, GOMAXPROCS when zero
	Timeout time.Duration
	Table   *config.Config
	Logger  *log.Logger
	Clock   quartz.Clock
}

// Simulator runs batches of games
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(cfg Config) *Simulator {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Simulator{config: cfg}
}

// Run plays every game and returns the tally. Games are independent, so
// the outcome for a given seed does not depend on scheduling.
func (s *Simulator) Run(ctx context.Context) (*statistics.Tally, error) {
	if s.config.Games <= 0 {
		return nil, fmt.Errorf("invalid games count: %d", s.config.Games)
	}
	if s.config.Table.Humans() > 0 {
		return nil, ErrInteractive
	}

	results := make([]statistics.GameResult, s.config.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := range s.config.Games {
		seed := s.config.Seed + int64(i)
		g.Go(func() error {
			res, err := s.playGame(ctx, seed)
			if err != nil {
				return fmt.Errorf("game %d (seed %d): %w", i+1, seed, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make([]string, len(s.config.Table.Players))
	for i, p := range s.config.Table.Players {
		names[i] = p.Name
	}
	tally := statistics.NewTally(names...)
	for _, res := range results {
		tally.Add(res)
	}
	if err := tally.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return tally, nil
}

// playGame runs a single game with timeout protection
func (s *Simulator) playGame(ctx context.Context, seed int64) (statistics.GameResult, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	rng := randutil.New(seed)
	logger := s.config.Logger.With("seed", seed)
	table := s.config.Table

	roster := game.NewRoster()
	var closers []io.Closer
	defer func() {
		for _, c := range slices.Backward(closers) {
			if err := c.Close(); err != nil {
				logger.Warn("Failed to release policy", "error", err)
			}
		}
	}()
	deps := policy.Deps{Rand: rng, Logger: logger, Clock: s.config.Clock}
	for _, pc := range table.Players {
		p, closer, err := policy.FromConfig(ctx, pc, deps)
		if err != nil {
			return statistics.GameResult{}, err
		}
		closers = append(closers, closer)
		roster.Add(pc.Name, pc.Stack, p)
	}

	gm, err := game.New(roster,
		game.WithSmallBlind(table.Game.SmallBlind),
		game.WithMaxRaise(table.Game.MaxRaise),
		game.WithDecisionRetries(table.Game.DecisionRetries),
		game.WithMaxRounds(table.Game.MaxRounds),
		game.WithRand(rng),
		game.WithLogger(logger),
		game.WithClock(s.config.Clock),
	)
	if err != nil {
		return statistics.GameResult{}, err
	}

	result, err := gm.Run(ctx)
	if err != nil {
		return statistics.GameResult{}, err
	}

	busted := make([]string, len(result.Finished))
	for i, p := range result.Finished {
		busted[i] = p.Name
	}
	return statistics.GameResult{
		Seed:      seed,
		Winner:    result.Winner.Name,
		Rounds:    result.Rounds,
		Truncated: result.Truncated,
		Busted:    busted,
	}, nil
}
