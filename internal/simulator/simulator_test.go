package simulator

import (
	"context"
	"testing"

	"github.com/lox/holdemsim/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(policies ...string) *config.Config {
	cfg := &config.Config{
		Game:   &config.GameSettings{SmallBlind: 1, MaxRaise: 30, DecisionRetries: 5},
		Events: &config.EventSettings{},
	}
	for i, p := range policies {
		cfg.Players = append(cfg.Players, config.PlayerConfig{
			Name:   string(rune('A' + i)),
			Stack:  40,
			Policy: p,
			Trials: 20,
		})
	}
	return cfg
}

func TestRunTalliesEveryGame(t *testing.T) {
	t.Parallel()

	sim := New(Config{Games: 6, Seed: 100, Workers: 3, Table: table("random", "random", "call")})
	tally, err := sim.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, tally.Validate())

	assert.Equal(t, 6, tally.Games)
	assert.Len(t, tally.Players, 3)
	assert.ElementsMatch(t, []int64{100, 101, 102, 103, 104, 105}, tally.Seeds)
	for _, p := range tally.Players {
		assert.LessOrEqual(t, p.Busted, 6)
	}
}

func TestRunIsReproducible(t *testing.T) {
	t.Parallel()

	run := func(workers int) map[string]int {
		sim := New(Config{Games: 4, Seed: 7, Workers: workers, Table: table("random", "random", "random")})
		tally, err := sim.Run(context.Background())
		require.NoError(t, err)
		wins := make(map[string]int)
		for name, p := range tally.Players {
			wins[name] = p.Wins
		}
		return wins
	}

	assert.Equal(t, run(1), run(4))
}

func TestRunMaxRounds(t *testing.T) {
	t.Parallel()

	cfg := table("call", "call")
	cfg.Game.MaxRounds = 3
	tally, err := New(Config{Games: 2, Table: cfg}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, tally.Truncated)
	assert.InDelta(t, 3.0, tally.Rounds.Mean(), 1e-9)
}

func TestRunRejectsHumans(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Games: 1, Table: table("random", "human")}).Run(context.Background())
	require.ErrorIs(t, err, ErrInteractive)
}

func TestRunRejectsNoGames(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Table: table("random", "random")}).Run(context.Background())
	require.ErrorContains(t, err, "invalid games count")
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{Games: 3, Table: table("random", "random")}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
