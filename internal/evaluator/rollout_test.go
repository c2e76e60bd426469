package evaluator

import (
	"context"
	"testing"

	"github.com/lox/holdemsim/internal/deck"
	"github.com/lox/holdemsim/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolloutCountsEveryTrial(t *testing.T) {
	t.Parallel()

	r := Rollout{Trials: 500, Workers: 3}
	res, err := r.Run(context.Background(), randutil.New(1), deck.MustParseCards("7c2d"), nil, 4)
	require.NoError(t, err)

	assert.Equal(t, 500, res.Trials)
	require.Len(t, res.Wins, 5)
	total := res.Ties
	for _, w := range res.Wins {
		total += w
	}
	assert.Equal(t, res.Trials, total)
}

func TestRolloutIsDeterministicForSeed(t *testing.T) {
	t.Parallel()

	r := Rollout{Trials: 200, Workers: 4}
	pocket := deck.MustParseCards("AsKs")
	board := deck.MustParseCards("Qs7d2c")

	a, err := r.Run(context.Background(), randutil.New(99), pocket, board, 2)
	require.NoError(t, err)
	b, err := r.Run(context.Background(), randutil.New(99), pocket, board, 2)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRolloutNutsAlwaysLeads(t *testing.T) {
	t.Parallel()

	// a made royal flush cannot be beaten or tied
	r := Rollout{Trials: 300}
	res, err := r.Run(context.Background(), randutil.New(3),
		deck.MustParseCards("AsKs"), deck.MustParseCards("QsJsTs2d3c"), 5)
	require.NoError(t, err)

	assert.Equal(t, 300, res.Wins[0])
	assert.True(t, res.HeroLeadsOutright())
	assert.Equal(t, 0, res.Leader())
	assert.InDelta(t, 1.0, res.Ratio(), 1e-9)
}

func TestRolloutStrongHandBeatsWeak(t *testing.T) {
	t.Parallel()

	r := Rollout{Trials: 2000}
	strong, err := r.Run(context.Background(), randutil.New(8), deck.MustParseCards("AhAd"), nil, 1)
	require.NoError(t, err)
	weak, err := r.Run(context.Background(), randutil.New(8), deck.MustParseCards("7c2d"), nil, 1)
	require.NoError(t, err)

	assert.True(t, strong.HeroLeadsOutright())
	assert.False(t, weak.HeroLeadsOutright())
	assert.Greater(t, strong.Wins[0], weak.Wins[0])
	assert.Less(t, weak.Ratio(), 0.70)
}

func TestRolloutRejectsBadInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := Rollout{Trials: 10}

	_, err := r.Run(ctx, randutil.New(1), deck.MustParseCards("As"), nil, 1)
	assert.ErrorIs(t, err, ErrMalformedHand)

	_, err = r.Run(ctx, randutil.New(1), deck.MustParseCards("AsAs"), nil, 1)
	assert.ErrorIs(t, err, ErrMalformedHand)

	_, err = r.Run(ctx, randutil.New(1), deck.MustParseCards("AsKs"), nil, 24)
	assert.Error(t, err)
}

func TestRolloutHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Rollout{Trials: 1000, Workers: 2}.Run(ctx, randutil.New(1), deck.MustParseCards("AsKs"), nil, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRolloutResultHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		wins     []int
		leader   int
		outright bool
		ratio    float64
	}{
		{"hero ahead", []int{50, 20, 30}, 0, true, 1},
		{"hero shares lead", []int{40, 40, 20}, 0, false, 1},
		{"opponent ahead", []int{30, 40, 30}, 1, false, 0.75},
		{"nobody won", []int{0, 0}, 0, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := RolloutResult{Wins: tt.wins}
			assert.Equal(t, tt.leader, res.Leader())
			assert.Equal(t, tt.outright, res.HeroLeadsOutright())
			assert.InDelta(t, tt.ratio, res.Ratio(), 1e-9)
		})
	}
}
