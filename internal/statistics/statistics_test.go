package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleEmpty(t *testing.T) {
	t.Parallel()

	var s Sample
	assert.Zero(t, s.Mean())
	assert.Zero(t, s.Variance())
	assert.Zero(t, s.StdDev())
	assert.Zero(t, s.StdError())
	assert.Zero(t, s.Median())
	assert.Zero(t, s.Percentile(0.9))
}

func TestSampleSingleValue(t *testing.T) {
	t.Parallel()

	var s Sample
	s.Add(2.5)
	assert.Equal(t, 2.5, s.Mean())
	assert.Zero(t, s.Variance())
	assert.Equal(t, 2.5, s.Median())
	lo, hi := s.ConfidenceInterval95()
	assert.Equal(t, 2.5, lo)
	assert.Equal(t, 2.5, hi)
}

func TestSampleMoments(t *testing.T) {
	t.Parallel()

	var s Sample
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		s.Add(v)
	}
	assert.Equal(t, 8, s.N)
	assert.InDelta(t, 5.0, s.Mean(), 1e-9)
	assert.InDelta(t, 32.0/7.0, s.Variance(), 1e-9)
	assert.InDelta(t, 4.5, s.Median(), 1e-9)
	assert.InDelta(t, 2.0, s.Percentile(0), 1e-9)
	assert.InDelta(t, 9.0, s.Percentile(1), 1e-9)
	assert.InDelta(t, 4.0, s.Percentile(0.25), 1e-9)

	lo, hi := s.ConfidenceInterval95()
	assert.Less(t, lo, s.Mean())
	assert.Greater(t, hi, s.Mean())
	assert.InDelta(t, s.Mean()-lo, hi-s.Mean(), 1e-9)
}

func TestPercentileDoesNotReorderValues(t *testing.T) {
	t.Parallel()

	var s Sample
	for _, v := range []float64{3, 1, 2} {
		s.Add(v)
	}
	assert.Equal(t, 2.0, s.Median())
	assert.Equal(t, []float64{3, 1, 2}, s.Values)
}

func TestTally(t *testing.T) {
	t.Parallel()

	tally := NewTally("Alice", "Bob", "Carol")
	tally.Add(GameResult{Seed: 1, Winner: "Alice", Rounds: 10, Busted: []string{"Carol", "Bob"}})
	tally.Add(GameResult{Seed: 2, Winner: "Alice", Rounds: 20, Busted: []string{"Bob", "Carol"}})
	tally.Add(GameResult{Seed: 3, Winner: "Bob", Rounds: 30, Truncated: true, Busted: []string{"Carol"}})
	require.NoError(t, tally.Validate())

	assert.Equal(t, 3, tally.Games)
	assert.Equal(t, 1, tally.Truncated)
	assert.Equal(t, []int64{1, 2, 3}, tally.Seeds)
	assert.InDelta(t, 20.0, tally.Rounds.Mean(), 1e-9)

	carol := tally.Players["Carol"]
	assert.Equal(t, 3, carol.Busted)
	assert.InDelta(t, 4.0/3.0, carol.BustOrder.Mean(), 1e-9)

	rate, margin := tally.WinRate("Alice")
	assert.InDelta(t, 2.0/3.0, rate, 1e-9)
	assert.Greater(t, margin, 0.0)

	rate, margin = tally.WinRate("Nobody")
	assert.Zero(t, rate)
	assert.Zero(t, margin)

	ranked := tally.Ranked()
	require.Len(t, ranked, 3)
	assert.Equal(t, "Alice", ranked[0].Name)
	assert.Equal(t, "Bob", ranked[1].Name)
	assert.Equal(t, "Carol", ranked[2].Name)
}

func TestTallyValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tally   func() *Tally
		wantErr string
	}{
		{"empty", func() *Tally { return NewTally("A") }, "invalid games count"},
		{"wins mismatch", func() *Tally {
			tally := NewTally("A")
			tally.Add(GameResult{Winner: "A", Rounds: 1})
			tally.Players["A"].Wins = 2
			return tally
		}, "total wins (2) does not match games (1)"},
		{"rounds mismatch", func() *Tally {
			tally := NewTally("A")
			tally.Add(GameResult{Winner: "A", Rounds: 1})
			tally.Rounds.Add(3)
			return tally
		}, "rounds recorded for 2 games"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorContains(t, tt.tally().Validate(), tt.wantErr)
		})
	}
}
