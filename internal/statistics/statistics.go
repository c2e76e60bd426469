// Package statistics aggregates the outcomes of many simulated games.
package statistics

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// GameResult is the outcome of one simulated game
type GameResult struct {
	Seed      int64  // RNG seed for this game (for replay)
	Winner    string // winner, or chip leader when Truncated
	Rounds    int
	Truncated bool
	Busted    []string // players eliminated, in order
}

// Sample accumulates a series of observations
type Sample struct {
	N      int
	Sum    float64
	SumSq  float64   // sum of squares for variance
	Values []float64 // kept for median and percentiles
}

// Add records one observation
func (s *Sample) Add(v float64) {
	s.N++
	s.Sum += v
	s.SumSq += v * v
	s.Values = append(s.Values, v)
}

// Mean returns the arithmetic mean
func (s *Sample) Mean() float64 {
	if s.N == 0 {
		return 0
	}
	return s.Sum / float64(s.N)
}

// Variance returns the sample variance
func (s *Sample) Variance() float64 {
	if s.N < 2 {
		return 0
	}
	mean := s.Mean()
	return max(0, (s.SumSq-float64(s.N)*mean*mean)/float64(s.N-1))
}

// StdDev returns the sample standard deviation
func (s *Sample) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Sample) StdError() float64 {
	if s.N == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.N))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Sample) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median observation
func (s *Sample) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at p in [0, 1], interpolating linearly
func (s *Sample) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// PlayerStats tracks one seat across games
type PlayerStats struct {
	Name   string
	Wins   int
	Busted int
	// BustOrder records the elimination position, 1 for the first out
	BustOrder Sample
}

// Tally aggregates GameResults
type Tally struct {
	Games     int
	Truncated int
	Rounds    Sample
	Players   map[string]*PlayerStats
	Seeds     []int64
}

// NewTally creates a tally for the named players
func NewTally(names ...string) *Tally {
	t := &Tally{Players: make(map[string]*PlayerStats, len(names))}
	for _, name := range names {
		t.Players[name] = &PlayerStats{Name: name}
	}
	return t
}

// Add incorporates one game
func (t *Tally) Add(r GameResult) {
	t.Games++
	if r.Truncated {
		t.Truncated++
	}
	t.Rounds.Add(float64(r.Rounds))
	t.Seeds = append(t.Seeds, r.Seed)

	t.player(r.Winner).Wins++
	for i, name := range r.Busted {
		p := t.player(name)
		p.Busted++
		p.BustOrder.Add(float64(i + 1))
	}
}

func (t *Tally) player(name string) *PlayerStats {
	p, ok := t.Players[name]
	if !ok {
		p = &PlayerStats{Name: name}
		t.Players[name] = p
	}
	return p
}

// WinRate returns the share of games a player won and the half width of
// its 95% confidence interval (normal approximation)
func (t *Tally) WinRate(name string) (rate, margin float64) {
	p, ok := t.Players[name]
	if !ok || t.Games == 0 {
		return 0, 0
	}
	rate = float64(p.Wins) / float64(t.Games)
	margin = 1.96 * math.Sqrt(rate*(1-rate)/float64(t.Games))
	return rate, margin
}

// Ranked returns players ordered by wins, then name
func (t *Tally) Ranked() []*PlayerStats {
	out := make([]*PlayerStats, 0, len(t.Players))
	for _, p := range t.Players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Validate checks the tally is internally consistent
func (t *Tally) Validate() error {
	if t.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", t.Games)
	}
	if t.Rounds.N != t.Games {
		return fmt.Errorf("rounds recorded for %d games, want %d", t.Rounds.N, t.Games)
	}
	wins := 0
	for _, p := range t.Players {
		wins += p.Wins
		if p.Busted > t.Games {
			return fmt.Errorf("%s busted %d times in %d games", p.Name, p.Busted, t.Games)
		}
	}
	if wins != t.Games {
		return fmt.Errorf("total wins (%d) does not match games (%d)", wins, t.Games)
	}
	return nil
}
