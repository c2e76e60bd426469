package policy

import (
	"context"
	"math/rand/v2"

	"github.com/lox/holdemsim/internal/game"
)

// Random picks a uniform legal action and a uniform bet size
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a Random policy
func NewRandom(rng *rand.Rand) *Random {
	if rng == nil {
		panic("rng is required for the random policy")
	}
	return &Random{rng: rng}
}

func (r *Random) Decide(_ context.Context, v game.View) (game.ActionKind, error) {
	if len(v.Actions) == 0 {
		return game.Fold, nil
	}
	return v.Actions[r.rng.IntN(len(v.Actions))], nil
}

func (r *Random) Amount(_ context.Context, _ game.View, minBet, maxBet int) (int, error) {
	return uniform(r.rng, minBet, maxBet), nil
}

// uniform returns an integer in [lo, hi]
func uniform(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}
