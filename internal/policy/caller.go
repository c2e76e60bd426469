package policy

import (
	"context"

	"github.com/lox/holdemsim/internal/game"
)

// Caller is a calling station: it checks when possible, calls when it
// must and folds only when it cannot call
type Caller struct{}

// NewCaller creates a Caller policy
func NewCaller() *Caller {
	return &Caller{}
}

func (c *Caller) Decide(_ context.Context, v game.View) (game.ActionKind, error) {
	for _, kind := range []game.ActionKind{game.Check, game.Call} {
		if v.Can(kind) {
			return kind, nil
		}
	}
	return game.Fold, nil
}

func (c *Caller) Amount(_ context.Context, _ game.View, minBet, _ int) (int, error) {
	return minBet, nil
}
