package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/lox/holdemsim/internal/deck"
	"github.com/lox/holdemsim/internal/randutil"
)

var errScriptExhausted = errors.New("script exhausted")

// scripted plays a fixed list of actions and records what it saw
type scripted struct {
	mu      sync.Mutex
	kinds   []ActionKind
	amounts []int
	views   []View
}

func script(kinds ...ActionKind) *scripted {
	return &scripted{kinds: kinds}
}

func (s *scripted) withAmounts(amounts ...int) *scripted {
	s.amounts = amounts
	return s
}

func (s *scripted) Decide(_ context.Context, v View) (ActionKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append(s.views, v)
	if len(s.kinds) == 0 {
		return 0, errScriptExhausted
	}
	kind := s.kinds[0]
	s.kinds = s.kinds[1:]
	return kind, nil
}

func (s *scripted) Amount(_ context.Context, v View, minBet, maxBet int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.amounts) == 0 {
		return maxBet, nil
	}
	amount := s.amounts[0]
	s.amounts = s.amounts[1:]
	return amount, nil
}

// checker checks when it can and calls otherwise
type checker struct{}

func (checker) Decide(_ context.Context, v View) (ActionKind, error) {
	if v.Can(Check) {
		return Check, nil
	}
	return Call, nil
}

func (checker) Amount(_ context.Context, _ View, minBet, _ int) (int, error) {
	return minBet, nil
}

// randomPolicy picks a uniform legal action and a uniform amount
type randomPolicy struct {
	rng *rand.Rand
}

func (p randomPolicy) Decide(_ context.Context, v View) (ActionKind, error) {
	return v.Actions[p.rng.IntN(len(v.Actions))], nil
}

func (p randomPolicy) Amount(_ context.Context, _ View, minBet, maxBet int) (int, error) {
	return minBet + p.rng.IntN(maxBet-minBet+1), nil
}

// failing returns an error from every call
type failing struct{ err error }

func (f failing) Decide(context.Context, View) (ActionKind, error) { return 0, f.err }

func (f failing) Amount(context.Context, View, int, int) (int, error) { return 0, f.err }

func stacked(s string) deck.Dealer {
	return deck.NewStacked(deck.MustParseCards(s)...)
}

func shuffled(seed int64) deck.Dealer {
	return deck.New(randutil.New(seed))
}

func newTestRoster(stacks []int, policies ...Policy) *Roster {
	roster := NewRoster()
	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi"}
	for i, stack := range stacks {
		var policy Policy = checker{}
		if i < len(policies) {
			policy = policies[i]
		}
		roster.Add(names[i], stack, policy)
	}
	return roster
}

func seatIDs(r *Roster) []int {
	ids := make([]int, 0, r.Len())
	for _, p := range r.Players() {
		ids = append(ids, p.ID)
	}
	return ids
}
