package evaluator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"github.com/lox/holdemsim/internal/deck"
	"github.com/lox/holdemsim/internal/randutil"
	"golang.org/x/sync/errgroup"
)

// DefaultTrials is the number of simulated deals per rollout
const DefaultTrials = 100

// Rollout estimates how often a pocket ends up with the best hand at the
// table by dealing out the unknown cards at random many times.
type Rollout struct {
	Trials  int // simulated deals, DefaultTrials when zero
	Workers int // goroutines, GOMAXPROCS capped at 8 when zero
}

// RolloutResult holds per-seat trial wins. Seat 0 is the hero; seats
// 1..n are the simulated opponents.
type RolloutResult struct {
	Wins   []int
	Ties   int // trials where the best hand was shared
	Trials int
}

// Leader returns the seat with the most wins, preferring the lowest seat
func (r RolloutResult) Leader() int {
	leader := 0
	for seat, w := range r.Wins {
		if w > r.Wins[leader] {
			leader = seat
		}
	}
	return leader
}

// HeroLeadsOutright reports whether the hero won strictly more trials than
// every other seat
func (r RolloutResult) HeroLeadsOutright() bool {
	if len(r.Wins) == 0 {
		return false
	}
	for _, w := range r.Wins[1:] {
		if w >= r.Wins[0] {
			return false
		}
	}
	return true
}

// Ratio returns hero wins divided by the leader's wins. It is 1 when the
// leader has no wins, since nobody is then ahead of the hero.
func (r RolloutResult) Ratio() float64 {
	if len(r.Wins) == 0 {
		return 0
	}
	lead := r.Wins[r.Leader()]
	if lead == 0 {
		return 1
	}
	return float64(r.Wins[0]) / float64(lead)
}

// Run simulates the hand against the given number of opponents. Board and
// opponent cards are drawn without replacement from the cards the hero
// cannot see, so no trial deals a card twice.
func (r Rollout) Run(ctx context.Context, rng *rand.Rand, pocket, board []deck.Card, opponents int) (RolloutResult, error) {
	if len(pocket) != 2 {
		return RolloutResult{}, fmt.Errorf("%w: pocket needs 2 cards, got %d", ErrMalformedHand, len(pocket))
	}
	if len(board) > 5 {
		return RolloutResult{}, fmt.Errorf("%w: at most 5 community cards, got %d", ErrMalformedHand, len(board))
	}
	if opponents < 0 {
		return RolloutResult{}, fmt.Errorf("negative opponent count %d", opponents)
	}

	known := deck.NewCardSet(pocket...)
	for _, c := range board {
		known.Add(c)
	}
	if known.Len() != len(pocket)+len(board) {
		return RolloutResult{}, fmt.Errorf("%w: duplicate cards in %v %v", ErrMalformedHand, pocket, board)
	}
	unknown := known.Complement(make([]deck.Card, 0, 52))
	if need := 5 - len(board) + 2*opponents; need > len(unknown) {
		return RolloutResult{}, fmt.Errorf("%d opponents need %d cards, only %d left", opponents, need, len(unknown))
	}

	trials := r.Trials
	if trials <= 0 {
		trials = DefaultTrials
	}
	workers := r.Workers
	if workers <= 0 {
		workers = min(runtime.GOMAXPROCS(0), 8)
	}
	workers = min(workers, trials)

	// each worker fills its own slot; merged after Wait
	results := make([]RolloutResult, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		n := trials / workers
		if w < trials%workers {
			n++
		}
		workerRng := randutil.Split(rng)
		g.Go(func() error {
			res, err := rolloutWorker(ctx, workerRng, pocket, board, unknown, opponents, n)
			results[w] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return RolloutResult{}, err
	}

	total := RolloutResult{Wins: make([]int, opponents+1)}
	for _, res := range results {
		for seat, w := range res.Wins {
			total.Wins[seat] += w
		}
		total.Ties += res.Ties
		total.Trials += res.Trials
	}
	return total, nil
}

func rolloutWorker(ctx context.Context, rng *rand.Rand, pocket, board, unknown []deck.Card, opponents, trials int) (RolloutResult, error) {
	res := RolloutResult{Wins: make([]int, opponents+1)}
	pool := make([]deck.Card, len(unknown))
	copy(pool, unknown)

	boardNeeded := 5 - len(board)
	draw := boardNeeded + 2*opponents

	var seven [7]deck.Card
	for t := range trials {
		if t%64 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		// partial Fisher-Yates: pool[:draw] becomes a uniform sample
		for i := range draw {
			j := i + rng.IntN(len(pool)-i)
			pool[i], pool[j] = pool[j], pool[i]
		}
		copy(seven[2:], board)
		copy(seven[2+len(board):], pool[:boardNeeded])

		seven[0], seven[1] = pocket[0], pocket[1]
		top := best(&seven, 7)
		winner, shared := 0, false
		for opp := range opponents {
			hole := pool[boardNeeded+2*opp:]
			seven[0], seven[1] = hole[0], hole[1]
			h := best(&seven, 7)
			switch cmp := Compare(h, top); {
			case cmp > 0:
				top = h
				winner, shared = opp+1, false
			case cmp == 0:
				shared = true
			}
		}

		if shared {
			res.Ties++
		} else {
			res.Wins[winner]++
		}
		res.Trials++
	}
	return res, nil
}
