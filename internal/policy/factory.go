package policy

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdemsim/internal/config"
	"github.com/lox/holdemsim/internal/game"
	"github.com/lox/holdemsim/internal/randutil"
)

// Deps carries what policies built from configuration may need
type Deps struct {
	Rand   *rand.Rand // split per player
	Logger *log.Logger
	Clock  quartz.Clock
	In     io.Reader // console input for human players
	Out    io.Writer // console output for human players
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// FromConfig builds the policy for one configured player. The returned
// closer releases any process or connection the policy owns.
func FromConfig(ctx context.Context, pc config.PlayerConfig, deps Deps) (game.Policy, io.Closer, error) {
	if deps.Rand == nil {
		panic("rng is required for policy construction")
	}
	logger := deps.Logger.With("player", pc.Name)

	switch pc.Policy {
	case config.PolicyMonteCarlo, "":
		return NewMonteCarlo(randutil.Split(deps.Rand), logger,
			WithTrials(pc.Trials), WithWorkers(pc.Workers)), nopCloser{}, nil

	case config.PolicyRandom:
		return NewRandom(randutil.Split(deps.Rand)), nopCloser{}, nil

	case config.PolicyCall:
		return NewCaller(), nopCloser{}, nil

	case config.PolicyHuman:
		return NewConsole(deps.In, deps.Out), nopCloser{}, nil

	case config.PolicyExternal:
		timeout, err := pc.TimeoutDuration()
		if err != nil {
			return nil, nil, err
		}
		if timeout == 0 {
			timeout = DefaultTimeout
		}

		var transport Transport
		if pc.URL != "" {
			transport, err = DialWebSocket(ctx, pc.URL)
		} else {
			transport, err = StartProcess(ctx, pc.Command, logger)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("player %q: %w", pc.Name, err)
		}

		clock := deps.Clock
		if clock == nil {
			clock = quartz.NewReal()
		}
		ext := NewExternal(transport, logger, WithTimeout(timeout), WithClock(clock))
		return ext, ext, nil

	default:
		return nil, nil, fmt.Errorf("player %q: unknown policy %q", pc.Name, pc.Policy)
	}
}
