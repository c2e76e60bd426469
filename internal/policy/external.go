package policy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	jsoniter "github.com/json-iterator/go"
	"github.com/lox/holdemsim/internal/game"
)

// ErrMalformedResponse is returned when an external policy answers with
// something that is not an action or an amount
var ErrMalformedResponse = errors.New("malformed policy response")

// DefaultTimeout bounds how long an external policy may think
const DefaultTimeout = 10 * time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request is the message sent to an external policy
type Request struct {
	ID   int       `json:"id"`
	Type string    `json:"type"` // "action" or "amount"
	View game.View `json:"view"`
	Min  int       `json:"min,omitempty"`
	Max  int       `json:"max,omitempty"`
}

// Response is the message expected back. Responses carrying a different
// non-zero ID belong to an earlier, timed out request and are skipped.
type Response struct {
	ID     int    `json:"id,omitempty"`
	Action string `json:"action,omitempty"`
	Amount *int   `json:"amount,omitempty"`
}

// External delegates decisions to another program, for example a trained
// model, by sending it the table view and reading its answer.
type External struct {
	transport Transport
	clock     quartz.Clock
	timeout   time.Duration
	logger    *log.Logger

	mu  sync.Mutex
	seq int
}

// ExternalOption configures an External policy
type ExternalOption func(*External)

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) ExternalOption {
	return func(e *External) { e.timeout = d }
}

// WithClock sets the clock used for request timeouts
func WithClock(clock quartz.Clock) ExternalOption {
	return func(e *External) { e.clock = clock }
}

// NewExternal creates a policy talking over transport
func NewExternal(transport Transport, logger *log.Logger, opts ...ExternalOption) *External {
	e := &External{
		transport: transport,
		clock:     quartz.NewReal(),
		timeout:   DefaultTimeout,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide asks for an action. On timeout the player checks when it can and
// folds otherwise.
func (e *External) Decide(ctx context.Context, v game.View) (game.ActionKind, error) {
	resp, err := e.exchange(ctx, Request{Type: "action", View: v})
	if errors.Is(err, errTimeout) {
		e.logger.Warn("Decision timeout", "player", v.Name, "timeout", e.timeout)
		if v.Can(game.Check) {
			return game.Check, nil
		}
		return game.Fold, nil
	}
	if err != nil {
		return game.Fold, err
	}

	kind, err := game.ParseActionKind(resp.Action)
	if err != nil {
		return game.Fold, fmt.Errorf("%w: action %q", ErrMalformedResponse, resp.Action)
	}
	return kind, nil
}

// Amount asks for a bet size. On timeout the minimum is used.
func (e *External) Amount(ctx context.Context, v game.View, minBet, maxBet int) (int, error) {
	resp, err := e.exchange(ctx, Request{Type: "amount", View: v, Min: minBet, Max: maxBet})
	if errors.Is(err, errTimeout) {
		e.logger.Warn("Amount timeout", "player", v.Name, "timeout", e.timeout)
		return minBet, nil
	}
	if err != nil {
		return minBet, err
	}
	if resp.Amount == nil {
		return minBet, fmt.Errorf("%w: missing amount", ErrMalformedResponse)
	}
	return *resp.Amount, nil
}

// Close closes the underlying transport
func (e *External) Close() error {
	return e.transport.Close()
}

var errTimeout = errors.New("policy timed out")

func (e *External) exchange(ctx context.Context, req Request) (Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.seq++
	req.ID = e.seq

	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encoding request: %w", err)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	timedOut := make(chan struct{})
	if e.timeout > 0 {
		timer := e.clock.AfterFunc(e.timeout, func() {
			close(timedOut)
			cancel()
		})
		defer timer.Stop()
	}

	if err := e.transport.Send(reqCtx, payload); err != nil {
		return Response{}, e.classify(ctx, timedOut, err)
	}

	for {
		raw, err := e.transport.Receive(reqCtx)
		if err != nil {
			return Response{}, e.classify(ctx, timedOut, err)
		}

		var resp Response
		if err := json.Unmarshal(raw, &resp); err != nil {
			return Response{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		if resp.ID != 0 && resp.ID != req.ID {
			e.logger.Debug("Discarding stale response", "id", resp.ID, "want", req.ID)
			continue
		}
		return resp, nil
	}
}

// classify tells a timeout apart from the caller giving up
func (e *External) classify(ctx context.Context, timedOut <-chan struct{}, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	select {
	case <-timedOut:
		return errTimeout
	default:
		return err
	}
}
