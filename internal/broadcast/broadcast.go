// Package broadcast forwards game events to a NATS subject hierarchy so
// that dashboards and recorders can follow a simulation live.
package broadcast

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"

	"github.com/lox/holdemsim/internal/game"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Publisher sends a payload to a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Connect dials a NATS server
func Connect(url string) (*natsgo.Conn, error) {
	nc, err := natsgo.Connect(url, natsgo.Name("holdemsim"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return nc, nil
}

// Subject returns "<prefix>.<game id>.<event type>"
func Subject(prefix, gameID string, t game.EventType) string {
	if gameID == "" {
		gameID = "unknown"
	}
	return strings.Join([]string{prefix, gameID, t.String()}, ".")
}

// Forwarder drains a subscription and publishes every event
type Forwarder struct {
	pub    Publisher
	prefix string
	logger *log.Logger
	sent   atomic.Int64
	failed atomic.Int64
}

// NewForwarder creates a forwarder publishing under prefix
func NewForwarder(pub Publisher, prefix string, logger *log.Logger) *Forwarder {
	return &Forwarder{
		pub:    pub,
		prefix: prefix,
		logger: logger.WithPrefix("broadcast"),
	}
}

// Run publishes events until the subscription channel closes or ctx ends.
// Publish failures are logged and skipped.
func (f *Forwarder) Run(ctx context.Context, sub *game.Subscription) error {
	for {
		select {
		case e, ok := <-sub.C:
			if !ok {
				return nil
			}
			f.forward(e)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (f *Forwarder) forward(e game.Event) {
	subject := Subject(f.prefix, e.GameID, e.Type)

	data, err := json.Marshal(e)
	if err != nil {
		f.failed.Add(1)
		f.logger.Error("Failed to encode event", "type", e.Type, "error", err)
		return
	}
	if err := f.pub.Publish(subject, data); err != nil {
		f.failed.Add(1)
		f.logger.Warn("Failed to publish event", "subject", subject, "error", err)
		return
	}
	f.sent.Add(1)
	f.logger.Debug("Published event", "subject", subject, "bytes", len(data))
}

// Sent returns how many events were published
func (f *Forwarder) Sent() int64 {
	return f.sent.Load()
}

// Failed returns how many events could not be encoded or published
func (f *Forwarder) Failed() int64 {
	return f.failed.Load()
}
