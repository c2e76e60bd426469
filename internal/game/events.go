package game

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lox/holdemsim/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

const (
	EventGameStarted   EventType = "game_started"
	EventRoundStarted  EventType = "round_started"
	EventPlayerBetting EventType = "player_betting"
	EventPlayerBet     EventType = "player_bet"
	EventCardOpened    EventType = "card_opened"
	EventRoundFinished EventType = "round_finished"
	EventGameFinished  EventType = "game_finished"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// PlayerRef identifies a player in an event
type PlayerRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func refOf(p *Player) *PlayerRef {
	if p == nil {
		return nil
	}
	return &PlayerRef{ID: p.ID, Name: p.Name}
}

// Event is a notification about game progress. Only the fields relevant to
// the type are set.
type Event struct {
	Type    EventType   `json:"type"`
	GameID  string      `json:"game_id,omitempty"`
	RoundID string      `json:"round_id,omitempty"`
	Round   int         `json:"round,omitempty"`
	Player  *PlayerRef  `json:"player,omitempty"`
	Action  *Action     `json:"action,omitempty"`
	Amount  int         `json:"amount,omitempty"`
	Cards   []deck.Card `json:"cards,omitempty"`
	Payouts []Payout    `json:"payouts,omitempty"`
	Pot     int         `json:"pot,omitempty"`
	Players []PlayerRef `json:"players,omitempty"`
	Time    time.Time   `json:"time"`
}

// Subscription receives events on C until the bus closes
type Subscription struct {
	C <-chan Event

	ch  chan Event
	bus *EventBus
}

// Unsubscribe stops delivery and closes C
func (s *Subscription) Unsubscribe() {
	s.bus.remove(s)
}

// EventBus fans events out to subscribers. Publish never blocks: an event
// that does not fit in a subscriber's buffer is dropped for that
// subscriber and counted.
type EventBus struct {
	mu      sync.Mutex
	subs    []*Subscription
	closed  bool
	dropped atomic.Int64
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a consumer with the given channel buffer
func (b *EventBus) Subscribe(buffer int) *Subscription {
	ch := make(chan Event, max(buffer, 0))
	s := &Subscription{C: ch, ch: ch, bus: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return s
	}
	b.subs = append(b.subs, s)
	return s
}

// Publish delivers e to every subscriber that has room. Safe on a nil bus.
func (b *EventBus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		select {
		case s.ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped returns how many deliveries were skipped because a subscriber
// was full
func (b *EventBus) Dropped() int64 {
	return b.dropped.Load()
}

// Close closes every subscription. Later publishes are discarded.
func (b *EventBus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
}

func (b *EventBus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == s {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(s.ch)
			return
		}
	}
}
