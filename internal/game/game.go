package game

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdemsim/internal/deck"
	"github.com/lox/holdemsim/internal/gameid"
	"github.com/lox/holdemsim/internal/randutil"
)

// DealerFactory creates the card source for each round
type DealerFactory func(rng *rand.Rand) deck.Dealer

// Option configures a Game during creation
type Option func(*Game)

// WithSmallBlind sets the small blind; the big blind is always twice that
func WithSmallBlind(amount int) Option {
	return func(g *Game) { g.smallBlind = amount }
}

// WithMaxRaise sets how far a bet may exceed the minimum. Negative means
// no ceiling.
func WithMaxRaise(amount int) Option {
	return func(g *Game) { g.maxRaise = amount }
}

// WithRand sets the random source used for the button and for shuffling
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(g *Game) { g.logger = logger }
}

// WithClock sets the clock used for event times and elapsed time
func WithClock(clock quartz.Clock) Option {
	return func(g *Game) { g.clock = clock }
}

// WithEventBus publishes game events on bus
func WithEventBus(bus *EventBus) Option {
	return func(g *Game) { g.events = bus }
}

// WithButton gives the dealer marker to the player with this ID first
func WithButton(id int) Option {
	return func(g *Game) { g.button = id }
}

// WithDealer overrides how each round's deck is built
func WithDealer(factory DealerFactory) Option {
	return func(g *Game) { g.newDealer = factory }
}

// WithMaxRounds stops the game after n rounds. Zero plays until one
// player holds every chip.
func WithMaxRounds(n int) Option {
	return func(g *Game) { g.maxRounds = n }
}

// WithDecisionRetries sets how often an illegal decision is re-requested
func WithDecisionRetries(n int) Option {
	return func(g *Game) { g.retries = n }
}

// WithID sets the game identifier
func WithID(id string) Option {
	return func(g *Game) { g.id = id }
}

// Game plays rounds until a single player holds all the chips
type Game struct {
	id         string
	roster     *Roster
	seated     []int
	finished   []int
	button     int
	smallBlind int
	maxRaise   int
	retries    int
	maxRounds  int
	rounds     int
	log        []string

	rng       *rand.Rand
	logger    *log.Logger
	clock     quartz.Clock
	events    *EventBus
	newDealer DealerFactory
}

// Result describes a finished game
type Result struct {
	ID        string
	Winner    *Player
	Rounds    int
	Log       []string
	Finished  []*Player
	Elapsed   time.Duration
	Truncated bool // stopped by the round limit; Winner is the chip leader
}

// New creates a game over every player in the roster, seated in roster
// order
func New(roster *Roster, opts ...Option) (*Game, error) {
	g := &Game{
		roster:     roster,
		button:     -1,
		smallBlind: 1,
		maxRaise:   DefaultMaxRaise,
		retries:    DefaultDecisionRetries,
	}
	for _, opt := range opts {
		opt(g)
	}

	if roster.Len() < 2 {
		return nil, fmt.Errorf("game needs at least 2 players, got %d", roster.Len())
	}
	if roster.Len() > MaxPlayers {
		return nil, fmt.Errorf("game seats at most %d players, got %d", MaxPlayers, roster.Len())
	}
	if g.smallBlind <= 0 {
		return nil, fmt.Errorf("small blind must be positive, got %d", g.smallBlind)
	}
	if g.id == "" {
		g.id = gameid.Generate()
	}
	if g.rng == nil {
		g.rng, _ = randutil.FromSeed(0)
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard)
	}
	if g.clock == nil {
		g.clock = quartz.NewReal()
	}
	if g.newDealer == nil {
		g.newDealer = func(rng *rand.Rand) deck.Dealer { return deck.New(rng) }
	}

	for _, p := range roster.Players() {
		if p.Money <= 0 {
			return nil, fmt.Errorf("player %s starts without chips", p.Name)
		}
		g.seated = append(g.seated, p.ID)
	}
	if g.button < 0 {
		g.button = g.seated[g.rng.IntN(len(g.seated))]
	} else if !slices.Contains(g.seated, g.button) {
		return nil, fmt.Errorf("button player %d is not in the roster", g.button)
	}
	return g, nil
}

// ID returns the game identifier
func (g *Game) ID() string { return g.id }

// Seated returns the players still in the game
func (g *Game) Seated() []*Player { return g.players(g.seated) }

// Finished returns the players who ran out of chips, in order of
// elimination
func (g *Game) Finished() []*Player { return g.players(g.finished) }

// Button returns the ID of the player holding the dealer marker
func (g *Game) Button() int { return g.button }

func (g *Game) players(ids []int) []*Player {
	out := make([]*Player, len(ids))
	for i, id := range ids {
		out[i] = g.roster.Get(id)
	}
	return out
}

// Run plays rounds until one player is left, the round limit is hit or ctx
// is cancelled. A round in progress always completes.
func (g *Game) Run(ctx context.Context) (*Result, error) {
	defer g.events.Close()

	start := g.clock.Now()
	logger := g.logger.With("game", g.id)
	g.log = append(g.log, "STARTING GAME...")
	g.publish(Event{Type: EventGameStarted, Players: refsOf(g.Seated())})
	logger.Info("Starting game", "players", len(g.seated), "small_blind", g.smallBlind)

	truncated := false
	for len(g.seated) > 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g.maxRounds > 0 && g.rounds >= g.maxRounds {
			truncated = true
			break
		}
		if err := g.playRound(ctx); err != nil {
			return nil, err
		}
	}

	winner := g.leader()
	g.log = append(g.log, fmt.Sprintf("%s won the game.", winner.Name))
	logger.Info("Game finished", "winner", winner.Name, "rounds", g.rounds, "truncated", truncated)
	g.publish(Event{Type: EventGameFinished, Player: refOf(winner)})

	return &Result{
		ID:        g.id,
		Winner:    winner,
		Rounds:    g.rounds,
		Log:       slices.Clone(g.log),
		Finished:  g.Finished(),
		Elapsed:   g.clock.Since(start),
		Truncated: truncated,
	}, nil
}

func (g *Game) playRound(ctx context.Context) error {
	g.rounds++
	g.logger.Debug("Playing round", "round", g.rounds, "players", g.Seated())

	round, err := NewRound(g.roster, g.seated, g.button, g.newDealer(g.rng), RoundConfig{
		GameID:          g.id,
		Number:          g.rounds,
		SmallBlind:      g.smallBlind,
		MaxRaise:        g.maxRaise,
		DecisionRetries: g.retries,
		Logger:          g.logger,
		Events:          g.events,
		Clock:           g.clock,
	})
	if err != nil {
		return err
	}
	// cancellation is only observed between rounds
	result, err := round.Play(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}

	for _, payout := range result.Payouts {
		with := "everyone else folded"
		if payout.Hand != nil {
			with = payout.Hand.String()
		}
		line := fmt.Sprintf("Round %d - %s won %d with %s", g.rounds, payout.Name, payout.Amount, with)
		g.log = append(g.log, line)
		g.logger.Info(line)
	}

	// the button moves before broke players leave so seating is intact
	g.advanceButton()
	g.removeBroke()
	return nil
}

// advanceButton passes the dealer marker to the next seated player with
// chips
func (g *Game) advanceButton() {
	i := slices.Index(g.seated, g.button)
	for range g.seated {
		i = (i + 1) % len(g.seated)
		if g.roster.Get(g.seated[i]).Money > 0 {
			g.button = g.seated[i]
			return
		}
	}
}

func (g *Game) removeBroke() {
	g.seated = slices.DeleteFunc(g.seated, func(id int) bool {
		p := g.roster.Get(id)
		if p.Money > 0 {
			return false
		}
		g.logger.Info("Player finished the game", "player", p.Name)
		g.finished = append(g.finished, id)
		return true
	})
}

// leader returns the seated player with the most chips, earliest seat
// first on ties
func (g *Game) leader() *Player {
	var best *Player
	for _, p := range g.Seated() {
		if best == nil || p.Money > best.Money {
			best = p
		}
	}
	return best
}

func (g *Game) publish(e Event) {
	e.GameID = g.id
	e.Time = g.clock.Now()
	g.events.Publish(e)
}

func refsOf(players []*Player) []PlayerRef {
	refs := make([]PlayerRef, len(players))
	for i, p := range players {
		refs[i] = *refOf(p)
	}
	return refs
}
