package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdemsim/internal/deck"
	"github.com/lox/holdemsim/internal/evaluator"
	"github.com/lox/holdemsim/internal/gameid"
)

// ErrChipConservation means chips were created or destroyed during a round
var ErrChipConservation = errors.New("chip conservation violated")

// DefaultMaxRaise caps how far a bet may exceed the minimum
const DefaultMaxRaise = 30

// DefaultDecisionRetries is how often an illegal decision is re-requested
// before a fallback action is applied
const DefaultDecisionRetries = 5

// MaxPlayers is the most players one deck can deal a full board and two
// pocket cards to
const MaxPlayers = (52 - 5) / 2

// Street is a betting street
type Street uint8

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

var streetNames = [...]string{Preflop: "preflop", Flop: "flop", Turn: "turn", River: "river"}

func (s Street) String() string {
	if int(s) < len(streetNames) {
		return streetNames[s]
	}
	return "unknown"
}

// MarshalText encodes the street name
func (s Street) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a street name
func (s *Street) UnmarshalText(text []byte) error {
	for i, name := range streetNames {
		if name == string(text) {
			*s = Street(i)
			return nil
		}
	}
	return fmt.Errorf("unknown street %q", text)
}

// Phase is the state of a round
type Phase uint8

const (
	TakingBlinds Phase = iota
	PreflopBetting
	FlopBetting
	TurnBetting
	RiverBetting
	Showdown
	Settled
)

var phaseNames = [...]string{
	TakingBlinds:   "taking blinds",
	PreflopBetting: "preflop betting",
	FlopBetting:    "flop betting",
	TurnBetting:    "turn betting",
	RiverBetting:   "river betting",
	Showdown:       "showdown",
	Settled:        "settled",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// RoundConfig holds the settings of a round. Zero values get defaults.
type RoundConfig struct {
	ID              string
	GameID          string
	Number          int
	SmallBlind      int
	MaxRaise        int
	DecisionRetries int
	Logger          *log.Logger
	Events          *EventBus
	Clock           quartz.Clock
}

// Payout is what one player took from the pot
type Payout struct {
	PlayerID int             `json:"player_id"`
	Name     string          `json:"name"`
	Amount   int             `json:"amount"`
	Hand     *evaluator.Hand `json:"hand,omitempty"`
}

// RoundResult summarises a finished round
type RoundResult struct {
	ID        string      `json:"id"`
	Number    int         `json:"number"`
	Payouts   []Payout    `json:"payouts"`
	Refunds   map[int]int `json:"refunds,omitempty"`
	Community []deck.Card `json:"community"`
	Actions   []Action    `json:"actions"`
	Showdown  bool        `json:"showdown"`
}

// Round plays a single hand: blinds, four betting streets and settlement.
// It refers to players by ID and resolves them through the roster, so
// stack changes are visible to the whole game.
type Round struct {
	cfg    RoundConfig
	roster *Roster
	seats  []int
	button int // index into seats
	dealer deck.Dealer

	pot        *Pot
	folded     map[int]bool
	pending    map[int]bool
	community  []deck.Card
	actions    []Action
	phase      Phase
	street     Street
	startChips int
	result     *RoundResult

	logger *log.Logger
}

// NewRound seats the given players, with button holding the dealer
// marker, and deals two pocket cards to each.
func NewRound(roster *Roster, seats []int, button int, dealer deck.Dealer, cfg RoundConfig) (*Round, error) {
	if len(seats) < 2 {
		return nil, fmt.Errorf("round needs at least 2 players, got %d", len(seats))
	}
	buttonIdx := slices.Index(seats, button)
	if buttonIdx < 0 {
		return nil, fmt.Errorf("button player %d is not seated", button)
	}
	if cfg.SmallBlind <= 0 {
		return nil, fmt.Errorf("small blind must be positive, got %d", cfg.SmallBlind)
	}
	if cfg.ID == "" {
		cfg.ID = gameid.Generate()
	}
	if cfg.MaxRaise == 0 {
		cfg.MaxRaise = DefaultMaxRaise
	}
	if cfg.DecisionRetries == 0 {
		cfg.DecisionRetries = DefaultDecisionRetries
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}

	r := &Round{
		cfg:     cfg,
		roster:  roster,
		seats:   slices.Clone(seats),
		button:  buttonIdx,
		dealer:  dealer,
		pot:     NewPot(cfg.SmallBlind),
		folded:  make(map[int]bool),
		pending: make(map[int]bool),
		logger:  cfg.Logger.With("round", cfg.Number),
	}

	for _, id := range r.seats {
		p := roster.Get(id)
		if p == nil {
			return nil, fmt.Errorf("unknown player %d", id)
		}
		if p.Policy == nil {
			return nil, fmt.Errorf("player %s has no policy", p.Name)
		}
		r.startChips += p.Money
	}

	r.logger.Debug("Dealing cards")
	for _, id := range r.seats {
		pocket, err := dealer.DrawN(2)
		if err != nil {
			return nil, fmt.Errorf("dealing pocket cards: %w", err)
		}
		r.roster.Get(id).Pocket = pocket
	}
	return r, nil
}

// ID returns the round identifier
func (r *Round) ID() string { return r.cfg.ID }

// Phase returns the current state
func (r *Round) Phase() Phase { return r.phase }

// Pot returns the round's ledger
func (r *Round) Pot() *Pot { return r.pot }

// Community returns the open community cards
func (r *Round) Community() []deck.Card { return slices.Clone(r.community) }

// Actions returns the action log
func (r *Round) Actions() []Action { return slices.Clone(r.actions) }

// Folded reports whether a player has folded
func (r *Round) Folded(id int) bool { return r.folded[id] }

// Play runs the round to completion
func (r *Round) Play(ctx context.Context) (*RoundResult, error) {
	for r.phase != Settled {
		if err := r.step(ctx); err != nil {
			return nil, fmt.Errorf("round %d (%s): %w", r.cfg.Number, r.phase, err)
		}
	}
	return r.result, nil
}

// step advances the round by one phase
func (r *Round) step(ctx context.Context) error {
	switch r.phase {
	case TakingBlinds:
		r.publish(Event{Type: EventRoundStarted, Players: r.playerRefs()})
		if err := r.takeBlinds(); err != nil {
			return err
		}
		r.phase = PreflopBetting

	case PreflopBetting:
		if err := r.bettingStreet(ctx, Preflop, r.after(r.bigBlind())); err != nil {
			return err
		}
		return r.advance(3, FlopBetting)

	case FlopBetting:
		if err := r.bettingStreet(ctx, Flop, r.after(r.button)); err != nil {
			return err
		}
		return r.advance(1, TurnBetting)

	case TurnBetting:
		if err := r.bettingStreet(ctx, Turn, r.after(r.button)); err != nil {
			return err
		}
		return r.advance(1, RiverBetting)

	case RiverBetting:
		if err := r.bettingStreet(ctx, River, r.after(r.button)); err != nil {
			return err
		}
		r.phase = Showdown

	case Showdown:
		if err := r.settle(); err != nil {
			return err
		}
		r.phase = Settled
	}
	return nil
}

// advance opens n community cards and moves to next, or jumps straight to
// settlement when only one player is left
func (r *Round) advance(n int, next Phase) error {
	if r.soleSurvivor() != nil {
		r.phase = Showdown
		return nil
	}
	for range n {
		if err := r.openCard(); err != nil {
			return err
		}
	}
	r.phase = next
	return nil
}

func (r *Round) openCard() error {
	card, err := r.dealer.Draw()
	if err != nil {
		return fmt.Errorf("opening community card: %w", err)
	}
	r.community = append(r.community, card)
	r.logger.Debug("Card opened", "card", card, "community", r.community)
	r.publish(Event{Type: EventCardOpened, Cards: []deck.Card{card}})
	return nil
}

func (r *Round) smallBlind() int { return r.after(r.button) }

func (r *Round) bigBlind() int { return r.after(r.smallBlind()) }

// after returns the seat index following i, wrapping
func (r *Round) after(i int) int {
	return (i + 1) % len(r.seats)
}

func (r *Round) player(i int) *Player {
	return r.roster.Get(r.seats[i])
}

func (r *Round) takeBlinds() error {
	sb, bb := r.player(r.smallBlind()), r.player(r.bigBlind())
	r.logger.Debug("Taking blinds", "small", sb.Name, "big", bb.Name)
	if err := r.forceBet(sb, r.cfg.SmallBlind); err != nil {
		return err
	}
	return r.forceBet(bb, 2*r.cfg.SmallBlind)
}

func (r *Round) forceBet(p *Player, amount int) error {
	taken := p.ForceBet(amount)
	if err := r.pot.Bet(p.ID, taken); err != nil {
		return err
	}
	r.publish(Event{Type: EventPlayerBet, Player: refOf(p), Amount: taken, Pot: r.pot.Total()})
	return nil
}

// bet moves chips from a player into the pot
func (r *Round) bet(p *Player, amount int) error {
	if err := p.Bet(amount); err != nil {
		return err
	}
	if err := r.pot.Bet(p.ID, amount); err != nil {
		return err
	}
	r.publish(Event{Type: EventPlayerBet, Player: refOf(p), Amount: amount, Pot: r.pot.Total()})
	return nil
}

func (r *Round) activePlayers() []*Player {
	active := make([]*Player, 0, len(r.seats))
	for _, id := range r.seats {
		if !r.folded[id] {
			active = append(active, r.roster.Get(id))
		}
	}
	return active
}

// soleSurvivor returns the only player who has not folded, if there is one
func (r *Round) soleSurvivor() *Player {
	active := r.activePlayers()
	if len(active) == 1 {
		return active[0]
	}
	return nil
}

// eligible reports whether the player at seat i still has to act this
// street: they hold cards and chips, someone is left to play against, and
// they either owe chips or have not had a turn yet.
func (r *Round) eligible(i int) bool {
	p := r.player(i)
	if r.folded[p.ID] || p.Money <= 0 || len(r.activePlayers()) < 2 {
		return false
	}
	return r.pot.AmountToCall(p.ID) > 0 || r.pending[p.ID]
}

// next returns the first eligible seat after i, or -1
func (r *Round) next(i int) int {
	for c := r.after(i); c != i; c = r.after(c) {
		if r.eligible(c) {
			return c
		}
	}
	return -1
}

func (r *Round) bettingStreet(ctx context.Context, street Street, first int) error {
	if r.soleSurvivor() != nil {
		return nil
	}
	r.street = street
	for _, id := range r.seats {
		r.pending[id] = !r.folded[id]
	}

	current := first
	if !r.eligible(current) {
		current = r.next(current)
	}
	for current >= 0 {
		p := r.player(current)
		r.pending[p.ID] = false
		if err := r.turn(ctx, p); err != nil {
			return err
		}
		current = r.next(current)
	}
	r.logger.Debug("Betting done", "street", street, "pot", r.pot.Total())
	return nil
}

// turn asks p for a decision and applies it
func (r *Round) turn(ctx context.Context, p *Player) error {
	r.publish(Event{Type: EventPlayerBetting, Player: refOf(p), Pot: r.pot.Total()})

	kind, amount, err := r.decide(ctx, p)
	if err != nil {
		return err
	}
	moved, err := appliers[kind](r, p, amount)
	if err != nil {
		return err
	}

	action := Action{Kind: kind, PlayerID: p.ID, Player: p.Name, Amount: moved, Street: r.street}
	r.actions = append(r.actions, action)
	r.logger.Debug("Player action", "player", p.Name, "action", kind, "amount", moved, "pot", r.pot.Total())
	return nil
}

// decide obtains a legal action from p's policy. Illegal answers are
// re-requested a bounded number of times, then replaced by the first legal
// action. Policy errors are returned as is.
func (r *Round) decide(ctx context.Context, p *Player) (ActionKind, int, error) {
	view := r.View(p)
	if len(view.Actions) == 0 {
		return 0, 0, fmt.Errorf("player %s has no legal action: %w", p.Name, ErrIllegalAction)
	}
	logger := r.logger.With("player", p.Name)

	kind, ok := Fold, false
	for attempt := 0; attempt <= r.cfg.DecisionRetries && !ok; attempt++ {
		choice, err := p.Policy.Decide(ctx, view)
		if err != nil {
			return 0, 0, fmt.Errorf("policy for %s: %w", p.Name, err)
		}
		if ok = view.Can(choice); ok {
			kind = choice
		} else {
			logger.Warn("Illegal action, asking again", "action", choice, "legal", view.Actions, "attempt", attempt+1)
		}
	}
	if !ok {
		kind = view.Actions[0]
		logger.Error("Policy kept choosing illegal actions, applying fallback", "error", ErrIllegalAction, "fallback", kind)
	}
	if kind != Bet {
		return kind, 0, nil
	}

	for attempt := 0; attempt <= r.cfg.DecisionRetries; attempt++ {
		amount, err := p.Policy.Amount(ctx, view, view.MinBet, view.MaxBet)
		if err != nil {
			return 0, 0, fmt.Errorf("policy for %s: %w", p.Name, err)
		}
		if amount >= view.MinBet && amount <= view.MaxBet {
			return Bet, amount, nil
		}
		logger.Warn("Bet out of range, asking again", "amount", amount, "min", view.MinBet, "max", view.MaxBet, "attempt", attempt+1)
	}
	logger.Error("Policy kept choosing bad amounts, betting the minimum", "error", ErrIllegalAction, "amount", view.MinBet)
	return Bet, view.MinBet, nil
}

// View builds the snapshot a policy sees for p
func (r *Round) View(p *Player) View {
	minBet, maxBet := r.BetLimits(p)
	v := View{
		GameID:     r.cfg.GameID,
		RoundID:    r.cfg.ID,
		Round:      r.cfg.Number,
		Street:     r.street,
		PlayerID:   p.ID,
		Name:       p.Name,
		Money:      p.Money,
		Pocket:     slices.Clone(p.Pocket),
		Community:  slices.Clone(r.community),
		Pot:        r.pot.Total(),
		CurrentBet: r.pot.CurrentBet(),
		ToCall:     r.pot.AmountToCall(p.ID),
		MinBet:     minBet,
		MaxBet:     maxBet,
		Actions:    r.AvailableActions(p),
		SmallBlind: r.cfg.SmallBlind,
		Button:     r.seats[r.button],
	}
	for _, id := range r.seats {
		q := r.roster.Get(id)
		v.Seats = append(v.Seats, SeatView{
			ID:     q.ID,
			Name:   q.Name,
			Money:  q.Money,
			Bet:    r.pot.PlayerBet(q.ID),
			Folded: r.folded[q.ID],
		})
	}
	return v
}

type rankedPlayer struct {
	player *Player
	hand   *evaluator.Hand
}

// ranking orders the remaining players strongest first. Equal hands keep
// seating order.
func (r *Round) ranking() ([]rankedPlayer, error) {
	active := r.activePlayers()
	ranked := make([]rankedPlayer, len(active))
	for i, p := range active {
		ranked[i].player = p
	}
	if len(active) == 1 {
		return ranked, nil
	}

	for i, p := range active {
		h, err := evaluator.BestHand(p.Pocket, r.community)
		if err != nil {
			return nil, fmt.Errorf("ranking %s: %w", p.Name, err)
		}
		ranked[i].hand = &h
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].hand.Beats(*ranked[j].hand)
	})
	return ranked, nil
}

// settle pays the winners, refunds what nobody could claim and checks that
// no chips were lost
func (r *Round) settle() error {
	ranked, err := r.ranking()
	if err != nil {
		return err
	}

	result := &RoundResult{
		ID:        r.cfg.ID,
		Number:    r.cfg.Number,
		Community: slices.Clone(r.community),
		Actions:   slices.Clone(r.actions),
		Showdown:  len(ranked) > 1,
	}
	for _, w := range ranked {
		winnings := r.pot.TakePotForPlayer(w.player.ID)
		if winnings == 0 {
			continue
		}
		w.player.Money += winnings
		result.Payouts = append(result.Payouts, Payout{
			PlayerID: w.player.ID,
			Name:     w.player.Name,
			Amount:   winnings,
			Hand:     w.hand,
		})
		r.logger.Info("Giving winnings", "player", w.player.Name, "amount", winnings, "hand", w.hand)
	}

	if refunds := r.pot.Refund(); len(refunds) > 0 {
		result.Refunds = refunds
		for id, amount := range refunds {
			r.roster.Get(id).Money += amount
			r.logger.Debug("Refunding unclaimed chips", "player", r.roster.Get(id).Name, "amount", amount)
		}
	}

	if err := r.validateChipConservation(); err != nil {
		return err
	}

	r.result = result
	r.publish(Event{Type: EventRoundFinished, Payouts: result.Payouts, Cards: result.Community})
	return nil
}

func (r *Round) validateChipConservation() error {
	total := r.pot.Total()
	for _, id := range r.seats {
		total += r.roster.Get(id).Money
	}
	if total != r.startChips {
		return fmt.Errorf("%w: started with %d, ended with %d", ErrChipConservation, r.startChips, total)
	}
	return nil
}

func (r *Round) playerRefs() []PlayerRef {
	refs := make([]PlayerRef, len(r.seats))
	for i, id := range r.seats {
		refs[i] = *refOf(r.roster.Get(id))
	}
	return refs
}

func (r *Round) publish(e Event) {
	e.GameID = r.cfg.GameID
	e.RoundID = r.cfg.ID
	e.Round = r.cfg.Number
	e.Time = r.cfg.Clock.Now()
	r.cfg.Events.Publish(e)
}
