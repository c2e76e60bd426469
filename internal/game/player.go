package game

import (
	"errors"
	"fmt"

	"github.com/lox/holdemsim/internal/deck"
)

// ErrInsufficientFunds is returned when a chip movement exceeds a stack.
// Legal actions never trigger it, so it always indicates a bug.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Player is a seat at the table. Players live in a Roster; rounds refer to
// them by ID.
type Player struct {
	ID     int
	Name   string
	Money  int
	Pocket []deck.Card
	Policy Policy
}

// Bet removes amount from the player's stack
func (p *Player) Bet(amount int) error {
	if amount < 0 {
		return fmt.Errorf("player %s: negative bet %d", p.Name, amount)
	}
	if amount > p.Money {
		return fmt.Errorf("player %s bets %d holding %d: %w", p.Name, amount, p.Money, ErrInsufficientFunds)
	}
	p.Money -= amount
	return nil
}

// ForceBet removes up to amount from the stack and returns what was taken.
// A short stack goes all-in.
func (p *Player) ForceBet(amount int) int {
	amount = max(0, min(amount, p.Money))
	p.Money -= amount
	return amount
}

func (p *Player) String() string {
	return fmt.Sprintf("[name: %s, money: %d]", p.Name, p.Money)
}

// Roster owns every player of a game and hands out their IDs
type Roster struct {
	players []*Player
	byID    map[int]*Player
	nextID  int
}

// NewRoster creates an empty roster
func NewRoster() *Roster {
	return &Roster{byID: make(map[int]*Player)}
}

// Add seats a new player with the next ID in sequence
func (r *Roster) Add(name string, money int, policy Policy) *Player {
	p := &Player{
		ID:     r.nextID,
		Name:   name,
		Money:  money,
		Policy: policy,
	}
	r.nextID++
	r.players = append(r.players, p)
	r.byID[p.ID] = p
	return p
}

// Get returns the player with id, or nil
func (r *Roster) Get(id int) *Player {
	return r.byID[id]
}

// Players returns every player in seating order
func (r *Roster) Players() []*Player {
	out := make([]*Player, len(r.players))
	copy(out, r.players)
	return out
}

// Len returns the number of players
func (r *Roster) Len() int {
	return len(r.players)
}

// TotalChips sums every player's stack
func (r *Roster) TotalChips() int {
	total := 0
	for _, p := range r.players {
		total += p.Money
	}
	return total
}
