package game

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIllegalAction marks a decision that is not legal in the current state
var ErrIllegalAction = errors.New("illegal action")

// ActionKind is one of the four things a player can do on their turn
type ActionKind uint8

const (
	Fold ActionKind = iota
	Check
	Call
	Bet
)

var actionNames = [...]string{Fold: "fold", Check: "check", Call: "call", Bet: "bet"}

// availableOrder is the order legal actions are offered in
var availableOrder = [...]ActionKind{Check, Call, Bet, Fold}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return fmt.Sprintf("action(%d)", k)
}

// ParseActionKind parses "fold", "check", "call" or "bet". "raise" is
// accepted as bet.
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "bet", "raise":
		return Bet, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// MarshalText encodes the action name
func (k ActionKind) MarshalText() ([]byte, error) {
	if int(k) >= len(actionNames) {
		return nil, fmt.Errorf("unknown action kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes an action name
func (k *ActionKind) UnmarshalText(text []byte) error {
	parsed, err := ParseActionKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Action is an applied decision, as recorded in the round's action log
type Action struct {
	Kind     ActionKind `json:"kind"`
	PlayerID int        `json:"player_id"`
	Player   string     `json:"player"`
	Amount   int        `json:"amount,omitempty"`
	Street   Street     `json:"street"`
}

func (a Action) String() string {
	switch a.Kind {
	case Fold:
		return fmt.Sprintf("Player %s folds", a.Player)
	case Check:
		return fmt.Sprintf("Player %s checks", a.Player)
	case Call:
		return fmt.Sprintf("Player %s calls %d", a.Player, a.Amount)
	default:
		return fmt.Sprintf("Player %s bets %d", a.Player, a.Amount)
	}
}

type validator func(r *Round, p *Player) bool

type applier func(r *Round, p *Player, amount int) (int, error)

var validators = [...]validator{
	Fold: func(r *Round, p *Player) bool {
		return !r.folded[p.ID]
	},
	Check: func(r *Round, p *Player) bool {
		return r.pot.PlayerBet(p.ID) == r.pot.CurrentBet()
	},
	Call: func(r *Round, p *Player) bool {
		toCall := r.pot.AmountToCall(p.ID)
		return toCall > 0 && toCall <= p.Money
	},
	Bet: func(r *Round, p *Player) bool {
		minimum, maximum := r.BetLimits(p)
		return minimum > 0 && maximum >= minimum
	},
}

// appliers perform an action and return the chips it moved
var appliers = [...]applier{
	Fold: func(r *Round, p *Player, _ int) (int, error) {
		r.folded[p.ID] = true
		return 0, nil
	},
	Check: func(_ *Round, _ *Player, _ int) (int, error) {
		return 0, nil
	},
	Call: func(r *Round, p *Player, _ int) (int, error) {
		amount := r.pot.AmountToCall(p.ID)
		return amount, r.bet(p, amount)
	},
	Bet: func(r *Round, p *Player, amount int) (int, error) {
		toCall := r.pot.AmountToCall(p.ID)
		if err := r.bet(p, amount); err != nil {
			return 0, err
		}
		r.pot.RecordRaise(amount - toCall)
		return amount, nil
	},
}

// IsValid reports whether kind is legal for p right now
func (r *Round) IsValid(kind ActionKind, p *Player) bool {
	if int(kind) >= len(validators) {
		return false
	}
	return validators[kind](r, p)
}

// AvailableActions lists the legal actions for p, in the order check,
// call, bet, fold
func (r *Round) AvailableActions(p *Player) []ActionKind {
	var out []ActionKind
	for _, kind := range availableOrder {
		if r.IsValid(kind, p) {
			out = append(out, kind)
		}
	}
	return out
}

// BetLimits returns the smallest and largest legal bet for p
func (r *Round) BetLimits(p *Player) (int, int) {
	return r.pot.MinimumToBet(p.ID), r.pot.MaximumToBet(p, r.activePlayers(), r.maxRaise)
}
