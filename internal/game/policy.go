package game

import (
	"context"

	"github.com/lox/holdemsim/internal/deck"
)

// Policy decides what a player does. The round blocks on each call, so a
// policy backed by a person or another process suspends the game until it
// answers. Returning an error aborts the game.
type Policy interface {
	// Decide picks one action kind. Kinds outside v.Actions are re-requested.
	Decide(ctx context.Context, v View) (ActionKind, error)
	// Amount picks a bet size in [minBet, maxBet] once Decide returned Bet.
	Amount(ctx context.Context, v View, minBet, maxBet int) (int, error)
}

// View is the table as seen by the acting player
type View struct {
	GameID     string       `json:"game_id,omitempty"`
	RoundID    string       `json:"round_id"`
	Round      int          `json:"round"`
	Street     Street       `json:"street"`
	PlayerID   int          `json:"player_id"`
	Name       string       `json:"name"`
	Money      int          `json:"money"`
	Pocket     []deck.Card  `json:"pocket"`
	Community  []deck.Card  `json:"community"`
	Pot        int          `json:"pot"`
	CurrentBet int          `json:"current_bet"`
	ToCall     int          `json:"to_call"`
	MinBet     int          `json:"min_bet"`
	MaxBet     int          `json:"max_bet"`
	Actions    []ActionKind `json:"actions"`
	SmallBlind int          `json:"small_blind"`
	Button     int          `json:"button"`
	Seats      []SeatView   `json:"seats"`
}

// SeatView is the public state of one seated player
type SeatView struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Money  int    `json:"money"`
	Bet    int    `json:"bet"`
	Folded bool   `json:"folded"`
}

// Can reports whether kind is among the legal actions
func (v View) Can(kind ActionKind) bool {
	for _, k := range v.Actions {
		if k == kind {
			return true
		}
	}
	return false
}

// Opponents counts the other players still holding cards
func (v View) Opponents() int {
	n := 0
	for _, s := range v.Seats {
		if !s.Folded && s.ID != v.PlayerID {
			n++
		}
	}
	return n
}
