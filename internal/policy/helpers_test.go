package policy

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemsim/internal/deck"
	"github.com/lox/holdemsim/internal/game"
)

var discard = log.New(io.Discard)

// headsUpView builds a two-handed view for the player with ID 0
func headsUpView(pocket, board string, actions ...game.ActionKind) game.View {
	v := game.View{
		RoundID:  "test",
		Round:    1,
		PlayerID: 0,
		Name:     "Alice",
		Money:    100,
		Pocket:   deck.MustParseCards(pocket),
		MinBet:   2,
		MaxBet:   30,
		Actions:  actions,
		Seats: []game.SeatView{
			{ID: 0, Name: "Alice", Money: 100},
			{ID: 1, Name: "Bob", Money: 100},
		},
	}
	if board != "" {
		v.Community = deck.MustParseCards(board)
	}
	return v
}
