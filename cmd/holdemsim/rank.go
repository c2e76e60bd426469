package main

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/lox/holdemsim/internal/deck"
	"github.com/lox/holdemsim/internal/evaluator"
)

// RankCmd prints the best five-card hand in a set of cards
type RankCmd struct {
	Cards []string `arg:"" help:"Five to seven cards, e.g. 'AsKs QsJsTs 2d 3c'"`
	JSON  bool     `help:"Print the hand as JSON"`
}

func (c *RankCmd) Run(_ *Globals) error {
	var cards []deck.Card
	for _, arg := range c.Cards {
		parsed, err := deck.ParseCards(arg)
		if err != nil {
			return err
		}
		cards = append(cards, parsed...)
	}

	hand, err := evaluator.Best(cards)
	if err != nil {
		return err
	}

	if c.JSON {
		return jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout).Encode(hand)
	}
	best := hand.Cards()
	fmt.Printf("%s %s\n", categoryStyle.Render(hand.Category().String()), renderCards(best[:]))
	return nil
}
