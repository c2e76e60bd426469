package deck

import (
	"errors"
	"math/rand/v2"
)

// ErrEmptyDeck is returned when drawing from a deck with too few cards
var ErrEmptyDeck = errors.New("deck: not enough cards")

// Dealer is the card source a round deals from
type Dealer interface {
	Draw() (Card, error)
	DrawN(n int) ([]Card, error)
	Remaining() int
}

// Deck is an ordered card source. Cards are dealt from the top.
type Deck struct {
	cards []Card
}

// Standard returns all 52 cards in a fixed order
func Standard() []Card {
	cards := make([]Card, 0, 52)
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	return cards
}

// New creates a 52-card deck shuffled with rng.
// The RNG is required so that every deal can be reproduced from a seed.
func New(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("rng is required for deck creation")
	}
	d := &Deck{cards: Standard()}
	d.Shuffle(rng)
	return d
}

// NewStacked creates a deck that deals the given cards in order
func NewStacked(cards ...Card) *Deck {
	stacked := make([]Card, len(cards))
	copy(stacked, cards)
	return &Deck{cards: stacked}
}

// Shuffle applies a uniform random permutation (Fisher-Yates)
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// DrawN removes and returns the top n cards
func (d *Deck) DrawN(n int) ([]Card, error) {
	if n < 0 || n > len(d.cards) {
		return nil, ErrEmptyDeck
	}
	drawn := make([]Card, n)
	copy(drawn, d.cards[:n])
	d.cards = d.cards[n:]
	return drawn, nil
}

// Remaining returns the number of cards left
func (d *Deck) Remaining() int {
	return len(d.cards)
}
