package evaluator

import (
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/lox/holdemsim/internal/deck"
)

// ErrMalformedHand is returned when a hand is built from the wrong number
// of cards
var ErrMalformedHand = errors.New("malformed hand")

// Category is the class of a five card hand; higher values win
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = [...]string{
	HighCard:      "High Card",
	Pair:          "Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
}

// String returns the readable name of the category
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Unknown"
}

// Hand is a classified five card hand. The zero value is not a valid hand.
type Hand struct {
	category Category
	// cards in tie-break order: defining ranks first, then kickers
	cards [5]deck.Card
	// key holds the card values compared after the category, high to low.
	// A wheel counts its Ace as 1.
	key   [5]uint8
	valid bool
}

// Classify builds a Hand from exactly five cards
func Classify(cards []deck.Card) (Hand, error) {
	if len(cards) != 5 {
		return Hand{}, fmt.Errorf("%w: classify needs 5 cards, got %d", ErrMalformedHand, len(cards))
	}
	return classify5([5]deck.Card(cards)), nil
}

func classify5(cards [5]deck.Card) Hand {
	var counts [15]uint8
	flush := true
	for i, c := range cards {
		counts[c.Rank]++
		if i > 0 && c.Suit != cards[0].Suit {
			flush = false
		}
	}

	// order cards by (multiplicity desc, rank desc)
	for i := 1; i < 5; i++ {
		for j := i; j > 0 && groupedBefore(cards[j], cards[j-1], &counts); j-- {
			cards[j], cards[j-1] = cards[j-1], cards[j]
		}
	}

	h := Hand{cards: cards, valid: true}
	for i, c := range cards {
		h.key[i] = uint8(c.Rank)
	}

	straight := false
	if counts[cards[0].Rank] == 1 {
		switch {
		case cards[0].Rank-cards[4].Rank == 4:
			straight = true
		case cards[0].Rank == deck.Ace && cards[1].Rank == deck.Five:
			// wheel: the Ace plays low
			straight = true
			copy(h.cards[:4], cards[1:])
			h.cards[4] = cards[0]
			h.key = [5]uint8{5, 4, 3, 2, 1}
		}
	}

	// sizes of the two largest rank groups
	first, second := counts[cards[0].Rank], uint8(0)
	if first < 4 {
		second = counts[cards[first].Rank]
	}

	switch {
	case straight && flush:
		h.category = StraightFlush
	case first == 4:
		h.category = FourOfAKind
	case first == 3 && second == 2:
		h.category = FullHouse
	case flush:
		h.category = Flush
	case straight:
		h.category = Straight
	case first == 3:
		h.category = ThreeOfAKind
	case first == 2 && second == 2:
		h.category = TwoPair
	case first == 2:
		h.category = Pair
	default:
		h.category = HighCard
	}
	return h
}

func groupedBefore(a, b deck.Card, counts *[15]uint8) bool {
	if counts[a.Rank] != counts[b.Rank] {
		return counts[a.Rank] > counts[b.Rank]
	}
	return a.Rank > b.Rank
}

// Compare returns -1 if a loses to b, 0 if they tie and 1 if a wins
func Compare(a, b Hand) int {
	if a.category != b.category {
		if a.category > b.category {
			return 1
		}
		return -1
	}
	for i := range a.key {
		if a.key[i] != b.key[i] {
			if a.key[i] > b.key[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Beats reports whether h is strictly stronger than other
func (h Hand) Beats(other Hand) bool {
	return Compare(h, other) > 0
}

// Equal reports whether two hands tie. Hands of different suits can tie.
func (h Hand) Equal(other Hand) bool {
	return Compare(h, other) == 0
}

// Category returns the hand's category
func (h Hand) Category() Category {
	return h.category
}

// Cards returns the five cards, defining ranks first
func (h Hand) Cards() [5]deck.Card {
	return h.cards
}

// Values returns the tie-break values compared after the category
func (h Hand) Values() [5]int {
	var v [5]int
	for i, k := range h.key {
		v[i] = int(k)
	}
	return v
}

// String renders the hand, e.g. "Full House [K♠ K♥ K♦ 4♣ 4♠]"
func (h Hand) String() string {
	if !h.valid {
		return "No Hand"
	}
	parts := make([]string, len(h.cards))
	for i, c := range h.cards {
		parts[i] = c.String()
	}
	return h.category.String() + " [" + strings.Join(parts, " ") + "]"
}

type handJSON struct {
	Category string      `json:"category"`
	Cards    []deck.Card `json:"cards"`
}

// MarshalJSON encodes the category name and the cards
func (h Hand) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(handJSON{
		Category: h.category.String(),
		Cards:    h.cards[:],
	})
}
