package evaluator

import (
	"fmt"

	"github.com/lox/holdemsim/internal/deck"
)

// combos[n] lists every 5-card index subset of n cards, n = 5..7
var combos = [8][][5]uint8{
	5: combinations(5),
	6: combinations(6),
	7: combinations(7),
}

func combinations(n int) [][5]uint8 {
	var out [][5]uint8
	var pick func(start, depth int, cur [5]uint8)
	pick = func(start, depth int, cur [5]uint8) {
		if depth == 5 {
			out = append(out, cur)
			return
		}
		for i := start; i <= n-(5-depth); i++ {
			cur[depth] = uint8(i)
			pick(i+1, depth+1, cur)
		}
	}
	pick(0, 0, [5]uint8{})
	return out
}

// BestHand returns the strongest five card hand that can be made from a
// two card pocket and up to five community cards
func BestHand(pocket, community []deck.Card) (Hand, error) {
	if len(pocket) != 2 {
		return Hand{}, fmt.Errorf("%w: pocket needs 2 cards, got %d", ErrMalformedHand, len(pocket))
	}
	if len(community) > 5 {
		return Hand{}, fmt.Errorf("%w: at most 5 community cards, got %d", ErrMalformedHand, len(community))
	}
	if len(community) < 3 {
		return Hand{}, fmt.Errorf("%w: need at least 5 cards, got %d", ErrMalformedHand, 2+len(community))
	}

	var cards [7]deck.Card
	cards[0], cards[1] = pocket[0], pocket[1]
	n := 2 + copy(cards[2:], community)
	return best(&cards, n), nil
}

// Best returns the strongest five card hand among 5 to 7 loose cards
func Best(cards []deck.Card) (Hand, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return Hand{}, fmt.Errorf("%w: need 5 to 7 cards, got %d", ErrMalformedHand, len(cards))
	}
	var buf [7]deck.Card
	n := copy(buf[:], cards)
	return best(&buf, n), nil
}

// best scans every 5-subset of the first n cards without allocating
func best(cards *[7]deck.Card, n int) Hand {
	var top Hand
	for _, idx := range combos[n] {
		h := classify5([5]deck.Card{
			cards[idx[0]], cards[idx[1]], cards[idx[2]], cards[idx[3]], cards[idx[4]],
		})
		if !top.valid || h.Beats(top) {
			top = h
		}
	}
	return top
}
