package deck

import "math/bits"

// CardSet is a set of cards stored as a 52-bit bitset
type CardSet uint64

// NewCardSet creates a CardSet from cards
func NewCardSet(cards ...Card) CardSet {
	var cs CardSet
	for _, c := range cards {
		cs.Add(c)
	}
	return cs
}

// Add adds a card to the set
func (cs *CardSet) Add(c Card) {
	*cs |= 1 << c.index()
}

// Contains checks if a card is in the set
func (cs CardSet) Contains(c Card) bool {
	return cs&(1<<c.index()) != 0
}

// Len returns the number of cards in the set
func (cs CardSet) Len() int {
	return bits.OnesCount64(uint64(cs))
}

// Complement returns every card of a standard deck not in the set,
// appended to dst
func (cs CardSet) Complement(dst []Card) []Card {
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			c := Card{Rank: rank, Suit: suit}
			if !cs.Contains(c) {
				dst = append(dst, c)
			}
		}
	}
	return dst
}
