package deck

import "fmt"

// Suit represents a card suit
type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists every suit in deck order
var Suits = [...]Suit{Hearts, Diamonds, Clubs, Spades}

// String returns the symbol for a suit
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Name returns the long name of a suit ("Hearts")
func (s Suit) Name() string {
	switch s {
	case Hearts:
		return "Hearts"
	case Diamonds:
		return "Diamonds"
	case Clubs:
		return "Clubs"
	case Spades:
		return "Spades"
	default:
		return "Unknown"
	}
}

// IsRed returns true for Hearts and Diamonds
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank is the face value of a card, 2 through 14 (Ace high)
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the single character form of a rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Nine:
		return string(rune('0' + r))
	case r == Ten:
		return "T"
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Valid reports whether the rank is in [Two, Ace]
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// Card is an immutable playing card. Two cards are equal only when both
// rank and suit match; ordering between cards uses the rank alone.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a card, panicking on an out of range rank or suit
func NewCard(rank Rank, suit Suit) Card {
	if !rank.Valid() || suit > Spades {
		panic(fmt.Sprintf("invalid card rank=%d suit=%d", rank, suit))
	}
	return Card{Rank: rank, Suit: suit}
}

// String returns the card as rank and suit symbol (e.g., "A♠")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Less orders cards by rank only
func (c Card) Less(other Card) bool {
	return c.Rank < other.Rank
}

// Value returns the numeric rank, 2..14
func (c Card) Value() int {
	return int(c.Rank)
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// Color returns "red" or "black"
func (c Card) Color() string {
	if c.IsRed() {
		return "red"
	}
	return "black"
}

// index maps a card to 0..51
func (c Card) index() uint {
	return uint(c.Rank-Two)*4 + uint(c.Suit)
}

// Code returns the ASCII form of a card ("As", "Td") accepted by ParseCard
func (c Card) Code() string {
	return c.Rank.String() + suitCodes[c.Suit&3]
}

var suitCodes = [...]string{Hearts: "h", Diamonds: "d", Clubs: "c", Spades: "s"}

// MarshalText encodes a card in its ASCII form
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.Code()), nil
}

// UnmarshalText decodes a card from its ASCII form
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
