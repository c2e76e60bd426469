package evaluator

import (
	"testing"

	"github.com/lox/holdemsim/internal/deck"
	"github.com/lox/holdemsim/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustClassify(t *testing.T, s string) Hand {
	t.Helper()
	h, err := Classify(deck.MustParseCards(s))
	require.NoError(t, err)
	return h
}

func TestClassifyCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cards    string
		category Category
		values   [5]int
	}{
		{"AsKsQsJsTs", StraightFlush, [5]int{14, 13, 12, 11, 10}},
		{"5h4h3h2hAh", StraightFlush, [5]int{5, 4, 3, 2, 1}},
		{"9c9d9h9s2c", FourOfAKind, [5]int{9, 9, 9, 9, 2}},
		{"4c4dKhKsKc", FullHouse, [5]int{13, 13, 13, 4, 4}},
		{"2d7d9dJdKd", Flush, [5]int{13, 11, 9, 7, 2}},
		{"TsJdQhKcAs", Straight, [5]int{14, 13, 12, 11, 10}},
		{"As2d3h4c5s", Straight, [5]int{5, 4, 3, 2, 1}},
		{"7s7d7h2c9s", ThreeOfAKind, [5]int{7, 7, 7, 9, 2}},
		{"8s8dKhKc2s", TwoPair, [5]int{13, 13, 8, 8, 2}},
		{"QsQd2h5c9s", Pair, [5]int{12, 12, 9, 5, 2}},
		{"As9d7h5c3s", HighCard, [5]int{14, 9, 7, 5, 3}},
		{"KsAd2h3c4s", HighCard, [5]int{14, 13, 4, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.cards, func(t *testing.T) {
			t.Parallel()
			h := mustClassify(t, tt.cards)
			assert.Equal(t, tt.category, h.Category())
			assert.Equal(t, tt.values, h.Values())
		})
	}
}

func TestClassifyRejectsWrongCardCount(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "AsKs", "AsKsQsJs", "AsKsQsJsTs9s"} {
		_, err := Classify(deck.MustParseCards(s))
		assert.ErrorIs(t, err, ErrMalformedHand, s)
	}
}

func TestWheelLosesToBroadway(t *testing.T) {
	t.Parallel()

	wheel := mustClassify(t, "Ad2c3h4s5d")
	broadway := mustClassify(t, "TdJcQhKsAd")
	six := mustClassify(t, "2c3h4s5d6c")

	assert.Equal(t, Straight, wheel.Category())
	assert.Equal(t, Straight, broadway.Category())
	assert.True(t, broadway.Beats(wheel))
	assert.True(t, six.Beats(wheel))
	assert.Equal(t, "Straight [5♦ 4♠ 3♥ 2♣ A♦]", wheel.String())
}

func TestTieBreaks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		stronger, weak string
	}{
		{"higher quads", "KsKdKhKc2s", "QsQdQhQcAs"},
		{"quads kicker", "9s9d9h9cAs", "9s9d9h9cKs"},
		{"full house trips first", "3s3d3hAcAs", "2s2d2hKcKs"},
		{"full house pair second", "3s3d3hAcAs", "3s3d3hKcKs"},
		{"flush fifth card", "AsKsQsJs3s", "AhKhQhJh2h"},
		{"higher pair beats kickers", "2s2dAhKcQs", "AsKd3h4c6s"},
		{"two pair high pair", "KsKd2h2c3s", "QsQdJhJcAs"},
		{"two pair low pair", "KsKd3h3c2s", "KhKc2h2dAs"},
		{"two pair kicker", "KsKd3h3c5s", "KhKc3d3s4s"},
		{"pair kickers", "7s7dAhQc2s", "7h7cAdJc9s"},
		{"high card last kicker", "As9d7h5c3s", "Ah9c7d5s2s"},
		{"trips kicker", "7s7d7hAc2s", "7s7d7hKcQs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, b := mustClassify(t, tt.stronger), mustClassify(t, tt.weak)
			assert.Equal(t, 1, Compare(a, b))
			assert.Equal(t, -1, Compare(b, a))
		})
	}
}

func TestTiesAcrossSuits(t *testing.T) {
	t.Parallel()

	a := mustClassify(t, "AsKd9h7c2s")
	b := mustClassify(t, "AhKc9d7s2d")
	assert.True(t, a.Equal(b))
	assert.Zero(t, Compare(a, b))
	assert.NotEqual(t, a.Cards(), b.Cards())
}

func TestCategoryDominance(t *testing.T) {
	t.Parallel()

	// weakest instance of each category beats the strongest of the one below
	ladder := []struct {
		weakest, strongest string
	}{
		{"As9d7h5c2s", "AsKdQhJc9s"},
		{"2s2d3h4c5s", "AsAdKhQcJs"},
		{"2s2d3h3c4s", "AsAdKhKcQs"},
		{"2s2d2h3c4s", "AsAdAhKcQs"},
		{"As2d3h4c5s", "TsJdQhKcAs"},
		{"2s3s4s5s7s", "AsKsQsJs9s"},
		{"2s2d2h3c3s", "AsAdAhKcKs"},
		{"2s2d2h2c3s", "AsAdAhAcKs"},
		{"As2s3s4s5s", "TsJsQsKsAs"},
	}

	for i := 1; i < len(ladder); i++ {
		lower := mustClassify(t, ladder[i-1].strongest)
		upper := mustClassify(t, ladder[i].weakest)
		require.Equal(t, Category(i), upper.Category(), ladder[i].weakest)
		assert.True(t, upper.Beats(lower), "%s should beat %s", upper, lower)
	}
}

func randomHand(cards []deck.Card, rng interface{ IntN(int) int }) [5]deck.Card {
	var five [5]deck.Card
	for i := range five {
		j := i + rng.IntN(len(cards)-i)
		cards[i], cards[j] = cards[j], cards[i]
		five[i] = cards[i]
	}
	return five
}

func TestClassifyIsIdempotent(t *testing.T) {
	t.Parallel()

	rng := randutil.New(5)
	cards := deck.Standard()
	for range 1000 {
		five := randomHand(cards, rng)
		a, err := Classify(five[:])
		require.NoError(t, err)
		b, err := Classify(five[:])
		require.NoError(t, err)
		assert.Equal(t, a, b)

		// order of input cards must not matter
		reversed := [5]deck.Card{five[4], five[3], five[2], five[1], five[0]}
		c, err := Classify(reversed[:])
		require.NoError(t, err)
		assert.True(t, a.Equal(c))
		assert.Equal(t, a.Category(), c.Category())
	}
}

func TestCompareIsTotalPreorder(t *testing.T) {
	t.Parallel()

	rng := randutil.New(11)
	cards := deck.Standard()
	hands := make([]Hand, 200)
	for i := range hands {
		hands[i] = classify5(randomHand(cards, rng))
	}

	for _, a := range hands {
		require.Zero(t, Compare(a, a))
		for _, b := range hands {
			ab := Compare(a, b)
			require.Equal(t, -ab, Compare(b, a), "antisymmetry %s vs %s", a, b)
			for _, c := range hands[:40] {
				if ab >= 0 && Compare(b, c) >= 0 {
					require.GreaterOrEqual(t, Compare(a, c), 0, "transitivity %s %s %s", a, b, c)
				}
			}
		}
	}
}
