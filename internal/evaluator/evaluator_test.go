package evaluator

import (
	"testing"

	"github.com/lox/discardbot/internal/randutil"
	"github.com/lox/discardbot/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cards(s string) []poker.Card {
	return poker.MustParseCards(s)
}

func TestNew(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"", BackendNative, BackendPaulHankin} {
		ev, err := New(name)
		require.NoError(t, err, name)
		assert.NotNil(t, ev)
	}
	_, err := New("treys")
	assert.ErrorIs(t, err, ErrUnknownEvaluator)
}

func TestBackendsRankKnownHands(t *testing.T) {
	t.Parallel()
	for _, ev := range []Evaluator{Native{}, PaulHankin{}} {
		sf := ev.Rank(cards("8s9s"), cards("5s6s7s2d3h"))
		fh := ev.Rank(cards("9d9h"), cards("9s2d2h4s6d"))
		wheel := ev.Rank(cards("Ad2h"), cards("3s4d5h9s9d"))
		pair := ev.Rank(cards("AdAh"), cards("2s4d6h7s8d"))

		assert.Less(t, sf, fh, "%T", ev)
		assert.Less(t, fh, wheel, "%T", ev)
		assert.Less(t, wheel, pair, "%T", ev)
	}
}

func TestBackendsAgreeOnOrdering(t *testing.T) {
	t.Parallel()
	rng := randutil.New(11)
	sign := func(a, b Rank) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}

	for n := 5; n <= 7; n++ {
		for range 500 {
			d := poker.NewDeck(rng)
			board := d.Deal(n - 2)
			a, b := d.Deal(2), d.Deal(2)

			native := sign(Native{}.Rank(a, board), Native{}.Rank(b, board))
			ph := sign(PaulHankin{}.Rank(a, board), PaulHankin{}.Rank(b, board))
			require.Equal(t, native, ph, "hands %s / %s on %s",
				poker.FormatCards(a), poker.FormatCards(b), poker.FormatCards(board))
		}
	}
}

func TestPaulHankinSmallHandsFallBack(t *testing.T) {
	t.Parallel()
	hole := cards("AdAh")
	assert.Equal(t, Native{}.Rank(hole, nil), PaulHankin{}.Rank(hole, nil))
	assert.Equal(t, Native{}.Describe(hole, cards("2s")), PaulHankin{}.Describe(hole, cards("2s")))
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Straight Flush", Native{}.Describe(cards("8s9s"), cards("5s6s7s2d3h")))
	assert.NotEmpty(t, PaulHankin{}.Describe(cards("8s9s"), cards("5s6s7s2d3h")))
}
