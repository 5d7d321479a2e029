// Package evaluator ranks hands and estimates equity for the 27-card discard
// variant.
package evaluator

import (
	"errors"
	"fmt"

	"github.com/lox/discardbot/poker"
	phpoker "github.com/paulhankin/poker"
)

// Rank orders hands of the same card count. Lower is stronger.
type Rank int64

// Evaluator ranks a hand made of hole cards plus a board of 0-5 cards.
// Implementations are pure and safe for concurrent use.
type Evaluator interface {
	Rank(hole, board []poker.Card) Rank
	Describe(hole, board []poker.Card) string
}

// Backend names accepted by New.
const (
	BackendNative     = "native"
	BackendPaulHankin = "paulhankin"
)

// ErrUnknownEvaluator is returned by New for an unrecognised backend.
var ErrUnknownEvaluator = errors.New("unknown evaluator")

// New returns the evaluator registered under name. An empty name is native.
func New(name string) (Evaluator, error) {
	switch name {
	case "", BackendNative:
		return Native{}, nil
	case BackendPaulHankin:
		return PaulHankin{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvaluator, name)
	}
}

// Native ranks with the bitmask evaluator in package poker. It handles
// partial hands directly.
type Native struct{}

func (Native) Rank(hole, board []poker.Card) Rank {
	return Rank(poker.EvaluateCards(hole, board))
}

func (Native) Describe(hole, board []poker.Card) string {
	return poker.EvaluateCards(hole, board).String()
}

// PaulHankin ranks five to seven card hands with github.com/paulhankin/poker.
// The library scores higher-is-better, so scores are negated. Hands of fewer
// than five cards fall back to Native.
type PaulHankin struct{}

// phCards maps our card ids onto library cards. The library's ace is rank 1.
var phCards = func() [poker.DeckSize]phpoker.Card {
	suits := [poker.NumSuits]phpoker.Suit{phpoker.Diamond, phpoker.Heart, phpoker.Spade}
	var out [poker.DeckSize]phpoker.Card
	for id := range out {
		c := poker.Card(id)
		r := phpoker.Rank(c.Value())
		if c.Rank() == poker.Ace {
			r = phpoker.Rank(1)
		}
		pc, err := phpoker.MakeCard(suits[c.Suit()], r)
		if err != nil {
			panic(fmt.Sprintf("evaluator: cannot map %s: %v", c, err))
		}
		out[id] = pc
	}
	return out
}()

func toPH(hole, board []poker.Card) []phpoker.Card {
	out := make([]phpoker.Card, 0, len(hole)+len(board))
	for _, c := range hole {
		out = append(out, phCards[c])
	}
	for _, c := range board {
		out = append(out, phCards[c])
	}
	return out
}

func (PaulHankin) Rank(hole, board []poker.Card) Rank {
	n := len(hole) + len(board)
	if n < 5 || n > 7 {
		return Native{}.Rank(hole, board)
	}
	cards := toPH(hole, board)
	switch n {
	case 7:
		var a7 [7]phpoker.Card
		copy(a7[:], cards)
		return Rank(-int64(phpoker.Eval7(&a7)))
	case 5:
		var a5 [5]phpoker.Card
		copy(a5[:], cards)
		return Rank(-int64(phpoker.Eval5(&a5)))
	default:
		return Rank(-int64(bestOfSix(cards)))
	}
}

// bestOfSix scores each five card subset, leaving out one card at a time.
func bestOfSix(cards []phpoker.Card) int16 {
	var best int16
	var five [5]phpoker.Card
	for skip := range cards {
		k := 0
		for i, c := range cards {
			if i != skip {
				five[k] = c
				k++
			}
		}
		if score := phpoker.Eval5(&five); skip == 0 || score > best {
			best = score
		}
	}
	return best
}

func (PaulHankin) Describe(hole, board []poker.Card) string {
	n := len(hole) + len(board)
	if n < 5 || n > 7 {
		return Native{}.Describe(hole, board)
	}
	desc, err := phpoker.Describe(toPH(hole, board))
	if err != nil {
		return Native{}.Describe(hole, board)
	}
	return desc
}
