package poker

import (
	"math/bits"
)

// HandRank represents the strength of a poker hand. Lower values are stronger.
//
// The category occupies the bits above 20 and the five tiebreak values sit
// below it as nibbles (15 - value), most significant first. Missing tiebreaks
// in hands of fewer than five cards are encoded as 0xF so that they lose to
// any present card.
type HandRank uint32

// HandType enumerates the categories of poker hands ordered from weakest to strongest.
type HandType uint8

const (
	HighCard HandType = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

const (
	categoryShift = 20
	emptyNibble   = 0xF
)

func (ht HandType) String() string {
	switch ht {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// Type returns the type of hand (pair, flush, etc.).
func (hr HandRank) Type() HandType {
	return StraightFlush - HandType(hr>>categoryShift)
}

// String returns a human-readable hand description.
func (hr HandRank) String() string {
	return hr.Type().String()
}

// CompareHands returns -1 if a is stronger, 1 if b is stronger and 0 on a tie.
func CompareHands(a, b HandRank) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Evaluate ranks the best five card hand that can be made from h. Hands of
// two to seven cards are accepted; smaller hands are ranked on what they hold.
func Evaluate(h Hand) HandRank {
	var suitMasks [NumSuits]uint16
	for m := uint32(h); m != 0; m &= m - 1 {
		c := Card(bits.TrailingZeros32(m))
		if !c.Valid() {
			continue
		}
		suitMasks[c.Suit()] |= 1 << c.Value()
	}
	return rankFromMasks(suitMasks)
}

// EvaluateCards is Evaluate over a hole/board split.
func EvaluateCards(hole, board []Card) HandRank {
	h := NewHand(hole...)
	for _, c := range board {
		h.AddCard(c)
	}
	return Evaluate(h)
}

// rankFromMasks works on value masks (bit v set for card value v, ace = 14).
// With three suits there are no quads, so trips is the intersection of all
// suits and pairs are the pairwise intersections.
func rankFromMasks(suitMasks [NumSuits]uint16) HandRank {
	s0, s1, s2 := suitMasks[0], suitMasks[1], suitMasks[2]
	rankMask := s0 | s1 | s2

	var flushRank HandRank
	flushFound := false
	for _, suitMask := range suitMasks {
		if bits.OnesCount16(suitMask) < 5 {
			continue
		}
		if high := straightHigh(suitMask); high > 0 {
			return pack(StraightFlush, high)
		}
		strength := pack(Flush, topValues(suitMask, 5)...)
		if !flushFound || strength < flushRank {
			flushRank = strength
			flushFound = true
		}
	}

	tripsMask := s0 & s1 & s2
	pairsMask := ((s0 & s1) | (s0 & s2) | (s1 & s2)) &^ tripsMask

	if trip := highestValue(tripsMask); trip > 0 {
		rest := pairsMask | tripsMask&^(1<<trip)
		if pair := highestValue(rest); pair > 0 {
			return pack(FullHouse, trip, pair)
		}
	}

	if flushFound {
		return flushRank
	}

	if high := straightHigh(rankMask); high > 0 {
		return pack(Straight, high)
	}

	if trip := highestValue(tripsMask); trip > 0 {
		kickers := topValues(rankMask&^(1<<trip), 2)
		return pack(ThreeOfAKind, append([]int{trip}, kickers...)...)
	}

	if high := highestValue(pairsMask); high > 0 {
		if low := highestValue(pairsMask &^ (1 << high)); low > 0 {
			kickers := topValues(rankMask&^(1<<high|1<<low), 1)
			return pack(TwoPair, append([]int{high, low}, kickers...)...)
		}
		kickers := topValues(rankMask&^(1<<high), 3)
		return pack(Pair, append([]int{high}, kickers...)...)
	}

	return pack(HighCard, topValues(rankMask, 5)...)
}

// straightHigh returns the top value of the best straight in mask, or 0.
// The ace also plays low, so A2345 is a five-high straight.
func straightHigh(mask uint16) int {
	if mask&(1<<14) != 0 {
		mask |= 1 << 1
	}
	for high := 14; high >= 5; high-- {
		want := uint16(0x1F) << (high - 4)
		if mask&want == want {
			return high
		}
	}
	return 0
}

func highestValue(mask uint16) int {
	if mask == 0 {
		return 0
	}
	return bits.Len16(mask) - 1
}

func topValues(mask uint16, n int) []int {
	out := make([]int, 0, n)
	for mask != 0 && len(out) < n {
		v := bits.Len16(mask) - 1
		out = append(out, v)
		mask &^= 1 << v
	}
	return out
}

func pack(t HandType, values ...int) HandRank {
	r := uint32(StraightFlush-t) << categoryShift
	for i := 0; i < 5; i++ {
		nibble := uint32(emptyNibble)
		if i < len(values) {
			nibble = uint32(15 - values[i])
		}
		r |= nibble << (16 - 4*i)
	}
	return HandRank(r)
}
