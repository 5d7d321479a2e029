package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Card is an index into the 27-card deck. The rank is id % 9 over
// "23456789A" and the suit is id / 9 over "dhs".
type Card uint8

const (
	NumRanks = 9
	NumSuits = 3
	DeckSize = NumRanks * NumSuits
)

// Rank indices
const (
	Two uint8 = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ace
)

// Suit indices
const (
	Diamonds uint8 = iota
	Hearts
	Spades
)

const (
	rankChars = "23456789A"
	suitChars = "dhs"
)

// NewCard creates a card from a rank index (0-8) and a suit index (0-2).
func NewCard(rank, suit uint8) Card {
	return Card(suit*NumRanks + rank)
}

// CardFromID converts a wire id to a Card, rejecting ids outside the deck.
func CardFromID(id int) (Card, bool) {
	if id < 0 || id >= DeckSize {
		return 0, false
	}
	return Card(id), true
}

// Rank returns the rank index (0=Two .. 8=Ace).
func (c Card) Rank() uint8 {
	return uint8(c) % NumRanks
}

// Suit returns the suit index (0=Diamonds, 1=Hearts, 2=Spades).
func (c Card) Suit() uint8 {
	return uint8(c) / NumRanks
}

// Value is the conventional poker value of the rank: 2-9, and 14 for the ace.
func (c Card) Value() int {
	return rankToValue(c.Rank())
}

// Valid reports whether the card is inside the deck.
func (c Card) Valid() bool {
	return int(c) < DeckSize
}

func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string([]byte{rankChars[c.Rank()], suitChars[c.Suit()]})
}

func rankToValue(r uint8) int {
	if r == Ace {
		return 14
	}
	return int(r) + 2
}

// ParseCard parses a two character card such as "As" or "9d".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card %q: want rank and suit", s)
	}
	r := strings.IndexByte(rankChars, upper(s[0]))
	if r < 0 {
		return 0, fmt.Errorf("invalid rank %q in %q", s[0], s)
	}
	st := strings.IndexByte(suitChars, lower(s[1]))
	if st < 0 {
		return 0, fmt.Errorf("invalid suit %q in %q", s[1], s)
	}
	return NewCard(uint8(r), uint8(st)), nil
}

// ParseCards parses a run of cards, with or without separating spaces:
// "As9d", "As 9d" and "As,9d" are all accepted.
func ParseCards(s string) ([]Card, error) {
	s = strings.NewReplacer(" ", "", ",", "").Replace(s)
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string length: %d (must be even)", len(s))
	}
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards '%s': %v", s, err))
	}
	return cards
}

// FormatCards renders cards space separated.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// Hand is a set of cards, one bit per card id.
type Hand uint32

// NewHand creates a hand from cards.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h.AddCard(c)
	}
	return h
}

// FullDeck is the hand holding every card.
const FullDeck Hand = 1<<DeckSize - 1

// AddCard adds a card to the hand.
func (h *Hand) AddCard(c Card) {
	*h |= 1 << c
}

// RemoveCard removes a card from the hand.
func (h *Hand) RemoveCard(c Card) {
	*h &^= 1 << c
}

// HasCard checks if the hand contains a card.
func (h Hand) HasCard(c Card) bool {
	return h&(1<<c) != 0
}

// CountCards returns the number of cards in the hand.
func (h Hand) CountCards() int {
	return bits.OnesCount32(uint32(h))
}

// Cards lists the cards in id order.
func (h Hand) Cards() []Card {
	out := make([]Card, 0, h.CountCards())
	for m := uint32(h); m != 0; m &= m - 1 {
		out = append(out, Card(bits.TrailingZeros32(m)))
	}
	return out
}

func (h Hand) String() string {
	return FormatCards(h.Cards())
}
