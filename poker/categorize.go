package poker

// HoleCardCategory represents the strength category of hole cards
type HoleCardCategory string

const (
	CategoryPremium HoleCardCategory = "Premium"
	CategoryStrong  HoleCardCategory = "Strong"
	CategoryMedium  HoleCardCategory = "Medium"
	CategoryWeak    HoleCardCategory = "Weak"
	CategoryTrash   HoleCardCategory = "Trash"
	CategoryUnknown HoleCardCategory = "Unknown"
)

// CategorizeHoleCards provides a simple preflop categorization for the
// short deck: Premium (88+), Strong (55-77, A9, A8), Medium (small pairs,
// suited aces, suited connectors), Weak (anything suited or connected),
// Trash (everything else).
func CategorizeHoleCards(card1, card2 Card) HoleCardCategory {
	if !card1.Valid() || !card2.Valid() || card1 == card2 {
		return CategoryUnknown
	}

	small, big := card1.Value(), card2.Value()
	if small > big {
		small, big = big, small
	}
	suited := card1.Suit() == card2.Suit()
	isPair := small == big
	// There is no ten, so the ace only connects downwards to the deuce.
	gap := big - small
	if big == 14 {
		gap = small - 1
	}

	switch {
	case isPair && small >= 8:
		return CategoryPremium
	case isPair && small >= 5:
		return CategoryStrong
	case big == 14 && small >= 8:
		return CategoryStrong
	case isPair:
		return CategoryMedium
	case suited && big == 14:
		return CategoryMedium
	case suited && gap == 1:
		return CategoryMedium
	case suited || gap <= 2:
		return CategoryWeak
	default:
		return CategoryTrash
	}
}
