package sdk

import "strings"

// Action is an action type. The integer codes are fixed by the harness.
type Action int

const (
	// ActionFold gives up the hand
	ActionFold Action = 0
	// ActionRaise puts raise_amount on top of the opponent's bet
	ActionRaise Action = 1
	// ActionCheck passes when there is nothing to call
	ActionCheck Action = 2
	// ActionCall matches the opponent's bet
	ActionCall Action = 3
	// ActionDiscard replaces one hole card with a fresh card from the deck
	ActionDiscard Action = 4
)

// NumActions is the length of the legality vector.
const NumActions = 5

// AllActions lists the action types in code order.
var AllActions = [NumActions]Action{ActionFold, ActionRaise, ActionCheck, ActionCall, ActionDiscard}

// String returns the string representation of an action
func (a Action) String() string {
	switch a {
	case ActionFold:
		return "fold"
	case ActionRaise:
		return "raise"
	case ActionCheck:
		return "check"
	case ActionCall:
		return "call"
	case ActionDiscard:
		return "discard"
	default:
		return "unknown"
	}
}

// Valid reports whether a is one of the five action codes.
func (a Action) Valid() bool {
	return a >= ActionFold && a <= ActionDiscard
}

// ActionFromString converts a string to an Action. Harness spellings such
// as "FOLD" and "ActionType.RAISE" are accepted.
func ActionFromString(s string) (Action, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "actiontype.")
	switch s {
	case "fold":
		return ActionFold, true
	case "raise":
		return ActionRaise, true
	case "check":
		return ActionCheck, true
	case "call":
		return ActionCall, true
	case "discard":
		return ActionDiscard, true
	default:
		return ActionFold, false
	}
}

// Street is a betting round.
type Street int

const (
	// Preflop before any community cards
	Preflop Street = iota
	// Flop after the first three community cards
	Flop
	// Turn after the fourth community card
	Turn
	// River after the fifth community card
	River
)

// String returns the string representation of a street
func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	default:
		return "unknown"
	}
}

// BoardSize is the number of community cards revealed by the end of the street.
func (s Street) BoardSize() int {
	switch s {
	case Preflop:
		return 0
	case Flop:
		return 3
	case Turn:
		return 4
	default:
		return 5
	}
}
