package sdk

import (
	"encoding/json"
	"fmt"

	"github.com/lox/discardbot/poker"
)

// NoCard marks an unrevealed or absent card on the wire.
const NoCard = -1

const (
	// HandSize is the number of hole cards each player holds.
	HandSize = 2
	// BoardSize is the number of community cards at the river.
	BoardSize = 5
)

// LegalActions is the per-decision legality vector indexed by action code.
type LegalActions [NumActions]bool

// Legal builds a legality vector allowing exactly the given actions.
func Legal(actions ...Action) LegalActions {
	var l LegalActions
	for _, a := range actions {
		if a.Valid() {
			l[a] = true
		}
	}
	return l
}

// Allows reports whether a is legal.
func (l LegalActions) Allows(a Action) bool {
	return a.Valid() && l[a]
}

// List returns the legal actions in code order.
func (l LegalActions) List() []Action {
	var out []Action
	for _, a := range AllActions {
		if l[a] {
			out = append(out, a)
		}
	}
	return out
}

// MarshalJSON writes the vector as 0/1 integers, the harness's native form.
func (l LegalActions) MarshalJSON() ([]byte, error) {
	var ints [NumActions]int
	for i, ok := range l {
		if ok {
			ints[i] = 1
		}
	}
	return json.Marshal(ints)
}

// UnmarshalJSON accepts either booleans or 0/1 integers. Missing trailing
// entries are illegal and extra entries are rejected.
func (l *LegalActions) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("valid_actions: %w", err)
	}
	if len(raw) > NumActions {
		return fmt.Errorf("valid_actions: %d entries, want at most %d", len(raw), NumActions)
	}
	*l = LegalActions{}
	for i, r := range raw {
		var b bool
		if err := json.Unmarshal(r, &b); err == nil {
			l[i] = b
			continue
		}
		var n float64
		if err := json.Unmarshal(r, &n); err != nil {
			return fmt.Errorf("valid_actions[%d]: want bool or number, got %s", i, r)
		}
		l[i] = n != 0
	}
	return nil
}

// Observation is the player's view of the table at one decision point.
type Observation struct {
	Street           Street       `json:"street"`
	ActingAgent      int          `json:"acting_agent"`
	MyCards          []int        `json:"my_cards"`
	CommunityCards   []int        `json:"community_cards"`
	MyBet            int          `json:"my_bet"`
	OppBet           int          `json:"opp_bet"`
	Chips            int          `json:"chips,omitempty"` // own stack; 0 when the harness omits it
	OppLastAction    string       `json:"opp_last_action"`
	OppDiscardedCard int          `json:"opp_discarded_card"`
	OppDrawnCard     int          `json:"opp_drawn_card"`
	MyDiscardedCard  int          `json:"my_discarded_card"`
	MyDrawnCard      int          `json:"my_drawn_card"`
	MinRaise         int          `json:"min_raise"`
	MaxRaise         int          `json:"max_raise"`
	ValidActions     LegalActions `json:"valid_actions"`
}

// UnmarshalJSON defaults the optional card fields to NoCard so that an
// absent field is never mistaken for card id 0.
func (o *Observation) UnmarshalJSON(data []byte) error {
	type plain Observation
	p := plain{
		OppDiscardedCard: NoCard,
		OppDrawnCard:     NoCard,
		MyDiscardedCard:  NoCard,
		MyDrawnCard:      NoCard,
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Observation(p)
	return nil
}

// HoleCards returns the valid own hole cards, skipping sentinels.
func (o Observation) HoleCards() []poker.Card {
	return validCards(o.MyCards)
}

// Board returns the revealed community cards.
func (o Observation) Board() []poker.Card {
	return validCards(o.CommunityCards)
}

// OpponentKnown returns opponent hole cards visible to us (the drawn card
// after a revealed discard).
func (o Observation) OpponentKnown() []poker.Card {
	return validCards([]int{o.OppDrawnCard})
}

// Dead returns cards out of play: both players' discards.
func (o Observation) Dead() []poker.Card {
	return validCards([]int{o.OppDiscardedCard, o.MyDiscardedCard})
}

// OpponentHasActed reports whether the opponent has acted this hand.
func (o Observation) OpponentHasActed() bool {
	return o.OppLastAction != "" && o.OppLastAction != "None"
}

// OpponentLastAction parses the opponent's last action label. It reports
// false when the opponent has not acted or the label is not an action.
func (o Observation) OpponentLastAction() (Action, bool) {
	if !o.OpponentHasActed() {
		return ActionFold, false
	}
	return ActionFromString(o.OppLastAction)
}

// CanRaise reports whether RAISE is legal with a non-empty raise window.
func (o Observation) CanRaise() bool {
	return o.ValidActions.Allows(ActionRaise) && o.MinRaise <= o.MaxRaise
}

// Clone returns a deep copy.
func (o Observation) Clone() Observation {
	o.MyCards = append([]int(nil), o.MyCards...)
	o.CommunityCards = append([]int(nil), o.CommunityCards...)
	return o
}

func validCards(ids []int) []poker.Card {
	out := make([]poker.Card, 0, len(ids))
	for _, id := range ids {
		if c, ok := poker.CardFromID(id); ok {
			out = append(out, c)
		}
	}
	return out
}

// DefaultHandStrength is used when Info carries no hint.
const DefaultHandStrength = 0.5

// Info is auxiliary per-decision context supplied by the harness.
type Info struct {
	HandNumber   int      `json:"hand_number"`
	OppChips     int      `json:"opp_chips"`
	Pot          int      `json:"pot"`
	CurrentBet   int      `json:"current_bet"`
	HandStrength *float64 `json:"hand_strength,omitempty"`
}

// Strength returns the hand strength hint or DefaultHandStrength.
func (i Info) Strength() float64 {
	if i.HandStrength == nil {
		return DefaultHandStrength
	}
	return *i.HandStrength
}

// Request is one act or observe call.
type Request struct {
	Observation Observation `json:"observation"`
	Reward      float64     `json:"reward"`
	Terminated  bool        `json:"terminated"`
	Truncated   bool        `json:"truncated"`
	Info        Info        `json:"info"`
}

// PotSize is info.pot when the harness supplies it, else the sum of both bets.
func (r Request) PotSize() int {
	if r.Info.Pot > 0 {
		return r.Info.Pot
	}
	return r.Observation.MyBet + r.Observation.OppBet
}

// CostToCall is what it costs to continue, never negative.
func (r Request) CostToCall() int {
	return max(r.Observation.OppBet-r.Observation.MyBet, 0)
}

// Decision is the agent's answer to a Request. Reasoning is for logs only.
type Decision struct {
	Action        Action `json:"action"`
	RaiseAmount   int    `json:"raise_amount"`
	CardToDiscard int    `json:"card_to_discard"`
	Reasoning     string `json:"-"`
}

func (d Decision) String() string {
	switch d.Action {
	case ActionRaise:
		return fmt.Sprintf("raise %d", d.RaiseAmount)
	case ActionDiscard:
		return fmt.Sprintf("discard %d", d.CardToDiscard)
	default:
		return d.Action.String()
	}
}

// MatchStats is a read-only snapshot of the agent's running statistics.
type MatchStats struct {
	HandsPlayed  int     `json:"hands_played"`
	HandsWon     int     `json:"hands_won"`
	TotalReward  float64 `json:"total_reward"`
	LastRecorded int     `json:"last_recorded_hand"`
}

// WinRate is hands won over hands played, 0 before any hand resolves.
func (s MatchStats) WinRate() float64 {
	if s.HandsPlayed == 0 {
		return 0
	}
	return float64(s.HandsWon) / float64(s.HandsPlayed)
}
