package search

import (
	"github.com/lox/discardbot/sdk"
)

// State is a hypothetical game state inside the search. Values are never
// mutated in place: Apply returns a new State, so sibling branches never
// share slices.
type State struct {
	MyCards      []int
	Chips        int
	OppChips     int
	Pot          int
	MyBet        int
	OppBet       int
	MinRaise     int
	MaxRaise     int
	Legal        sdk.LegalActions
	HandStrength float64
	Terminated   bool
	Reward       float64
}

// StateFromRequest builds the root state. Own chips come from the
// observation when the harness reports them, otherwise from the starting
// stack less what we have already put in.
func StateFromRequest(req sdk.Request, cfg Config) State {
	obs := req.Observation
	chips := obs.Chips
	if chips <= 0 {
		chips = cfg.StartingStack - obs.MyBet
	}
	legal := obs.ValidActions
	if obs.MinRaise > obs.MaxRaise {
		legal[sdk.ActionRaise] = false
	}
	return State{
		MyCards:      append([]int(nil), obs.MyCards...),
		Chips:        chips,
		OppChips:     req.Info.OppChips,
		Pot:          req.PotSize(),
		MyBet:        obs.MyBet,
		OppBet:       obs.OppBet,
		MinRaise:     obs.MinRaise,
		MaxRaise:     obs.MaxRaise,
		Legal:        legal,
		HandStrength: req.Info.Strength(),
		Terminated:   req.Terminated,
		Reward:       req.Reward,
	}
}

// Actions lists the legal actions in code order, or nil once terminal.
func (s State) Actions() []sdk.Action {
	if s.Terminated {
		return nil
	}
	return s.Legal.List()
}

// Apply simulates a on a copy of s. This is a coarse model, not the rules
// of the game: a raise always costs the minimum raise, a call costs the
// outstanding difference, a fold ends the hand at FoldReward and a discard
// drops the first hole card. Running out of chips ends the hand at BustReward.
func (s State) Apply(a sdk.Action, cfg Config) State {
	next := s
	next.MyCards = append([]int(nil), s.MyCards...)

	switch a {
	case sdk.ActionFold:
		next.Terminated = true
		next.Reward = cfg.FoldReward
		return next
	case sdk.ActionRaise:
		next.Chips -= s.MinRaise
		next.Pot += s.MinRaise
		next.MyBet += s.MinRaise
	case sdk.ActionCall:
		diff := max(s.OppBet-s.MyBet, 0)
		next.Chips -= diff
		next.Pot += diff
		next.MyBet += diff
	case sdk.ActionDiscard:
		if len(next.MyCards) > 0 {
			next.MyCards = next.MyCards[1:]
		}
	}

	if next.Chips <= 0 {
		next.Terminated = true
		next.Reward = cfg.BustReward
	}
	return next
}

// Evaluate scores a state from our point of view: the terminal reward, or
// a blend of the strength hint, chip lead and pot size.
func (s State) Evaluate(cfg Config) float64 {
	if s.Terminated {
		return s.Reward
	}
	return s.HandStrength*cfg.StrengthWeight +
		float64(s.Chips-s.OppChips)*cfg.ChipWeight +
		float64(s.Pot)*cfg.PotWeight
}
