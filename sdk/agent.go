package sdk

import "context"

// Agent is the harness contract: Act chooses an action, Observe is told
// about everything else including hand termination. Neither may fail.
type Agent interface {
	Act(ctx context.Context, req Request) Decision
	Observe(ctx context.Context, req Request)
}

// NewDecision creates a decision with the no-raise and no-discard sentinels.
func NewDecision(action Action, reasoning ...string) Decision {
	d := Decision{Action: action, CardToDiscard: NoCard}
	if len(reasoning) > 0 {
		d.Reasoning = reasoning[0]
	}
	return d
}

// NewFoldDecision creates a fold decision
func NewFoldDecision(reasoning ...string) Decision {
	return NewDecision(ActionFold, reasoning...)
}

// NewCallDecision creates a call decision
func NewCallDecision(reasoning ...string) Decision {
	return NewDecision(ActionCall, reasoning...)
}

// NewCheckDecision creates a check decision
func NewCheckDecision(reasoning ...string) Decision {
	return NewDecision(ActionCheck, reasoning...)
}

// NewRaiseDecision creates a raise decision with the specified amount
func NewRaiseDecision(amount int, reasoning ...string) Decision {
	d := NewDecision(ActionRaise, reasoning...)
	d.RaiseAmount = amount
	return d
}

// NewDiscardDecision discards the hole card at index (0 or 1).
func NewDiscardDecision(index int, reasoning ...string) Decision {
	d := NewDecision(ActionDiscard, reasoning...)
	d.CardToDiscard = index
	return d
}

// SafeAction is the conservative fallback among the legal actions: FOLD,
// else CHECK, else CALL, else the first legal action. With nothing legal it
// is FOLD.
func SafeAction(legal LegalActions) Action {
	for _, a := range []Action{ActionFold, ActionCheck, ActionCall} {
		if legal[a] {
			return a
		}
	}
	if list := legal.List(); len(list) > 0 {
		return list[0]
	}
	return ActionFold
}

// Sanitize makes d legal for obs. An illegal action is replaced by the safe
// fallback, raise amounts are clamped into [min_raise, max_raise], and the
// parameters not belonging to the action are reset to their sentinels.
func Sanitize(d Decision, obs Observation) Decision {
	legal := obs.ValidActions
	if obs.MinRaise > obs.MaxRaise {
		legal[ActionRaise] = false
	}
	if d.Action == ActionDiscard && d.CardToDiscard != 0 && d.CardToDiscard != 1 {
		legal[ActionDiscard] = false
	}
	if !legal.Allows(d.Action) {
		fallback := SafeAction(legal)
		reason := d.Reasoning
		if fallback == ActionDiscard {
			return NewDiscardDecision(0, reason)
		}
		if fallback == ActionRaise {
			return NewRaiseDecision(obs.MinRaise, reason)
		}
		return NewDecision(fallback, reason)
	}

	switch d.Action {
	case ActionRaise:
		d.RaiseAmount = min(max(d.RaiseAmount, obs.MinRaise), obs.MaxRaise)
		d.CardToDiscard = NoCard
	case ActionDiscard:
		d.RaiseAmount = 0
	default:
		d.RaiseAmount = 0
		d.CardToDiscard = NoCard
	}
	return d
}
