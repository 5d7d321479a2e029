package bot

import (
	"context"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/discardbot/sdk"
)

// RandBot picks uniformly among legal actions, with a uniform raise size
// and discard index.
type RandBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandBot creates a new RandBot drawing from rng.
func NewRandBot(rng *rand.Rand, logger *log.Logger) *RandBot {
	return &RandBot{rng: rng, logger: logger.WithPrefix("randbot")}
}

func (r *RandBot) Act(_ context.Context, req sdk.Request) sdk.Decision {
	d := r.decide(req)
	r.logger.Debug("Decision", "hand", req.Info.HandNumber, "action", d.Action.String(), "amount", d.RaiseAmount, "discard", d.CardToDiscard)
	return d
}

func (r *RandBot) decide(req sdk.Request) sdk.Decision {
	obs := req.Observation
	legal := obs.ValidActions
	if !obs.CanRaise() {
		legal[sdk.ActionRaise] = false
	}
	actions := legal.List()
	if len(actions) == 0 {
		return sdk.NewFoldDecision("rand-bot has no legal action")
	}

	switch a := actions[r.rng.IntN(len(actions))]; a {
	case sdk.ActionRaise:
		return sdk.NewRaiseDecision(obs.MinRaise+r.rng.IntN(obs.MaxRaise-obs.MinRaise+1), "rand-bot raising")
	case sdk.ActionDiscard:
		return sdk.NewDiscardDecision(r.rng.IntN(sdk.HandSize), "rand-bot discarding")
	default:
		return sdk.NewDecision(a, "rand-bot "+a.String())
	}
}

func (r *RandBot) Observe(context.Context, sdk.Request) {}
