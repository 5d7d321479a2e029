package bot

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/lox/discardbot/sdk"
)

// FoldBot is a simple bot that always folds (or checks when possible)
type FoldBot struct {
	logger *log.Logger
}

// NewFoldBot creates a new FoldBot instance
func NewFoldBot(logger *log.Logger) *FoldBot {
	return &FoldBot{logger: logger.WithPrefix("foldbot")}
}

func (f *FoldBot) Act(_ context.Context, req sdk.Request) sdk.Decision {
	d := f.decide(req)
	f.logger.Debug("Decision", "hand", req.Info.HandNumber, "action", d.Action.String(), "amount", d.RaiseAmount, "discard", d.CardToDiscard)
	return d
}

func (f *FoldBot) decide(req sdk.Request) sdk.Decision {
	obs := req.Observation
	if obs.ValidActions.Allows(sdk.ActionCheck) {
		return sdk.NewCheckDecision("fold-bot checking")
	}
	if obs.ValidActions.Allows(sdk.ActionFold) {
		return sdk.NewFoldDecision("fold-bot folding")
	}
	return sdk.Sanitize(sdk.NewFoldDecision("fold-bot forced to act"), obs)
}

func (f *FoldBot) Observe(context.Context, sdk.Request) {}
