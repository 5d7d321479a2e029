package bot

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/lox/discardbot/poker"
	"github.com/lox/discardbot/sdk"
)

// CallBot is a calling station: it checks or calls to the river and keeps
// its higher card when it has to discard.
type CallBot struct {
	logger *log.Logger
}

// NewCallBot creates a new CallBot instance
func NewCallBot(logger *log.Logger) *CallBot {
	return &CallBot{logger: logger.WithPrefix("callbot")}
}

func (c *CallBot) Act(_ context.Context, req sdk.Request) sdk.Decision {
	d := c.decide(req)
	c.logger.Debug("Decision", "hand", req.Info.HandNumber, "action", d.Action.String(), "amount", d.RaiseAmount, "discard", d.CardToDiscard)
	return d
}

func (c *CallBot) decide(req sdk.Request) sdk.Decision {
	obs := req.Observation
	legal := obs.ValidActions

	switch {
	case legal.Allows(sdk.ActionDiscard):
		return sdk.NewDiscardDecision(lowerCard(obs.MyCards), "call-bot dropping its lower card")
	case legal.Allows(sdk.ActionCheck):
		return sdk.NewCheckDecision("call-bot checking")
	case legal.Allows(sdk.ActionCall):
		return sdk.NewCallDecision("call-bot calling")
	}
	return sdk.Sanitize(sdk.NewFoldDecision("call-bot forced fold"), obs)
}

func (c *CallBot) Observe(context.Context, sdk.Request) {}

// lowerCard returns the index of the lower ranked hole card, 0 on ties or
// when the cards are unknown.
func lowerCard(ids []int) int {
	if len(ids) < 2 {
		return 0
	}
	a, okA := poker.CardFromID(ids[0])
	b, okB := poker.CardFromID(ids[1])
	if okA && okB && b.Rank() < a.Rank() {
		return 1
	}
	return 0
}
