package search

import (
	"testing"

	"github.com/lox/discardbot/sdk"
	"github.com/stretchr/testify/assert"
)

func TestApplyEffects(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	s := rootState()

	raised := s.Apply(sdk.ActionRaise, cfg)
	assert.Equal(t, 86, raised.Chips)
	assert.Equal(t, 24, raised.Pot)
	assert.False(t, raised.Terminated)

	called := s.Apply(sdk.ActionCall, cfg)
	assert.Equal(t, 86, called.Chips)
	assert.Equal(t, 24, called.Pot)
	assert.Equal(t, 6, called.MyBet)
	assert.Equal(t, called.Chips, called.Apply(sdk.ActionCall, cfg).Chips, "nothing left to call")

	folded := s.Apply(sdk.ActionFold, cfg)
	assert.True(t, folded.Terminated)
	assert.Equal(t, cfg.FoldReward, folded.Reward)

	checked := s.Apply(sdk.ActionCheck, cfg)
	assert.Equal(t, s.Chips, checked.Chips)

	discarded := s.Apply(sdk.ActionDiscard, cfg)
	assert.Equal(t, []int{7}, discarded.MyCards)

	// the receiver is untouched
	assert.Equal(t, []int{26, 7}, s.MyCards)
	assert.Equal(t, 90, s.Chips)
	assert.False(t, s.Terminated)
}

func TestApplyDoesNotAlias(t *testing.T) {
	t.Parallel()
	s := rootState()
	a := s.Apply(sdk.ActionCheck, DefaultConfig())
	a.MyCards[0] = 0
	assert.Equal(t, 26, s.MyCards[0])
}

func TestApplyBust(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	s := rootState()
	s.Chips = 4
	busted := s.Apply(sdk.ActionRaise, cfg)
	assert.True(t, busted.Terminated)
	assert.Equal(t, cfg.BustReward, busted.Reward)
	assert.Nil(t, busted.Actions())
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	s := rootState()
	assert.InDelta(t, 0.5*100+10*0.1+20*0.05, s.Evaluate(cfg), 1e-9)

	s.Terminated, s.Reward = true, 7
	assert.Equal(t, 7.0, s.Evaluate(cfg))
}

func TestStateFromRequest(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	req := sdk.Request{
		Observation: sdk.Observation{
			MyCards:      []int{1, 2},
			MyBet:        10,
			OppBet:       20,
			MinRaise:     30,
			MaxRaise:     10,
			ValidActions: sdk.Legal(sdk.ActionRaise, sdk.ActionCall),
		},
		Info: sdk.Info{OppChips: 80},
	}

	s := StateFromRequest(req, cfg)
	assert.Equal(t, 90, s.Chips, "starting stack less own bet")
	assert.Equal(t, 30, s.Pot)
	assert.Equal(t, sdk.DefaultHandStrength, s.HandStrength)
	assert.Equal(t, []sdk.Action{sdk.ActionCall}, s.Actions(), "empty raise window removes RAISE")

	req.Observation.Chips = 55
	strength := 0.9
	req.Info.HandStrength = &strength
	s = StateFromRequest(req, cfg)
	assert.Equal(t, 55, s.Chips)
	assert.Equal(t, 0.9, s.HandStrength)
}
