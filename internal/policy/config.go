package policy

import (
	"errors"
	"fmt"

	"github.com/lox/discardbot/internal/evaluator"
)

// Config holds the tunable constants of the equity policy.
type Config struct {
	// RaiseThreshold is the adjusted equity above which we raise on any street.
	RaiseThreshold float64
	// PreflopRaiseThreshold is the lower raise threshold used preflop.
	PreflopRaiseThreshold float64
	// MonsterCap is the equity at or above which we only raise with
	// probability MonsterRaiseProb, slow playing otherwise.
	MonsterCap       float64
	MonsterRaiseProb float64

	// PerformanceWeight scales the win-rate feedback term; WarmupHands sets
	// how quickly it reaches full strength.
	PerformanceWeight float64
	WarmupHands       float64

	// BetDiscount is the largest fraction of equity removed for facing a
	// bet of at least the street's scale.
	BetDiscount      float64
	PreflopBetScale  float64
	PostflopBetScale float64

	InPositionBoost      float64
	OutOfPositionPenalty float64

	// Bluff probabilities when checking is legal.
	BluffInPosition    float64
	BluffOutOfPosition float64

	// DiscardBias is subtracted from each simulated discard's equity.
	DiscardBias float64

	// MatchHands is the match length used by the attrition guard. The guard
	// folds once loss >= AttritionPerHand * handsRemaining + AttritionBuffer.
	MatchHands       int
	AttritionPerHand float64
	AttritionBuffer  float64

	Samples        int
	DiscardSamples int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		RaiseThreshold:        0.7,
		PreflopRaiseThreshold: 0.52,
		MonsterCap:            0.95,
		MonsterRaiseProb:      0.65,
		PerformanceWeight:     0.1,
		WarmupHands:           50,
		BetDiscount:           0.1,
		PreflopBetScale:       20,
		PostflopBetScale:      50,
		InPositionBoost:       1.03,
		OutOfPositionPenalty:  0.97,
		BluffInPosition:       0.1,
		BluffOutOfPosition:    0.2,
		DiscardBias:           0.05,
		MatchHands:            1000,
		AttritionPerHand:      1.5,
		AttritionBuffer:       1,
		Samples:               evaluator.DefaultSamples,
		DiscardSamples:        evaluator.DiscardSamples,
	}
}

// Validate reports the first out-of-range constant.
func (c Config) Validate() error {
	unit := []struct {
		name  string
		value float64
	}{
		{"raise_threshold", c.RaiseThreshold},
		{"preflop_raise_threshold", c.PreflopRaiseThreshold},
		{"monster_cap", c.MonsterCap},
		{"monster_raise_prob", c.MonsterRaiseProb},
		{"bet_discount", c.BetDiscount},
		{"bluff_in_position", c.BluffInPosition},
		{"bluff_out_of_position", c.BluffOutOfPosition},
	}
	for _, u := range unit {
		if u.value < 0 || u.value > 1 {
			return fmt.Errorf("policy %s must be within [0, 1], got %g", u.name, u.value)
		}
	}
	if c.PreflopBetScale <= 0 || c.PostflopBetScale <= 0 {
		return errors.New("policy bet scales must be positive")
	}
	if c.InPositionBoost <= 0 || c.OutOfPositionPenalty <= 0 {
		return errors.New("policy position multipliers must be positive")
	}
	if c.WarmupHands < 0 || c.PerformanceWeight < 0 {
		return errors.New("policy performance feedback must not be negative")
	}
	if c.MatchHands <= 0 {
		return fmt.Errorf("policy match_hands must be positive, got %d", c.MatchHands)
	}
	if c.Samples <= 0 || c.DiscardSamples <= 0 {
		return errors.New("policy sample counts must be positive")
	}
	return nil
}
