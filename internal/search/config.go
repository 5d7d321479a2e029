package search

import (
	"fmt"
	"time"
)

// Config tunes the tree search.
type Config struct {
	// Budget is the wall-clock time per decision. A cycle that starts before
	// the budget runs out always completes.
	Budget time.Duration
	// MaxIterations caps the number of cycles; zero means no cap.
	MaxIterations int
	// Exploration is the UCT exploration constant.
	Exploration  float64
	RolloutDepth int

	StartingStack int
	FoldReward    float64
	BustReward    float64

	StrengthWeight float64
	ChipWeight     float64
	PotWeight      float64
}

// DefaultConfig returns the default search settings.
func DefaultConfig() Config {
	return Config{
		Budget:         50 * time.Millisecond,
		Exploration:    1.4,
		RolloutDepth:   5,
		StartingStack:  100,
		FoldReward:     -1,
		BustReward:     -10,
		StrengthWeight: 100,
		ChipWeight:     0.1,
		PotWeight:      0.05,
	}
}

func (c Config) Validate() error {
	if c.Budget <= 0 && c.MaxIterations <= 0 {
		return fmt.Errorf("search needs a positive budget or iteration cap")
	}
	if c.Exploration < 0 {
		return fmt.Errorf("search exploration must not be negative, got %g", c.Exploration)
	}
	if c.RolloutDepth < 0 {
		return fmt.Errorf("search rollout depth must not be negative, got %d", c.RolloutDepth)
	}
	if c.StartingStack <= 0 {
		return fmt.Errorf("search starting stack must be positive, got %d", c.StartingStack)
	}
	return nil
}
