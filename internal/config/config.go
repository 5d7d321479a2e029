// Package config loads the agent configuration from an HCL file, applies
// environment overrides and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/discardbot/internal/agent"
)

// Environment variables that override the file.
const (
	EnvConfig   = "DISCARDBOT_CONFIG"
	EnvAddr     = "DISCARDBOT_ADDR"
	EnvSeed     = "DISCARDBOT_SEED"
	EnvStrategy = "DISCARDBOT_STRATEGY"
)

// Config is the complete runtime configuration.
type Config struct {
	Agent   agent.Config
	Server  ServerConfig
	Journal JournalConfig
	Log     LogConfig
}

// ServerConfig configures the harness transport.
type ServerConfig struct {
	Address string
}

// JournalConfig enables the hand journal when Path is set.
type JournalConfig struct {
	Path    string
	MatchID string
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level string
	JSON  bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Agent:  agent.DefaultConfig(),
		Server: ServerConfig{Address: ":8080"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads the HCL file at filename over the defaults. A missing file
// yields the defaults.
func Load(filename string) (Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var f fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &f); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	if err := f.apply(&cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// ApplyEnv applies the DISCARDBOT_* overrides read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvAddr); v != "" {
		c.Server.Address = v
	}
	if v := getenv(EnvStrategy); v != "" {
		c.Agent.Strategy = v
	}
	if v := getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Agent.Seed = seed
	}
	return nil
}

// Validate validates the configuration
func (c Config) Validate() error {
	if err := c.Agent.Validate(); err != nil {
		return err
	}
	if c.Server.Address == "" {
		return errors.New("server address must not be empty")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return nil
}

// fileConfig mirrors the HCL layout. Every field is optional: nil means
// keep the default.
type fileConfig struct {
	Strategy  *string `hcl:"strategy,optional"`
	Evaluator *string `hcl:"evaluator,optional"`
	Workers   *int    `hcl:"workers,optional"`
	Seed      *int64  `hcl:"seed,optional"`

	Policy  *policyBlock  `hcl:"policy,block"`
	Search  *searchBlock  `hcl:"search,block"`
	Server  *serverBlock  `hcl:"server,block"`
	Journal *journalBlock `hcl:"journal,block"`
	Log     *logBlock     `hcl:"log,block"`
}

type policyBlock struct {
	RaiseThreshold        *float64 `hcl:"raise_threshold,optional"`
	PreflopRaiseThreshold *float64 `hcl:"preflop_raise_threshold,optional"`
	MonsterCap            *float64 `hcl:"monster_cap,optional"`
	MonsterRaiseProb      *float64 `hcl:"monster_raise_prob,optional"`
	PerformanceWeight     *float64 `hcl:"performance_weight,optional"`
	WarmupHands           *float64 `hcl:"warmup_hands,optional"`
	BetDiscount           *float64 `hcl:"bet_discount,optional"`
	PreflopBetScale       *float64 `hcl:"preflop_bet_scale,optional"`
	PostflopBetScale      *float64 `hcl:"postflop_bet_scale,optional"`
	InPositionBoost       *float64 `hcl:"in_position_boost,optional"`
	OutOfPositionPenalty  *float64 `hcl:"out_of_position_penalty,optional"`
	BluffInPosition       *float64 `hcl:"bluff_in_position,optional"`
	BluffOutOfPosition    *float64 `hcl:"bluff_out_of_position,optional"`
	DiscardBias           *float64 `hcl:"discard_bias,optional"`
	MatchHands            *int     `hcl:"match_hands,optional"`
	AttritionPerHand      *float64 `hcl:"attrition_per_hand,optional"`
	AttritionBuffer       *float64 `hcl:"attrition_buffer,optional"`
	Samples               *int     `hcl:"samples,optional"`
	DiscardSamples        *int     `hcl:"discard_samples,optional"`
}

type searchBlock struct {
	Budget         *string  `hcl:"budget,optional"`
	MaxIterations  *int     `hcl:"max_iterations,optional"`
	Exploration    *float64 `hcl:"exploration,optional"`
	RolloutDepth   *int     `hcl:"rollout_depth,optional"`
	StartingStack  *int     `hcl:"starting_stack,optional"`
	FoldReward     *float64 `hcl:"fold_reward,optional"`
	BustReward     *float64 `hcl:"bust_reward,optional"`
	StrengthWeight *float64 `hcl:"strength_weight,optional"`
	ChipWeight     *float64 `hcl:"chip_weight,optional"`
	PotWeight      *float64 `hcl:"pot_weight,optional"`
}

type serverBlock struct {
	Address *string `hcl:"address,optional"`
}

type journalBlock struct {
	Path    *string `hcl:"path,optional"`
	MatchID *string `hcl:"match_id,optional"`
}

type logBlock struct {
	Level *string `hcl:"level,optional"`
	JSON  *bool   `hcl:"json,optional"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (f fileConfig) apply(cfg *Config) error {
	set(&cfg.Agent.Strategy, f.Strategy)
	set(&cfg.Agent.Evaluator, f.Evaluator)
	set(&cfg.Agent.Workers, f.Workers)
	set(&cfg.Agent.Seed, f.Seed)

	if p := f.Policy; p != nil {
		pc := &cfg.Agent.Policy
		set(&pc.RaiseThreshold, p.RaiseThreshold)
		set(&pc.PreflopRaiseThreshold, p.PreflopRaiseThreshold)
		set(&pc.MonsterCap, p.MonsterCap)
		set(&pc.MonsterRaiseProb, p.MonsterRaiseProb)
		set(&pc.PerformanceWeight, p.PerformanceWeight)
		set(&pc.WarmupHands, p.WarmupHands)
		set(&pc.BetDiscount, p.BetDiscount)
		set(&pc.PreflopBetScale, p.PreflopBetScale)
		set(&pc.PostflopBetScale, p.PostflopBetScale)
		set(&pc.InPositionBoost, p.InPositionBoost)
		set(&pc.OutOfPositionPenalty, p.OutOfPositionPenalty)
		set(&pc.BluffInPosition, p.BluffInPosition)
		set(&pc.BluffOutOfPosition, p.BluffOutOfPosition)
		set(&pc.DiscardBias, p.DiscardBias)
		set(&pc.MatchHands, p.MatchHands)
		set(&pc.AttritionPerHand, p.AttritionPerHand)
		set(&pc.AttritionBuffer, p.AttritionBuffer)
		set(&pc.Samples, p.Samples)
		set(&pc.DiscardSamples, p.DiscardSamples)
	}

	if s := f.Search; s != nil {
		sc := &cfg.Agent.Search
		if s.Budget != nil {
			d, err := time.ParseDuration(*s.Budget)
			if err != nil {
				return fmt.Errorf("search budget: %w", err)
			}
			sc.Budget = d
		}
		set(&sc.MaxIterations, s.MaxIterations)
		set(&sc.Exploration, s.Exploration)
		set(&sc.RolloutDepth, s.RolloutDepth)
		set(&sc.StartingStack, s.StartingStack)
		set(&sc.FoldReward, s.FoldReward)
		set(&sc.BustReward, s.BustReward)
		set(&sc.StrengthWeight, s.StrengthWeight)
		set(&sc.ChipWeight, s.ChipWeight)
		set(&sc.PotWeight, s.PotWeight)
	}

	if s := f.Server; s != nil {
		set(&cfg.Server.Address, s.Address)
	}
	if j := f.Journal; j != nil {
		set(&cfg.Journal.Path, j.Path)
		set(&cfg.Journal.MatchID, j.MatchID)
	}
	if l := f.Log; l != nil {
		set(&cfg.Log.Level, l.Level)
		set(&cfg.Log.JSON, l.JSON)
	}
	return nil
}
