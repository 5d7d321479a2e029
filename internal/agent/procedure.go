package agent

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/discardbot/internal/evaluator"
	"github.com/lox/discardbot/internal/policy"
	"github.com/lox/discardbot/internal/randutil"
	"github.com/lox/discardbot/internal/search"
	"github.com/lox/discardbot/sdk"
)

// Procedure chooses a decision for one request.
type Procedure interface {
	Decide(ctx context.Context, req sdk.Request, stats sdk.MatchStats) sdk.Decision
}

// Strategy names accepted by NewProcedure.
const (
	StrategyEquity = "equity"
	StrategySearch = "search"
)

// ErrUnknownStrategy is returned for a strategy name NewProcedure does not know.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Config selects and tunes the decision procedure.
type Config struct {
	Strategy  string
	Evaluator string
	// Workers is the number of Monte Carlo workers; zero uses GOMAXPROCS.
	Workers int
	// Seed fixes all randomness; zero seeds from the clock.
	Seed   int64
	Policy policy.Config
	Search search.Config
}

// DefaultConfig returns the equity strategy with the native evaluator.
func DefaultConfig() Config {
	return Config{
		Strategy:  StrategyEquity,
		Evaluator: evaluator.BackendNative,
		Workers:   1,
		Policy:    policy.DefaultConfig(),
		Search:    search.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyEquity:
		if err := c.Policy.Validate(); err != nil {
			return err
		}
	case StrategySearch:
		if err := c.Search.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if _, err := evaluator.New(c.Evaluator); err != nil {
		return err
	}
	return nil
}

// NewProcedure builds the procedure named by cfg.Strategy.
func NewProcedure(cfg Config, clock quartz.Clock, logger *log.Logger) (Procedure, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = clock.Now("agent", "seed").UnixNano()
	}
	rng := randutil.New(seed)

	switch cfg.Strategy {
	case StrategySearch:
		logger.Debug("Using tree search", "budget", cfg.Search.Budget, "seed", seed)
		return search.New(cfg.Search, clock, rng, logger), nil
	default:
		ev, err := evaluator.New(cfg.Evaluator)
		if err != nil {
			return nil, err
		}
		workers := cfg.Workers
		if workers == 0 {
			workers = runtime.GOMAXPROCS(0)
		}
		logger.Debug("Using equity policy", "evaluator", cfg.Evaluator, "workers", workers, "seed", seed)
		return policy.New(cfg.Policy, evaluator.NewEstimator(ev, workers), rng, logger), nil
	}
}

// ProcedureFunc adapts a function to Procedure.
type ProcedureFunc func(ctx context.Context, req sdk.Request, stats sdk.MatchStats) sdk.Decision

func (f ProcedureFunc) Decide(ctx context.Context, req sdk.Request, stats sdk.MatchStats) sdk.Decision {
	return f(ctx, req, stats)
}
