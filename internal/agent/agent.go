// Package agent is the shell the harness talks to. It keeps running match
// statistics, delegates each decision to a Procedure and guarantees that
// whatever comes back is legal.
package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/discardbot/internal/journal"
	"github.com/lox/discardbot/sdk"
)

// Recorder stores resolved hands. *journal.Journal satisfies it.
type Recorder interface {
	Record(ctx context.Context, h journal.Hand) error
}

// Agent implements sdk.Agent.
type Agent struct {
	procedure Procedure
	logger    *log.Logger
	clock     quartz.Clock
	recorder  Recorder
	matchID   string
	strategy  string

	// run serializes decisions; procedures are not safe for concurrent use.
	run sync.Mutex

	mu      sync.Mutex
	stats   sdk.MatchStats
	pending bool
}

// Option configures an Agent.
type Option func(*Agent)

// WithRecorder journals every resolved hand under matchID.
func WithRecorder(r Recorder, matchID string) Option {
	return func(a *Agent) {
		a.recorder = r
		a.matchID = matchID
	}
}

// WithClock sets the clock used for journal timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(a *Agent) { a.clock = clock }
}

// WithStrategy labels journal entries with the strategy name.
func WithStrategy(name string) Option {
	return func(a *Agent) { a.strategy = name }
}

// New creates an agent around p.
func New(p Procedure, logger *log.Logger, opts ...Option) *Agent {
	a := &Agent{
		procedure: p,
		logger:    logger.WithPrefix("agent"),
		clock:     quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Stats returns a snapshot of the running statistics.
func (a *Agent) Stats() sdk.MatchStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Act returns a legal decision for req. A panicking procedure is logged and
// answered with the safe fallback.
func (a *Agent) Act(ctx context.Context, req sdk.Request) (d sdk.Decision) {
	a.run.Lock()
	defer a.run.Unlock()

	a.mu.Lock()
	a.pending = true
	stats := a.stats
	a.mu.Unlock()

	obs := req.Observation
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Decision procedure panicked", "hand", req.Info.HandNumber, "panic", fmt.Sprint(r))
			d = sdk.Sanitize(sdk.NewFoldDecision("recovered from a failed decision"), obs)
		}
	}()

	d = sdk.Sanitize(a.procedure.Decide(ctx, req, stats), obs)

	a.logger.Info("Decision",
		"hand", req.Info.HandNumber,
		"street", obs.Street.String(),
		"decision", d.String(),
		"reasoning", d.Reasoning)
	return d
}

// Observe records the hand when req is terminal and otherwise logs what the
// opponent did. A terminal observation repeated for the same hand, with no
// decision in between, is recorded once.
func (a *Agent) Observe(ctx context.Context, req sdk.Request) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Observe panicked", "hand", req.Info.HandNumber, "panic", fmt.Sprint(r))
		}
	}()

	if !req.Terminated {
		obs := req.Observation
		if action, ok := obs.OpponentLastAction(); ok {
			a.logger.Debug("Opponent acted",
				"hand", req.Info.HandNumber,
				"street", obs.Street.String(),
				"action", action.String())
		} else if obs.OpponentHasActed() {
			a.logger.Debug("Opponent acted with an unknown action",
				"hand", req.Info.HandNumber,
				"label", obs.OppLastAction)
		}
		return
	}

	hand := req.Info.HandNumber
	a.mu.Lock()
	duplicate := !a.pending && a.stats.HandsPlayed > 0 && a.stats.LastRecorded == hand
	if !duplicate {
		a.stats.HandsPlayed++
		if req.Reward > 0 {
			a.stats.HandsWon++
		}
		a.stats.TotalReward += req.Reward
		a.stats.LastRecorded = hand
		a.pending = false
	}
	stats := a.stats
	a.mu.Unlock()

	if duplicate {
		a.logger.Debug("Ignoring repeated terminal observation", "hand", hand)
		return
	}

	a.logger.Info("Hand complete",
		"hand", hand,
		"reward", req.Reward,
		"played", stats.HandsPlayed,
		"won", stats.HandsWon,
		"total_reward", stats.TotalReward)

	if a.recorder == nil {
		return
	}
	err := a.recorder.Record(ctx, journal.Hand{
		MatchID:    a.matchID,
		HandNumber: hand,
		Reward:     req.Reward,
		Won:        req.Reward > 0,
		Strategy:   a.strategy,
		RecordedAt: a.clock.Now("agent", "journal"),
	})
	if err != nil {
		a.logger.Warn("Failed to journal hand", "hand", hand, "error", err)
	}
}
