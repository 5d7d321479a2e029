// Package simulator plays matches between agents on a local practice engine
// for the discard variant and collects per-agent statistics.
package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/discardbot/internal/fileutil"
	"github.com/lox/discardbot/internal/gameid"
	"github.com/lox/discardbot/internal/randutil"
	"github.com/lox/discardbot/internal/statistics"
	"github.com/lox/discardbot/sdk"
)

// Config holds configuration for running a match
type Config struct {
	MatchID string
	Hands   int
	Seed    int64
	Rules   Rules
	// HandTimeout bounds every hand; zero means no limit.
	HandTimeout time.Duration
}

func (c Config) Validate() error {
	if c.Hands <= 0 {
		return fmt.Errorf("hands must be positive, got %d", c.Hands)
	}
	if c.HandTimeout < 0 {
		return fmt.Errorf("hand timeout must not be negative, got %v", c.HandTimeout)
	}
	return c.Rules.Validate()
}

// Player is a named agent taking part in a match.
type Player struct {
	Name  string
	Agent sdk.Agent
}

// Progress is reported after every hand.
type Progress struct {
	Hand   int
	Hands  int
	Totals [2]float64
}

// PlayerReport is one player's side of a Report.
type PlayerReport struct {
	Name           string             `json:"name"`
	Summary        statistics.Summary `json:"summary"`
	IllegalActions int                `json:"illegal_actions"`
}

// Report is the serialisable result of a match.
type Report struct {
	MatchID  string         `json:"match_id"`
	Seed     int64          `json:"seed"`
	Hands    int            `json:"hands"`
	Rules    Rules          `json:"rules"`
	Elapsed  time.Duration  `json:"elapsed_ns"`
	Players  []PlayerReport `json:"players"`
	Finished time.Time      `json:"finished"`
}

// Match runs a fixed number of hands between two players with the button
// alternating every hand.
type Match struct {
	cfg      Config
	players  [2]Player
	engine   *Engine
	clock    quartz.Clock
	logger   *log.Logger
	progress func(Progress)
}

// MatchOption configures a Match.
type MatchOption func(*Match)

// WithProgress registers fn to be called after every hand.
func WithProgress(fn func(Progress)) MatchOption {
	return func(m *Match) { m.progress = fn }
}

// WithClock sets the clock used for timing the match.
func WithClock(clock quartz.Clock) MatchOption {
	return func(m *Match) { m.clock = clock }
}

// NewMatch creates a match. An empty MatchID is generated.
func NewMatch(cfg Config, players [2]Player, logger *log.Logger, opts ...MatchOption) *Match {
	if cfg.MatchID == "" {
		cfg.MatchID = gameid.Generate()
	}
	m := &Match{
		cfg:     cfg,
		players: players,
		engine:  NewEngine(cfg.Rules, logger),
		clock:   quartz.NewReal(),
		logger:  logger.WithPrefix("match"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MatchID returns the identifier used for this match.
func (m *Match) MatchID() string { return m.cfg.MatchID }

// Run plays the match. Each hand's deck is seeded from the match seed and
// the hand number, so the same seed deals the same cards whatever the
// agents do.
func (m *Match) Run(ctx context.Context) (*Report, error) {
	if err := m.cfg.Validate(); err != nil {
		return nil, err
	}

	agents := [2]sdk.Agent{m.players[0].Agent, m.players[1].Agent}
	var stats [2]statistics.Statistics
	var illegal [2]int
	var totals [2]float64
	start := m.clock.Now("match", "start")

	m.logger.Info("Starting match",
		"match", m.cfg.MatchID,
		"hands", m.cfg.Hands,
		"seed", m.cfg.Seed,
		"players", fmt.Sprintf("%s vs %s", m.players[0].Name, m.players[1].Name))

	for n := range m.cfg.Hands {
		outcome, err := m.playHand(ctx, agents, n)
		if err != nil {
			return nil, err
		}

		for i := range agents {
			stats[i].Add(statistics.HandResult{
				Reward:   outcome.Rewards[i],
				Button:   outcome.Button == i,
				Showdown: outcome.Showdown,
				Pot:      outcome.Pot,
				Street:   int(outcome.Street),
			})
			illegal[i] += outcome.Illegal[i]
			totals[i] += outcome.Rewards[i]
		}

		m.logger.Debug("Hand complete",
			"hand", n,
			"button", outcome.Button,
			"winner", outcome.Winner,
			"pot", outcome.Pot,
			"street", outcome.Street.String(),
			"showdown", outcome.Showdown)

		if m.progress != nil {
			m.progress(Progress{Hand: n + 1, Hands: m.cfg.Hands, Totals: totals})
		}
	}

	report := &Report{
		MatchID:  m.cfg.MatchID,
		Seed:     m.cfg.Seed,
		Hands:    m.cfg.Hands,
		Rules:    m.cfg.Rules,
		Elapsed:  m.clock.Since(start, "match", "elapsed"),
		Finished: m.clock.Now("match", "finished").UTC(),
	}
	for i, p := range m.players {
		if err := stats[i].Validate(); err != nil {
			return nil, fmt.Errorf("statistics validation failed for %s: %w", p.Name, err)
		}
		report.Players = append(report.Players, PlayerReport{
			Name:           p.Name,
			Summary:        stats[i].Summary(),
			IllegalActions: illegal[i],
		})
	}

	m.logger.Info("Match complete",
		"match", m.cfg.MatchID,
		"elapsed", report.Elapsed,
		"rewards", fmt.Sprintf("%s %+.1f, %s %+.1f", m.players[0].Name, totals[0], m.players[1].Name, totals[1]))
	return report, nil
}

func (m *Match) playHand(ctx context.Context, agents [2]sdk.Agent, n int) (Outcome, error) {
	if m.cfg.HandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.HandTimeout)
		defer cancel()
	}
	outcome, err := m.engine.PlayHand(ctx, agents, n, n%2, randutil.New(m.cfg.Seed+int64(n)))
	if err != nil {
		return Outcome{}, fmt.Errorf("hand %d (seed %d): %w", n, m.cfg.Seed+int64(n), err)
	}
	return outcome, nil
}

// WriteReport writes r as JSON to path atomically.
func WriteReport(path string, r *Report) error {
	if err := fileutil.WriteJSONAtomic(path, r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
