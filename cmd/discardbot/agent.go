package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/discardbot/internal/agent"
	"github.com/lox/discardbot/internal/config"
	"github.com/lox/discardbot/internal/gameid"
	"github.com/lox/discardbot/internal/journal"
)

// buildAgent wires the configured procedure and optional journal into an
// agent. The returned function releases the journal.
func buildAgent(cfg config.Config, clock quartz.Clock, logger *log.Logger) (*agent.Agent, func(), error) {
	proc, err := agent.NewProcedure(cfg.Agent, clock, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []agent.Option{
		agent.WithClock(clock),
		agent.WithStrategy(cfg.Agent.Strategy),
	}
	release := func() {}

	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open journal: %w", err)
		}
		matchID := cfg.Journal.MatchID
		if matchID == "" {
			matchID = gameid.Generate()
		}
		logger.Info("Journaling hands", "path", cfg.Journal.Path, "match", matchID)
		opts = append(opts, agent.WithRecorder(j, matchID))
		release = func() {
			if err := j.Close(); err != nil {
				logger.Warn("Failed to close journal", "error", err)
			}
		}
	}

	return agent.New(proc, logger, opts...), release, nil
}
