package main

import (
	"github.com/coder/quartz"
	"github.com/lox/discardbot/cmd/discardbot/shared"
	"github.com/lox/discardbot/internal/config"
	"github.com/lox/discardbot/internal/server"
)

type ServeCmd struct {
	Addr     string `help:"Listen address; overrides config and DISCARDBOT_ADDR"`
	Strategy string `help:"Decision procedure (equity, search)"`
	Journal  string `help:"Journal database path" type:"path"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup(func(cfg *config.Config) {
		if c.Addr != "" {
			cfg.Server.Address = c.Addr
		}
		if c.Strategy != "" {
			cfg.Agent.Strategy = c.Strategy
		}
		if c.Journal != "" {
			cfg.Journal.Path = c.Journal
		}
	})
	if err != nil {
		return err
	}

	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()

	a, release, err := buildAgent(cfg, quartz.NewReal(), logger)
	if err != nil {
		return err
	}
	defer release()

	logger.Info("Agent ready", "strategy", cfg.Agent.Strategy, "evaluator", cfg.Agent.Evaluator, "seed", cfg.Agent.Seed)
	return server.New(a, logger).ListenAndServe(ctx, cfg.Server.Address)
}
