package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/coder/quartz"
	"github.com/lox/discardbot/internal/config"
	"github.com/lox/discardbot/sdk"
)

type DecideCmd struct {
	Input    string `arg:"" optional:"" help:"Request JSON file; stdin when omitted or -"`
	Strategy string `help:"Decision procedure (equity, search)"`
}

func (c *DecideCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup(func(cfg *config.Config) {
		if c.Strategy != "" {
			cfg.Agent.Strategy = c.Strategy
		}
		cfg.Journal.Path = ""
	})
	if err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if c.Input != "" && c.Input != "-" {
		f, err := os.Open(c.Input)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	var req sdk.Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}

	a, release, err := buildAgent(cfg, quartz.NewReal(), logger)
	if err != nil {
		return err
	}
	defer release()

	d := a.Act(context.Background(), req)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
