package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/discardbot/cmd/discardbot/shared"
	"github.com/lox/discardbot/internal/bot"
	"github.com/lox/discardbot/internal/config"
	"github.com/lox/discardbot/internal/gameid"
	"github.com/lox/discardbot/internal/simulator"
	"github.com/lox/discardbot/sdk"
)

type SimulateCmd struct {
	Hands       int           `short:"n" default:"1000" help:"Number of hands to play"`
	Opponent    string        `short:"o" default:"random" help:"Opponent: a baseline bot (call, fold, random) or self"`
	Seed        int64         `default:"0" help:"Match seed (0 for time based)"`
	Strategy    string        `help:"Decision procedure for the agent (equity, search)"`
	HandTimeout time.Duration `default:"30s" help:"Abort a hand that takes longer than this (0 disables)"`
	Report      string        `short:"r" type:"path" help:"Write a JSON report to this path"`
	Forced      bool          `name:"forced-discard" help:"Offer DISCARD or FOLD on the flop instead of DISCARD or CHECK"`
	Progress    string        `default:"auto" enum:"auto,bar,log,none" help:"Progress display (auto, bar, log, none)"`
	NoColor     bool          `help:"Disable colored output"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	configureColor(c.NoColor)

	matchID := gameid.Generate()
	cfg, logger, err := g.setup(func(cfg *config.Config) {
		if c.Strategy != "" {
			cfg.Agent.Strategy = c.Strategy
		}
		if cfg.Journal.MatchID == "" {
			cfg.Journal.MatchID = matchID
		}
	})
	if err != nil {
		return err
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.Agent.Seed == 0 {
		cfg.Agent.Seed = seed
	}

	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()

	clock := quartz.NewReal()
	hero, release, err := buildAgent(cfg, clock, logger.WithPrefix("agent"))
	if err != nil {
		return err
	}
	defer release()

	villain, err := c.opponent(cfg, clock, logger)
	if err != nil {
		return err
	}

	players := [2]simulator.Player{
		{Name: "discardbot", Agent: hero},
		{Name: c.Opponent, Agent: villain},
	}
	rules := simulator.DefaultRules()
	rules.ForcedDiscard = c.Forced
	matchCfg := simulator.Config{
		MatchID:     cfg.Journal.MatchID,
		Hands:       c.Hands,
		Seed:        seed,
		Rules:       rules,
		HandTimeout: c.HandTimeout,
	}
	if err := matchCfg.Validate(); err != nil {
		return err
	}

	mode := c.Progress
	if mode == "auto" {
		mode = "log"
		if stderrIsTerminal() {
			mode = "bar"
		}
	}

	var report *simulator.Report
	switch mode {
	case "bar":
		report, err = c.runWithBar(ctx, cancel, matchCfg, players, logger)
	case "log":
		every := max(1, c.Hands/20)
		report, err = simulator.NewMatch(matchCfg, players, logger,
			simulator.WithProgress(func(p simulator.Progress) {
				if p.Hand%every == 0 || p.Hand == p.Hands {
					logger.Info("Progress", "hand", p.Hand, "of", p.Hands,
						"agent", p.Totals[0], "opponent", p.Totals[1])
				}
			}),
		).Run(ctx)
	default:
		report, err = simulator.NewMatch(matchCfg, players, logger).Run(ctx)
	}
	if err != nil {
		return err
	}

	printReport(report)
	if c.Report != "" {
		if err := simulator.WriteReport(c.Report, report); err != nil {
			return err
		}
		logger.Info("Wrote report", "path", c.Report)
	}
	return nil
}

func (c *SimulateCmd) opponent(cfg config.Config, clock quartz.Clock, logger *log.Logger) (sdk.Agent, error) {
	if c.Opponent != "self" {
		return bot.New(c.Opponent, cfg.Agent.Seed+1, logger.WithPrefix(c.Opponent))
	}
	mirror := cfg
	mirror.Agent.Seed = cfg.Agent.Seed + 1
	mirror.Journal.Path = ""
	a, _, err := buildAgent(mirror, clock, logger.WithPrefix("self"))
	return a, err
}

// runWithBar plays the match under a bubbletea progress bar. Logging is
// limited to warnings so it does not tear the display.
func (c *SimulateCmd) runWithBar(ctx context.Context, cancel func(), cfg simulator.Config, players [2]simulator.Player, logger *log.Logger) (*simulator.Report, error) {
	logger.SetLevel(log.WarnLevel)

	model := newProgressModel([2]string{players[0].Name, players[1].Name}, cfg.Hands, cancel)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))

	type result struct {
		report *simulator.Report
		err    error
	}
	done := make(chan result, 1)
	go func() {
		match := simulator.NewMatch(cfg, players, logger,
			simulator.WithProgress(func(p simulator.Progress) {
				program.Send(progressMsg(p))
			}),
		)
		report, err := match.Run(ctx)
		done <- result{report, err}
		program.Send(matchDoneMsg{})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("progress display failed: %w", err)
	}
	res := <-done
	return res.report, res.err
}

func printReport(r *simulator.Report) {
	fmt.Printf("%s %s  %s\n", headerStyle.Render("match"), r.MatchID,
		dimStyle.Render(fmt.Sprintf("seed %d, %d hands in %s", r.Seed, r.Hands, r.Elapsed.Round(time.Millisecond))))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("player"),
		headerStyle.Render("total"),
		headerStyle.Render("mean"),
		headerStyle.Render("95% ci"),
		headerStyle.Render("win rate"),
		headerStyle.Render("showdowns"),
		headerStyle.Render("illegal"))
	for _, p := range r.Players {
		s := p.Summary
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%\t%d\t%d\n",
			handStyle.Render(p.Name),
			signed("%+.0f", s.Total),
			signed("%+.3f", s.Mean),
			fmt.Sprintf("[%+.3f, %+.3f]", s.CI95[0], s.CI95[1]),
			s.WinRate*100,
			s.Showdown,
			p.IllegalActions)
	}
	_ = w.Flush()
}
