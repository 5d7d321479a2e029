package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/lox/discardbot/internal/journal"
)

type JournalCmd struct {
	Path    string `arg:"" optional:"" type:"path" help:"Journal database (defaults to the configured path)"`
	Match   string `short:"m" help:"Show the hands of one match"`
	Limit   int    `short:"l" default:"50" help:"Maximum hands to show (0 for all)"`
	NoColor bool   `help:"Disable colored output"`
}

func (c *JournalCmd) Run(g *Globals) error {
	configureColor(c.NoColor)

	cfg, _, err := g.setup(nil)
	if err != nil {
		return err
	}
	path := c.Path
	if path == "" {
		path = cfg.Journal.Path
	}
	if path == "" {
		return errors.New("no journal path given and none configured")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("journal %s: %w", path, err)
	}

	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := context.Background()
	if c.Match != "" {
		return c.showMatch(ctx, j)
	}
	return c.listMatches(ctx, j)
}

func (c *JournalCmd) listMatches(ctx context.Context, j *journal.Journal) error {
	summaries, err := j.Summaries(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println(dimStyle.Render("journal is empty"))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("match"),
		headerStyle.Render("hands"),
		headerStyle.Render("won"),
		headerStyle.Render("reward"),
		headerStyle.Render("last hand"))
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%d\t%.1f%%\t%s\t%s\n",
			handStyle.Render(s.MatchID),
			s.Hands,
			s.WinRate()*100,
			signed("%+.0f", s.TotalReward),
			dimStyle.Render(s.LastHand.Local().Format(time.DateTime)))
	}
	return w.Flush()
}

func (c *JournalCmd) showMatch(ctx context.Context, j *journal.Journal) error {
	summary, err := j.Summary(ctx, c.Match)
	if err != nil {
		return err
	}
	if summary.Hands == 0 {
		return fmt.Errorf("no hands recorded for match %s", c.Match)
	}
	hands, err := j.Hands(ctx, c.Match, c.Limit)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s  %s\n", headerStyle.Render("match"), handStyle.Render(summary.MatchID),
		dimStyle.Render(fmt.Sprintf("%d hands, %.1f%% won, %+.0f chips", summary.Hands, summary.WinRate()*100, summary.TotalReward)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("hand"),
		headerStyle.Render("reward"),
		headerStyle.Render("strategy"),
		headerStyle.Render("recorded"))
	for _, h := range hands {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			h.HandNumber,
			signed("%+.0f", h.Reward),
			categoryStyle.Render(h.Strategy),
			dimStyle.Render(h.RecordedAt.Local().Format(time.DateTime)))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(hands) < summary.Hands {
		fmt.Println(dimStyle.Render(fmt.Sprintf("showing %d of %d hands", len(hands), summary.Hands)))
	}
	return nil
}
