package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/lox/discardbot/internal/evaluator"
	"github.com/lox/discardbot/internal/randutil"
	"github.com/lox/discardbot/poker"
)

type EquityCmd struct {
	Hole      string `arg:"" help:"Own hole cards, e.g. As9d"`
	Board     string `short:"b" help:"Community cards (0, 3, 4 or 5)"`
	Opponent  string `short:"o" help:"Known opponent cards"`
	Dead      string `short:"d" help:"Dead cards such as discards"`
	Samples   int    `short:"n" default:"20000" help:"Monte Carlo trials"`
	Evaluator string `short:"e" default:"native" enum:"native,paulhankin" help:"Hand evaluator backend"`
	Workers   int    `short:"w" default:"0" help:"Parallel workers (0 for GOMAXPROCS)"`
	Seed      int64  `default:"0" help:"Random seed (0 for time based)"`
	NoColor   bool   `help:"Disable colored output"`
}

type equityInput struct {
	hole, board, opponent, dead []poker.Card
}

func (c *EquityCmd) parse() (equityInput, error) {
	var in equityInput
	var err error
	if in.hole, err = poker.ParseCards(c.Hole); err != nil {
		return in, fmt.Errorf("hole: %w", err)
	}
	if len(in.hole) != 2 {
		return in, fmt.Errorf("need exactly 2 hole cards, got %d", len(in.hole))
	}
	if in.board, err = poker.ParseCards(c.Board); err != nil {
		return in, fmt.Errorf("board: %w", err)
	}
	switch len(in.board) {
	case 0, 3, 4, 5:
	default:
		return in, fmt.Errorf("board must have 0, 3, 4 or 5 cards, got %d", len(in.board))
	}
	if in.opponent, err = poker.ParseCards(c.Opponent); err != nil {
		return in, fmt.Errorf("opponent: %w", err)
	}
	if len(in.opponent) > 2 {
		return in, fmt.Errorf("opponent has at most 2 cards, got %d", len(in.opponent))
	}
	if in.dead, err = poker.ParseCards(c.Dead); err != nil {
		return in, fmt.Errorf("dead: %w", err)
	}

	seen := make(map[poker.Card]bool)
	for _, group := range [][]poker.Card{in.hole, in.board, in.opponent, in.dead} {
		for _, card := range group {
			if seen[card] {
				return in, fmt.Errorf("card %s appears more than once", card)
			}
			seen[card] = true
		}
	}
	return in, nil
}

func (c *EquityCmd) Run(g *Globals) error {
	configureColor(c.NoColor)

	in, err := c.parse()
	if err != nil {
		return err
	}
	ev, err := evaluator.New(c.Evaluator)
	if err != nil {
		return err
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	est := evaluator.NewEstimator(ev, c.Workers)

	start := time.Now()
	res := est.Estimate(context.Background(), evaluator.EquityQuery{
		Hole:          in.hole,
		Board:         in.board,
		OpponentKnown: in.opponent,
		Dead:          in.dead,
		Samples:       c.Samples,
	}, randutil.New(seed))
	elapsed := time.Since(start)

	fmt.Printf("%s %s", headerStyle.Render("hand"), handStyle.Render(poker.FormatCards(in.hole)))
	if len(in.board) == 0 {
		fmt.Printf("  %s", categoryStyle.Render(string(poker.CategorizeHoleCards(in.hole[0], in.hole[1]))))
	} else {
		fmt.Printf("  %s", categoryStyle.Render(ev.Describe(in.hole, in.board)))
	}
	fmt.Println()
	if len(in.board) > 0 {
		fmt.Printf("%s %s\n", headerStyle.Render("board"), poker.FormatCards(in.board))
	}
	if len(in.opponent) > 0 {
		fmt.Printf("%s %s\n", headerStyle.Render("opponent"), poker.FormatCards(in.opponent))
	}
	if len(in.dead) > 0 {
		fmt.Printf("%s %s\n", headerStyle.Render("dead"), dimStyle.Render(poker.FormatCards(in.dead)))
	}
	fmt.Println()

	if res.Trials == 0 {
		fmt.Println(tieStyle.Render("not enough live cards to simulate; equity is neutral"))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("equity"), winStyle.Render(fmt.Sprintf("%.1f%%", res.Equity*100)))
	fmt.Fprintf(w, "%s\t%.1f%%\n", headerStyle.Render("win"), float64(res.Wins)/float64(res.Trials)*100)
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("tie"), tieStyle.Render(fmt.Sprintf("%.1f%%", res.TieRate()*100)))
	fmt.Fprintf(w, "%s\t%.1f%% - %.1f%%\n", headerStyle.Render("95% ci"), res.ConfidenceInterval[0]*100, res.ConfidenceInterval[1]*100)
	fmt.Fprintf(w, "%s\t%d (%d skipped)\n", headerStyle.Render("trials"), res.Trials, res.Skipped)
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("time"), dimStyle.Render(elapsed.Round(time.Millisecond).String()))
	return w.Flush()
}
