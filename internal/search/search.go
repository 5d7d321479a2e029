// Package search is the alternative decision procedure: a UCT tree search
// over a coarse simulation of the hand, run under a wall-clock budget.
package search

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/discardbot/sdk"
)

// Searcher runs one tree search per decision. Trees are never reused
// between decisions.
type Searcher struct {
	cfg    Config
	clock  quartz.Clock
	rng    *rand.Rand
	logger *log.Logger
}

// New creates a searcher. The clock bounds each search; tests pass a mock.
func New(cfg Config, clock quartz.Clock, rng *rand.Rand, logger *log.Logger) *Searcher {
	return &Searcher{
		cfg:    cfg,
		clock:  clock,
		rng:    rng,
		logger: logger.WithPrefix("search"),
	}
}

// Result summarises one search.
type Result struct {
	Tree       *Tree
	Best       int
	Iterations int
	Elapsed    time.Duration
}

// Search grows a tree from req until the budget is spent, the iteration cap
// is reached or ctx is done. The budget is checked between cycles only.
func (s *Searcher) Search(ctx context.Context, req sdk.Request) Result {
	tree := NewTree(StateFromRequest(req, s.cfg), s.cfg)
	start := s.clock.Now("search", "start")

	iterations := 0
	for {
		if s.cfg.MaxIterations > 0 && iterations >= s.cfg.MaxIterations {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if s.cfg.Budget > 0 {
			if s.clock.Since(start, "search", "budget") >= s.cfg.Budget {
				break
			}
		} else if s.cfg.MaxIterations <= 0 {
			break
		}

		leaf := tree.Expand(tree.Select())
		tree.Backpropagate(leaf, tree.Rollout(tree.State(leaf), s.rng))
		iterations++
	}

	return Result{
		Tree:       tree,
		Best:       tree.BestChild(),
		Iterations: iterations,
		Elapsed:    s.clock.Since(start, "search", "elapsed"),
	}
}

// Decide implements the search procedure. Match statistics are not used.
func (s *Searcher) Decide(ctx context.Context, req sdk.Request, _ sdk.MatchStats) sdk.Decision {
	obs := req.Observation
	res := s.Search(ctx, req)

	var d sdk.Decision
	if res.Best == 0 {
		d = sdk.NewDecision(defaultAction(obs.ValidActions), "search produced no children")
	} else {
		d = s.materialise(res.Tree.Action(res.Best), obs)
		best := res.Best
		d.Reasoning = fmt.Sprintf("%d iterations, %s visited %d/%d times, mean %.2f",
			res.Iterations, d.Action, res.Tree.Visits(best), res.Tree.Visits(0),
			res.Tree.TotalReward(best)/float64(max(res.Tree.Visits(best), 1)))
	}
	d = sdk.Sanitize(d, obs)

	s.logger.Debug("Search complete",
		"hand", req.Info.HandNumber,
		"iterations", res.Iterations,
		"nodes", res.Tree.Len(),
		"elapsed", res.Elapsed,
		"decision", d.String())
	return d
}

// materialise attaches parameters to the chosen action: a raise amount
// uniform over the raise window or a uniformly chosen hole card.
func (s *Searcher) materialise(a sdk.Action, obs sdk.Observation) sdk.Decision {
	switch a {
	case sdk.ActionRaise:
		amount := obs.MinRaise
		if obs.MaxRaise > obs.MinRaise {
			amount += s.rng.IntN(obs.MaxRaise - obs.MinRaise + 1)
		}
		return sdk.NewRaiseDecision(amount)
	case sdk.ActionDiscard:
		return sdk.NewDiscardDecision(s.rng.IntN(sdk.HandSize))
	default:
		return sdk.NewDecision(a)
	}
}

// defaultAction is CHECK if legal, else FOLD, else the first legal action.
func defaultAction(legal sdk.LegalActions) sdk.Action {
	switch {
	case legal.Allows(sdk.ActionCheck):
		return sdk.ActionCheck
	case legal.Allows(sdk.ActionFold):
		return sdk.ActionFold
	}
	if list := legal.List(); len(list) > 0 {
		return list[0]
	}
	return sdk.ActionFold
}
