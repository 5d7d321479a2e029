package search

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/discardbot/internal/randutil"
	"github.com/lox/discardbot/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func testRequest(legal sdk.LegalActions) sdk.Request {
	return sdk.Request{
		Observation: sdk.Observation{
			Street:           sdk.Flop,
			MyCards:          []int{8, 17},
			CommunityCards:   []int{0, 1, 2, sdk.NoCard, sdk.NoCard},
			MyBet:            4,
			OppBet:           8,
			MinRaise:         6,
			MaxRaise:         60,
			OppDiscardedCard: sdk.NoCard,
			OppDrawnCard:     sdk.NoCard,
			MyDiscardedCard:  sdk.NoCard,
			MyDrawnCard:      sdk.NoCard,
			ValidActions:     legal,
		},
		Info: sdk.Info{OppChips: 92, Pot: 12},
	}
}

func newSearcher(t *testing.T, cfg Config, seed int64) *Searcher {
	t.Helper()
	return New(cfg, quartz.NewMock(t), randutil.New(seed), quietLogger())
}

func TestSearchIterationCap(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.MaxIterations = 200
	s := newSearcher(t, cfg, 1)

	res := s.Search(context.Background(), testRequest(sdk.Legal(sdk.ActionFold, sdk.ActionRaise, sdk.ActionCall)))
	assert.Equal(t, 200, res.Iterations)
	assert.Equal(t, 200, res.Tree.Visits(0), "every cycle backs up through the root")
	assert.Equal(t, time.Duration(0), res.Elapsed, "mock clock never moved")
	assert.NotZero(t, res.Best)
}

func TestSearchIsDeterministicForSeed(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.MaxIterations = 300
	req := testRequest(sdk.Legal(sdk.ActionFold, sdk.ActionRaise, sdk.ActionCall))

	a := newSearcher(t, cfg, 42).Search(context.Background(), req)
	b := newSearcher(t, cfg, 42).Search(context.Background(), req)
	require.Equal(t, a.Tree.Len(), b.Tree.Len())
	assert.Equal(t, a.Best, b.Best)
	for i := range a.Tree.Len() {
		assert.Equal(t, a.Tree.Visits(i), b.Tree.Visits(i))
	}
}

func TestSearchRespectsWallClockBudget(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Budget = 5 * time.Millisecond
	s := New(cfg, quartz.NewReal(), randutil.New(3), quietLogger())

	res := s.Search(context.Background(), testRequest(sdk.Legal(sdk.ActionCheck, sdk.ActionRaise)))
	assert.Positive(t, res.Iterations)
	assert.GreaterOrEqual(t, res.Elapsed, cfg.Budget)
	assert.Less(t, res.Elapsed, time.Second)
}

func TestSearchStopsOnCancelledContext(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.MaxIterations = 1000
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newSearcher(t, cfg, 1).Search(ctx, testRequest(sdk.Legal(sdk.ActionCall)))
	assert.Zero(t, res.Iterations)
	assert.Equal(t, 0, res.Best)
}

func TestSearchAvoidsFolding(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.MaxIterations = 500
	s := newSearcher(t, cfg, 9)

	// folding scores -1 while any live line scores around 50
	res := s.Search(context.Background(), testRequest(sdk.Legal(sdk.ActionFold, sdk.ActionCall)))
	assert.Equal(t, sdk.ActionCall, res.Tree.Action(res.Best))
}

func TestDecideRaiseWithinWindow(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.MaxIterations = 50
	req := testRequest(sdk.Legal(sdk.ActionRaise))

	for seed := range int64(20) {
		d := newSearcher(t, cfg, seed).Decide(context.Background(), req, sdk.MatchStats{})
		require.Equal(t, sdk.ActionRaise, d.Action)
		assert.GreaterOrEqual(t, d.RaiseAmount, 6)
		assert.LessOrEqual(t, d.RaiseAmount, 60)
		assert.Equal(t, sdk.NoCard, d.CardToDiscard)
		assert.Contains(t, d.Reasoning, "50 iterations")
	}
}

func TestDecideDiscardPicksHoleCard(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.MaxIterations = 20
	req := testRequest(sdk.Legal(sdk.ActionDiscard))

	seen := map[int]bool{}
	for seed := range int64(30) {
		d := newSearcher(t, cfg, seed).Decide(context.Background(), req, sdk.MatchStats{})
		require.Equal(t, sdk.ActionDiscard, d.Action)
		require.Contains(t, []int{0, 1}, d.CardToDiscard)
		seen[d.CardToDiscard] = true
	}
	assert.Len(t, seen, 2)
}

func TestDecideLegality(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.MaxIterations = 30
	rng := randutil.New(5)

	for i := range 200 {
		var legal sdk.LegalActions
		for _, a := range sdk.AllActions {
			legal[a] = rng.IntN(2) == 0
		}
		req := testRequest(legal)
		req.Observation.MinRaise = rng.IntN(20)
		req.Observation.MaxRaise = rng.IntN(20)

		d := newSearcher(t, cfg, int64(i)).Decide(context.Background(), req, sdk.MatchStats{})
		effective := legal
		if !req.Observation.CanRaise() {
			effective[sdk.ActionRaise] = false
		}
		if len(effective.List()) == 0 {
			assert.Equal(t, sdk.ActionFold, d.Action)
			continue
		}
		if effective.Allows(d.Action) {
			if d.Action == sdk.ActionRaise {
				assert.GreaterOrEqual(t, d.RaiseAmount, req.Observation.MinRaise)
				assert.LessOrEqual(t, d.RaiseAmount, req.Observation.MaxRaise)
			}
			continue
		}
		t.Fatalf("case %d: illegal %s for %v", i, d, legal.List())
	}
}

func TestDecideWithoutChildrenFallsBack(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.MaxIterations = 10
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newSearcher(t, cfg, 1)
	d := s.Decide(ctx, testRequest(sdk.Legal(sdk.ActionCheck, sdk.ActionFold)), sdk.MatchStats{})
	assert.Equal(t, sdk.ActionCheck, d.Action)

	d = s.Decide(ctx, testRequest(sdk.Legal(sdk.ActionFold, sdk.ActionCall)), sdk.MatchStats{})
	assert.Equal(t, sdk.ActionFold, d.Action)

	d = s.Decide(ctx, testRequest(sdk.Legal(sdk.ActionCall)), sdk.MatchStats{})
	assert.Equal(t, sdk.ActionCall, d.Action)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Budget = 0
	assert.Error(t, cfg.Validate())
	cfg.MaxIterations = 10
	assert.NoError(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Exploration = -1
	assert.Error(t, cfg.Validate())
}
