package evaluator

import (
	"context"
	"math"
	rand "math/rand/v2"

	"github.com/lox/discardbot/internal/randutil"
	"github.com/lox/discardbot/poker"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSamples is the trial count for a full equity estimate.
	DefaultSamples = 8000
	// DiscardSamples is the trial count for each discard sub-estimate.
	DiscardSamples = 1600
	// NeutralEquity is reported when no trial could be drawn.
	NeutralEquity = 0.5

	handSize  = 2
	boardSize = 5

	// parallelThreshold is the smallest sample count worth splitting.
	parallelThreshold = 500
	// cancelCheckEvery bounds how many trials run between context checks.
	cancelCheckEvery = 256
)

// EquityQuery describes what is known at a decision point. Hole may hold
// fewer than two cards when a discard is being evaluated; the missing card
// is drawn in every trial just like the opponent's hidden cards.
type EquityQuery struct {
	Hole          []poker.Card
	Board         []poker.Card
	OpponentKnown []poker.Card
	Dead          []poker.Card
	Samples       int
}

// EquityResult holds the raw counts behind an estimate.
type EquityResult struct {
	Equity  float64 `json:"equity"`
	Wins    int     `json:"wins"`
	Ties    int     `json:"ties"`
	Trials  int     `json:"trials"`
	Skipped int     `json:"skipped"`
	// ConfidenceInterval is the 95% normal approximation, clamped to [0, 1].
	ConfidenceInterval [2]float64 `json:"ci95"`
}

// TieRate is the share of valid trials that split the pot.
func (r EquityResult) TieRate() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Ties) / float64(r.Trials)
}

// Estimator runs Monte Carlo equity estimates against a random opponent hand.
type Estimator struct {
	Evaluator Evaluator
	// Workers > 1 splits large estimates across goroutines.
	Workers int
}

// NewEstimator returns an estimator over ev with the given worker count.
func NewEstimator(ev Evaluator, workers int) *Estimator {
	if ev == nil {
		ev = Native{}
	}
	return &Estimator{Evaluator: ev, Workers: workers}
}

type tally struct {
	wins, ties, trials, skipped int
}

func (t *tally) add(o tally) {
	t.wins += o.wins
	t.ties += o.ties
	t.trials += o.trials
	t.skipped += o.skipped
}

// setup is the per-query state shared read-only by all workers.
type setup struct {
	hole, board, oppKnown []poker.Card
	unseen                []poker.Card
	needHole, needOpp     int
	needBoard             int
}

func (s setup) need() int {
	return s.needHole + s.needOpp + s.needBoard
}

func newSetup(q EquityQuery) (setup, bool) {
	if len(q.Hole) > handSize || len(q.Board) > boardSize || len(q.OpponentKnown) > handSize {
		return setup{}, false
	}
	known := poker.NewHand(q.Hole...) | poker.NewHand(q.Board...) |
		poker.NewHand(q.OpponentKnown...) | poker.NewHand(q.Dead...)
	s := setup{
		hole:      q.Hole,
		board:     q.Board,
		oppKnown:  q.OpponentKnown,
		unseen:    (poker.FullDeck &^ known).Cards(),
		needHole:  handSize - len(q.Hole),
		needOpp:   handSize - len(q.OpponentKnown),
		needBoard: boardSize - len(q.Board),
	}
	return s, s.need() <= len(s.unseen)
}

// Estimate returns the probability that our completed hand strictly beats
// the opponent's. Ties are counted separately and are not wins. When no
// trial can be drawn the result is NeutralEquity.
func (e *Estimator) Estimate(ctx context.Context, q EquityQuery, rng *rand.Rand) EquityResult {
	samples := q.Samples
	if samples <= 0 {
		samples = DefaultSamples
	}

	s, ok := newSetup(q)
	if !ok {
		return finish(tally{skipped: samples})
	}

	workers := e.Workers
	if workers <= 1 || samples < parallelThreshold {
		return finish(e.run(ctx, s, samples, rng))
	}
	return finish(e.runParallel(ctx, s, samples, workers, rng))
}

func (e *Estimator) runParallel(ctx context.Context, s setup, samples, workers int, rng *rand.Rand) tally {
	rngs := randutil.Split(rng, workers)
	results := make([]tally, workers)
	per, remainder := samples/workers, samples%workers

	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		n := per
		if w < remainder {
			n++
		}
		g.Go(func() error {
			results[w] = e.run(gctx, s, n, rngs[w])
			return nil
		})
	}
	_ = g.Wait()

	var total tally
	for _, r := range results {
		total.add(r)
	}
	return total
}

// run draws samples trials. Each trial shuffles just enough of a private
// copy of the unseen pool to deal the missing cards without replacement.
func (e *Estimator) run(ctx context.Context, s setup, samples int, rng *rand.Rand) tally {
	var t tally
	pool := append([]poker.Card(nil), s.unseen...)
	need := s.need()

	hero := make([]poker.Card, 0, handSize)
	opp := make([]poker.Card, 0, handSize)
	board := make([]poker.Card, 0, boardSize)

	for i := range samples {
		if i%cancelCheckEvery == 0 && ctx.Err() != nil {
			t.skipped += samples - i
			break
		}
		if need > len(pool) {
			t.skipped++
			continue
		}
		for k := range need {
			j := k + rng.IntN(len(pool)-k)
			pool[k], pool[j] = pool[j], pool[k]
		}
		drawn := pool[:need]

		hero = append(append(hero[:0], s.hole...), drawn[:s.needHole]...)
		drawn = drawn[s.needHole:]
		opp = append(append(opp[:0], s.oppKnown...), drawn[:s.needOpp]...)
		drawn = drawn[s.needOpp:]
		board = append(append(board[:0], s.board...), drawn...)

		ours := e.Evaluator.Rank(hero, board)
		theirs := e.Evaluator.Rank(opp, board)
		switch {
		case ours < theirs:
			t.wins++
		case ours == theirs:
			t.ties++
		}
		t.trials++
	}
	return t
}

func finish(t tally) EquityResult {
	r := EquityResult{
		Wins:    t.wins,
		Ties:    t.ties,
		Trials:  t.trials,
		Skipped: t.skipped,
		Equity:  NeutralEquity,
	}
	if t.trials == 0 {
		r.ConfidenceInterval = [2]float64{NeutralEquity, NeutralEquity}
		return r
	}
	p := float64(t.wins) / float64(t.trials)
	margin := 1.96 * math.Sqrt(p*(1-p)/float64(t.trials))
	r.Equity = p
	r.ConfidenceInterval = [2]float64{math.Max(0, p-margin), math.Min(1, p+margin)}
	return r
}
