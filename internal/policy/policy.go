// Package policy turns a Monte Carlo equity estimate, pot odds, position and
// running match results into an action.
package policy

import (
	"context"
	"math"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/discardbot/internal/evaluator"
	"github.com/lox/discardbot/internal/randutil"
	"github.com/lox/discardbot/poker"
	"github.com/lox/discardbot/sdk"
)

// EquitySource estimates equity. *evaluator.Estimator satisfies it.
type EquitySource interface {
	Estimate(ctx context.Context, q evaluator.EquityQuery, rng *rand.Rand) evaluator.EquityResult
}

// Policy is the equity-driven decision procedure.
type Policy struct {
	cfg    Config
	equity EquitySource
	rng    *rand.Rand
	logger *log.Logger
}

// New creates a policy. All randomness, including the Monte Carlo trials,
// is drawn from rng.
func New(cfg Config, equity EquitySource, rng *rand.Rand, logger *log.Logger) *Policy {
	return &Policy{
		cfg:    cfg,
		equity: equity,
		rng:    rng,
		logger: logger.WithPrefix("policy"),
	}
}

// situation is the context extracted from one request.
type situation struct {
	street     sdk.Street
	inPosition bool
	pot        int
	cost       int
	potOdds    float64
}

func readSituation(req sdk.Request) situation {
	s := situation{
		street: req.Observation.Street,
		// the opponent has not acted yet this hand
		inPosition: !req.Observation.OpponentHasActed(),
		pot:        req.PotSize(),
		cost:       req.CostToCall(),
	}
	if s.cost > 0 {
		s.potOdds = float64(s.cost) / float64(s.cost+s.pot)
	}
	return s
}

// Decide chooses an action for req given the statistics of the match so far.
func (p *Policy) Decide(ctx context.Context, req sdk.Request, stats sdk.MatchStats) sdk.Decision {
	obs := req.Observation
	thinking := &ThinkingContext{}

	if p.attritionTriggered(req, stats, thinking) {
		d := sdk.Sanitize(sdk.NewFoldDecision(thinking.GetThoughts()), obs)
		p.logger.Debug("Attrition guard fold", "hand", req.Info.HandNumber, "total_reward", stats.TotalReward)
		return d
	}

	sit := readSituation(req)
	thinking.AddThought("%s, %s, pot %d, %d to call (pot odds %.2f)",
		sit.street, positionLabel(sit.inPosition), sit.pot, sit.cost, sit.potOdds)

	hole := obs.HoleCards()
	if sit.street == sdk.Preflop && len(hole) == 2 {
		thinking.AddThought("holding %s (%s)", poker.FormatCards(hole), poker.CategorizeHoleCards(hole[0], hole[1]))
	}

	raw := p.equity.Estimate(ctx, evaluator.EquityQuery{
		Hole:          hole,
		Board:         obs.Board(),
		OpponentKnown: obs.OpponentKnown(),
		Dead:          obs.Dead(),
		Samples:       p.cfg.Samples,
	}, p.rng)
	adj := p.adjust(raw.Equity, sit, obs.OppBet, stats)
	thinking.AddThought("equity %.3f adjusted to %.3f", raw.Equity, adj)

	d := p.choose(ctx, req, sit, raw.Equity, adj, thinking)
	d.Reasoning = thinking.GetThoughts()
	d = sdk.Sanitize(d, obs)

	p.logger.Debug("Policy decision analysis",
		"hand", req.Info.HandNumber,
		"street", sit.street.String(),
		"hole", poker.FormatCards(hole),
		"board", poker.FormatCards(obs.Board()),
		"in_position", sit.inPosition,
		"pot", sit.pot,
		"pot_odds", sit.potOdds,
		"equity", raw.Equity,
		"trials", raw.Trials,
		"adjusted", adj,
		"decision", d.String())

	return d
}

func (p *Policy) attritionTriggered(req sdk.Request, stats sdk.MatchStats, thinking *ThinkingContext) bool {
	remaining := float64(p.cfg.MatchHands - req.Info.HandNumber)
	loss := -stats.TotalReward
	limit := p.cfg.AttritionPerHand*remaining + p.cfg.AttritionBuffer
	if loss < limit {
		return false
	}
	thinking.AddThought("down %.0f with %.0f hands left (limit %.1f), folding out the match", loss, remaining, limit)
	return true
}

// adjust applies performance feedback, the bet-size discount and the
// position multiplier, clamped to [0, 1].
func (p *Policy) adjust(equity float64, sit situation, oppBet int, stats sdk.MatchStats) float64 {
	adj := equity

	if n := float64(stats.HandsPlayed); n > 0 {
		warmup := n / (n + p.cfg.WarmupHands)
		adj += p.cfg.PerformanceWeight * (0.5 - stats.WinRate()) * warmup
	}

	scale := p.cfg.PostflopBetScale
	if sit.street == sdk.Preflop {
		scale = p.cfg.PreflopBetScale
	}
	adj *= 1 - p.cfg.BetDiscount*math.Min(float64(oppBet)/scale, 1)

	if sit.inPosition {
		adj *= p.cfg.InPositionBoost
	} else {
		adj *= p.cfg.OutOfPositionPenalty
	}

	return math.Max(0, math.Min(1, adj))
}

func (p *Policy) choose(ctx context.Context, req sdk.Request, sit situation, raw, adj float64, thinking *ThinkingContext) sdk.Decision {
	obs := req.Observation
	legal := obs.ValidActions
	canRaise := obs.CanRaise()

	strong := adj > p.cfg.RaiseThreshold || (sit.street == sdk.Preflop && adj > p.cfg.PreflopRaiseThreshold)
	if strong && canRaise {
		if adj < p.cfg.MonsterCap || p.rng.Float64() < p.cfg.MonsterRaiseProb {
			amount := p.raiseSize(sit.pot, adj/2, adj*1.5, obs)
			thinking.AddThought("strong hand, raising %d", amount)
			return sdk.NewRaiseDecision(amount)
		}
		thinking.AddThought("monster hand, slow playing")
	}

	if adj >= sit.potOdds && legal.Allows(sdk.ActionCall) {
		thinking.AddThought("equity covers pot odds, calling")
		return sdk.NewCallDecision()
	}

	if legal.Allows(sdk.ActionCheck) {
		bluff := p.cfg.BluffOutOfPosition
		if sit.inPosition {
			bluff = p.cfg.BluffInPosition
		}
		if canRaise && p.rng.Float64() < bluff {
			amount := p.raiseSize(sit.pot, 0.5, 1.5, obs)
			thinking.AddThought("bluffing %d", amount)
			return sdk.NewRaiseDecision(amount)
		}
		thinking.AddThought("checking")
		return sdk.NewCheckDecision()
	}

	if legal.Allows(sdk.ActionDiscard) {
		return p.chooseDiscard(ctx, req, raw, thinking)
	}

	thinking.AddThought("nothing better than folding")
	return sdk.NewFoldDecision()
}

// raiseSize is pot * U(lo, hi), rounded and clamped to the raise window.
func (p *Policy) raiseSize(pot int, lo, hi float64, obs sdk.Observation) int {
	amount := int(math.Round(float64(pot) * randutil.Uniform(p.rng, lo, hi)))
	return min(max(amount, obs.MinRaise), obs.MaxRaise)
}

// chooseDiscard simulates throwing away each hole card in turn. The thrown
// card is dead and its replacement is drawn inside each trial. The better
// option is taken only if it beats the equity of standing pat.
func (p *Policy) chooseDiscard(ctx context.Context, req sdk.Request, raw float64, thinking *ThinkingContext) sdk.Decision {
	obs := req.Observation
	hole := obs.HoleCards()
	if len(hole) != sdk.HandSize {
		thinking.AddThought("cannot evaluate a discard without two hole cards, folding")
		return sdk.NewFoldDecision()
	}

	best, bestEquity := -1, 0.0
	for idx := range hole {
		keep := hole[1-idx]
		dead := append(obs.Dead(), hole[idx])
		res := p.equity.Estimate(ctx, evaluator.EquityQuery{
			Hole:          []poker.Card{keep},
			Board:         obs.Board(),
			OpponentKnown: obs.OpponentKnown(),
			Dead:          dead,
			Samples:       p.cfg.DiscardSamples,
		}, p.rng)
		eq := res.Equity - p.cfg.DiscardBias
		if best < 0 || eq > bestEquity {
			best, bestEquity = idx, eq
		}
	}

	if bestEquity > raw {
		thinking.AddThought("discarding %s improves equity to %.3f", hole[best], bestEquity)
		return sdk.NewDiscardDecision(best)
	}
	thinking.AddThought("no discard beats %.3f, folding", raw)
	return sdk.NewFoldDecision()
}

func positionLabel(in bool) string {
	if in {
		return "in position"
	}
	return "out of position"
}
