package simulator

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/discardbot/poker"
	"github.com/lox/discardbot/sdk"
)

// Rules are the stakes of the practice engine. Stacks reset every hand.
type Rules struct {
	SmallBlind    int `json:"small_blind"`
	BigBlind      int `json:"big_blind"`
	StartingStack int `json:"starting_stack"`
	// ForcedDiscard offers {DISCARD, FOLD} on the flop instead of
	// {DISCARD, CHECK}, so a player must draw or give up the hand.
	ForcedDiscard bool `json:"forced_discard,omitempty"`
}

// DefaultRules are blinds 1/2 with 100 chip stacks.
func DefaultRules() Rules {
	return Rules{SmallBlind: 1, BigBlind: 2, StartingStack: 100}
}

func (r Rules) Validate() error {
	if r.SmallBlind <= 0 || r.BigBlind < r.SmallBlind {
		return fmt.Errorf("invalid blinds %d/%d", r.SmallBlind, r.BigBlind)
	}
	if r.StartingStack < r.BigBlind {
		return fmt.Errorf("starting stack %d is smaller than the big blind", r.StartingStack)
	}
	return nil
}

// Outcome is the result of one hand. Rewards are indexed by seat and always
// sum to zero.
type Outcome struct {
	Rewards  [2]float64
	Winner   int // -1 on a split pot
	Showdown bool
	Pot      int
	Street   sdk.Street
	Button   int
	// Illegal counts decisions per seat the engine had to correct.
	Illegal [2]int
}

// Engine plays heads-up hands of the discard variant. It is a practice
// engine for self-play, not the authoritative one.
type Engine struct {
	rules  Rules
	logger *log.Logger
}

// NewEngine creates an engine with the given rules.
func NewEngine(rules Rules, logger *log.Logger) *Engine {
	return &Engine{rules: rules, logger: logger.WithPrefix("engine")}
}

type seat struct {
	agent      sdk.Agent
	hole       []poker.Card
	bet        int
	acted      bool
	lastAction string
	discarded  int
	drawn      int
}

type hand struct {
	engine    *Engine
	number    int
	button    int
	deck      *poker.Deck
	board     []poker.Card
	seats     [2]*seat
	street    sdk.Street
	lastRaise int
	folded    int
	outcome   Outcome
}

// PlayHand deals and plays one hand. button is the seat posting the small
// blind. Agents see exactly what a harness would show them: Act when it is
// their turn, Observe after every opponent action and once when the hand ends.
func (e *Engine) PlayHand(ctx context.Context, agents [2]sdk.Agent, number, button int, rng *rand.Rand) (Outcome, error) {
	h := &hand{
		engine: e,
		number: number,
		button: button,
		deck:   poker.NewDeck(rng),
		folded: -1,
	}
	for i := range h.seats {
		h.seats[i] = &seat{
			agent:      agents[i],
			hole:       h.deck.Deal(sdk.HandSize),
			lastAction: "None",
			discarded:  sdk.NoCard,
			drawn:      sdk.NoCard,
		}
	}
	h.board = h.deck.Deal(sdk.BoardSize)
	h.outcome.Button = button

	bb := 1 - button
	h.seats[button].bet = e.rules.SmallBlind
	h.seats[bb].bet = e.rules.BigBlind

	for _, street := range []sdk.Street{sdk.Preflop, sdk.Flop, sdk.Turn, sdk.River} {
		h.street = street
		h.lastRaise = e.rules.BigBlind
		for _, s := range h.seats {
			s.acted = false
		}

		if street == sdk.Flop {
			for _, i := range []int{bb, button} {
				if err := h.discardPhase(ctx, i); err != nil {
					return Outcome{}, err
				}
				if h.folded >= 0 {
					break
				}
			}
			if h.folded >= 0 {
				break
			}
		}

		first := bb
		if street == sdk.Preflop {
			first = button
		}
		if !h.allIn() {
			if err := h.bettingRound(ctx, first); err != nil {
				return Outcome{}, err
			}
		}
		if h.folded >= 0 {
			break
		}
	}

	h.settle()
	for i, s := range h.seats {
		req := h.request(i, sdk.LegalActions{}, 0, 0)
		req.Terminated = true
		req.Reward = h.outcome.Rewards[i]
		s.agent.Observe(ctx, req)
	}
	return h.outcome, nil
}

func (h *hand) stack() int { return h.engine.rules.StartingStack }

func (h *hand) allIn() bool {
	return h.seats[0].bet == h.stack() || h.seats[1].bet == h.stack()
}

// discardPhase offers seat i a single discard. The discarded card is shown
// to the opponent; the replacement is not.
func (h *hand) discardPhase(ctx context.Context, i int) error {
	s := h.seats[i]
	legal := sdk.Legal(sdk.ActionDiscard, sdk.ActionCheck)
	if h.engine.rules.ForcedDiscard {
		legal = sdk.Legal(sdk.ActionDiscard, sdk.ActionFold)
	}
	d, err := h.ask(ctx, i, legal, 0, 0)
	if err != nil {
		return err
	}

	switch d.Action {
	case sdk.ActionFold:
		h.folded = i
		s.lastAction = actionLabel(d.Action)
		return nil
	case sdk.ActionDiscard:
		card, ok := h.deck.DealOne()
		if !ok {
			return fmt.Errorf("hand %d: deck exhausted on discard", h.number)
		}
		s.discarded = int(s.hole[d.CardToDiscard])
		s.drawn = int(card)
		s.hole[d.CardToDiscard] = card
	}
	s.lastAction = actionLabel(d.Action)
	h.notify(ctx, 1-i)
	return nil
}

func (h *hand) bettingRound(ctx context.Context, first int) error {
	stack := h.stack()
	for toAct := first; ; toAct = 1 - toAct {
		s, o := h.seats[toAct], h.seats[1-toAct]
		if s.acted && o.acted && s.bet == o.bet {
			return nil
		}
		if s.bet == stack {
			s.acted = true
			continue
		}

		legal, minRaise, maxRaise := h.legal(toAct)
		d, err := h.ask(ctx, toAct, legal, minRaise, maxRaise)
		if err != nil {
			return err
		}

		switch d.Action {
		case sdk.ActionFold:
			h.folded = toAct
		case sdk.ActionCall:
			s.bet = o.bet
		case sdk.ActionRaise:
			s.bet = o.bet + d.RaiseAmount
			h.lastRaise = d.RaiseAmount
			o.acted = false
		}
		s.acted = true
		s.lastAction = actionLabel(d.Action)

		if h.folded >= 0 {
			return nil
		}
		h.notify(ctx, 1-toAct)
	}
}

// legal returns the legal actions for seat i with the raise window. A raise
// is on top of the opponent's bet: at least max(big blind, last raise) and at
// most what keeps the total within the stack.
func (h *hand) legal(i int) (sdk.LegalActions, int, int) {
	s, o := h.seats[i], h.seats[1-i]
	var legal sdk.LegalActions
	if o.bet > s.bet {
		legal[sdk.ActionFold] = true
		legal[sdk.ActionCall] = true
	} else {
		legal[sdk.ActionCheck] = true
	}

	maxRaise := h.stack() - o.bet
	minRaise := max(h.engine.rules.BigBlind, h.lastRaise)
	if maxRaise <= 0 {
		return legal, 0, 0
	}
	legal[sdk.ActionRaise] = true
	return legal, min(minRaise, maxRaise), maxRaise
}

// ask requests a decision from seat i and corrects anything illegal.
func (h *hand) ask(ctx context.Context, i int, legal sdk.LegalActions, minRaise, maxRaise int) (sdk.Decision, error) {
	if err := ctx.Err(); err != nil {
		return sdk.Decision{}, fmt.Errorf("hand %d: %w", h.number, err)
	}
	req := h.request(i, legal, minRaise, maxRaise)
	d := h.seats[i].agent.Act(ctx, req)
	if legalDecision(d, req.Observation) {
		return d, nil
	}

	h.outcome.Illegal[i]++
	fixed := sdk.Sanitize(d, req.Observation)
	h.engine.logger.Warn("Corrected illegal decision",
		"hand", h.number,
		"seat", i,
		"street", h.street.String(),
		"decision", d.String(),
		"corrected", fixed.String())
	return fixed, nil
}

func legalDecision(d sdk.Decision, obs sdk.Observation) bool {
	if !obs.ValidActions.Allows(d.Action) {
		return false
	}
	switch d.Action {
	case sdk.ActionRaise:
		return obs.CanRaise() && d.RaiseAmount >= obs.MinRaise && d.RaiseAmount <= obs.MaxRaise
	case sdk.ActionDiscard:
		return d.CardToDiscard == 0 || d.CardToDiscard == 1
	}
	return true
}

// notify sends seat i a non-terminal observation after its opponent acted.
func (h *hand) notify(ctx context.Context, i int) {
	h.seats[i].agent.Observe(ctx, h.request(i, sdk.LegalActions{}, 0, 0))
}

func (h *hand) request(i int, legal sdk.LegalActions, minRaise, maxRaise int) sdk.Request {
	s, o := h.seats[i], h.seats[1-i]

	community := make([]int, sdk.BoardSize)
	for k := range community {
		community[k] = sdk.NoCard
		if k < h.street.BoardSize() {
			community[k] = int(h.board[k])
		}
	}
	mine := make([]int, len(s.hole))
	for k, c := range s.hole {
		mine[k] = int(c)
	}

	return sdk.Request{
		Observation: sdk.Observation{
			Street:           h.street,
			ActingAgent:      i,
			MyCards:          mine,
			CommunityCards:   community,
			MyBet:            s.bet,
			OppBet:           o.bet,
			Chips:            h.stack() - s.bet,
			OppLastAction:    o.lastAction,
			OppDiscardedCard: o.discarded,
			OppDrawnCard:     sdk.NoCard,
			MyDiscardedCard:  s.discarded,
			MyDrawnCard:      s.drawn,
			MinRaise:         minRaise,
			MaxRaise:         maxRaise,
			ValidActions:     legal,
		},
		Info: sdk.Info{
			HandNumber: h.number,
			OppChips:   h.stack() - o.bet,
			Pot:        s.bet + o.bet,
			CurrentBet: max(s.bet, o.bet),
		},
	}
}

// settle pays the pot. The winner takes the loser's bet.
func (h *hand) settle() {
	a, b := h.seats[0], h.seats[1]
	h.outcome.Pot = a.bet + b.bet
	h.outcome.Street = h.street

	winner := -1
	if h.folded >= 0 {
		winner = 1 - h.folded
	} else {
		h.outcome.Showdown = true
		board := h.board[:h.street.BoardSize()]
		switch poker.CompareHands(poker.EvaluateCards(a.hole, board), poker.EvaluateCards(b.hole, board)) {
		case -1:
			winner = 0
		case 1:
			winner = 1
		}
	}

	h.outcome.Winner = winner
	if winner < 0 {
		// bets are equal at showdown, so a split returns them
		return
	}
	loser := h.seats[1-winner]
	h.outcome.Rewards[winner] = float64(loser.bet)
	h.outcome.Rewards[1-winner] = -float64(loser.bet)
}

func actionLabel(a sdk.Action) string {
	return strings.ToUpper(a.String())
}
