package search

import (
	"math"
	"testing"

	"github.com/lox/discardbot/internal/randutil"
	"github.com/lox/discardbot/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rootState() State {
	return State{
		MyCards:      []int{26, 7},
		Chips:        90,
		OppChips:     80,
		Pot:          20,
		MyBet:        2,
		OppBet:       6,
		MinRaise:     4,
		MaxRaise:     80,
		Legal:        sdk.Legal(sdk.ActionFold, sdk.ActionRaise, sdk.ActionCall),
		HandStrength: 0.5,
	}
}

func TestBackpropagateUpdatesEveryAncestor(t *testing.T) {
	t.Parallel()
	rng := randutil.New(17)
	cfg := DefaultConfig()

	for trial := range 50 {
		tree := NewTree(rootState(), cfg)
		// grow a random shape
		for range 1 + rng.IntN(30) {
			parent := rng.IntN(tree.Len())
			tree.AddChild(parent, sdk.ActionCall, rootState())
		}

		leaf := rng.IntN(tree.Len())
		var path []int
		for i := leaf; i != -1; i = tree.Parent(i) {
			path = append(path, i)
		}

		beforeVisits := make([]int, tree.Len())
		beforeTotal := make([]float64, tree.Len())
		for i := range tree.Len() {
			beforeVisits[i], beforeTotal[i] = tree.Visits(i), tree.TotalReward(i)
		}

		r := rng.Float64()*20 - 10
		tree.Backpropagate(leaf, r)

		onPath := map[int]bool{}
		for _, i := range path {
			onPath[i] = true
		}
		for i := range tree.Len() {
			if onPath[i] {
				assert.Equal(t, beforeVisits[i]+1, tree.Visits(i), "trial %d node %d", trial, i)
				assert.InDelta(t, beforeTotal[i]+r, tree.TotalReward(i), 1e-9)
			} else {
				assert.Equal(t, beforeVisits[i], tree.Visits(i))
				assert.Equal(t, beforeTotal[i], tree.TotalReward(i))
			}
		}
		assert.Equal(t, 0, path[len(path)-1], "path ends at the root")
	}
}

func TestUCTPrefersUnvisitedChildren(t *testing.T) {
	t.Parallel()
	tree := NewTree(rootState(), DefaultConfig())
	a := tree.AddChild(0, sdk.ActionFold, rootState())
	b := tree.AddChild(0, sdk.ActionRaise, rootState())
	c := tree.AddChild(0, sdk.ActionCall, rootState())

	// a is visited with a huge mean, b and c are unvisited
	tree.Backpropagate(a, 1000)
	assert.True(t, math.IsInf(tree.UCT(b), 1))
	assert.Equal(t, b, tree.BestUCTChild(0), "first unvisited child wins the tie")

	tree.Backpropagate(b, -5)
	assert.Equal(t, c, tree.BestUCTChild(0))

	tree.Backpropagate(c, -5)
	assert.Equal(t, a, tree.BestUCTChild(0))
}

func TestUCTFormula(t *testing.T) {
	t.Parallel()
	tree := NewTree(rootState(), DefaultConfig())
	a := tree.AddChild(0, sdk.ActionCall, rootState())
	b := tree.AddChild(0, sdk.ActionRaise, rootState())
	for range 3 {
		tree.Backpropagate(a, 2)
	}
	tree.Backpropagate(b, 1)

	want := 2 + 1.4*math.Sqrt(math.Log(4)/3)
	assert.InDelta(t, want, tree.UCT(a), 1e-9)
	assert.Equal(t, -1, tree.BestUCTChild(a), "leaf has no children")
}

func TestExpandPopsUntriedInStackOrder(t *testing.T) {
	t.Parallel()
	tree := NewTree(rootState(), DefaultConfig())
	require.Equal(t, []sdk.Action{sdk.ActionFold, sdk.ActionRaise, sdk.ActionCall}, tree.Untried(0))

	var order []sdk.Action
	for range 3 {
		child := tree.Expand(0)
		require.NotEqual(t, 0, child)
		order = append(order, tree.Action(child))
	}
	assert.Equal(t, []sdk.Action{sdk.ActionCall, sdk.ActionRaise, sdk.ActionFold}, order)
	assert.Empty(t, tree.Untried(0))
	assert.Equal(t, 0, tree.Expand(0), "fully expanded node is returned as is")
	assert.Equal(t, []int{1, 2, 3}, tree.Children(0))
}

func TestExpandTerminalNode(t *testing.T) {
	t.Parallel()
	s := rootState()
	s.Terminated = true
	tree := NewTree(s, DefaultConfig())
	assert.Equal(t, 0, tree.Expand(0))
	assert.Equal(t, 1, tree.Len())
}

func TestSelectDescendsFullyExpandedNodes(t *testing.T) {
	t.Parallel()
	s := rootState()
	s.Legal = sdk.Legal(sdk.ActionCall)
	tree := NewTree(s, DefaultConfig())

	assert.Equal(t, 0, tree.Select(), "root still has untried actions")
	child := tree.Expand(0)
	tree.Backpropagate(child, 1)
	assert.Equal(t, child, tree.Select())
}

func TestBestChild(t *testing.T) {
	t.Parallel()
	tree := NewTree(rootState(), DefaultConfig())
	assert.Equal(t, 0, tree.BestChild(), "no children returns the root")

	a := tree.AddChild(0, sdk.ActionFold, rootState())
	b := tree.AddChild(0, sdk.ActionCall, rootState())
	tree.Backpropagate(a, 0)
	tree.Backpropagate(b, 0)
	assert.Equal(t, a, tree.BestChild(), "ties go to the first child")

	tree.Backpropagate(b, 0)
	assert.Equal(t, b, tree.BestChild())
}

func TestRolloutStopsWhenTerminal(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	s := rootState()
	s.Legal = sdk.Legal(sdk.ActionFold)
	tree := NewTree(s, cfg)
	assert.Equal(t, cfg.FoldReward, tree.Rollout(s, randutil.New(1)))

	s.Legal = sdk.LegalActions{}
	assert.InDelta(t, s.Evaluate(cfg), tree.Rollout(s, randutil.New(1)), 1e-9, "no legal actions evaluates as-is")
}
