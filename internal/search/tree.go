package search

import (
	"math"
	rand "math/rand/v2"

	"github.com/lox/discardbot/sdk"
)

// noParent marks the root.
const noParent = -1

type node struct {
	parent   int
	children []int
	visits   int
	total    float64
	untried  []sdk.Action
	action   sdk.Action
	state    State
}

// Tree is an arena of search nodes addressed by index. The root is index 0.
type Tree struct {
	cfg   Config
	nodes []node
}

// NewTree creates a tree holding only the root.
func NewTree(root State, cfg Config) *Tree {
	t := &Tree{cfg: cfg}
	t.nodes = append(t.nodes, t.newNode(noParent, sdk.ActionFold, root))
	return t
}

// untried actions are fixed at construction and popped from the end.
func (t *Tree) newNode(parent int, action sdk.Action, s State) node {
	return node{
		parent:  parent,
		action:  action,
		state:   s,
		untried: s.Actions(),
	}
}

// Len is the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Parent returns the parent index, -1 for the root.
func (t *Tree) Parent(i int) int { return t.nodes[i].parent }

// Children returns child indices in insertion order.
func (t *Tree) Children(i int) []int { return t.nodes[i].children }

// Visits returns how often a node has been backed up through.
func (t *Tree) Visits(i int) int { return t.nodes[i].visits }

// TotalReward is the sum of backed up results.
func (t *Tree) TotalReward(i int) float64 { return t.nodes[i].total }

// Action is the action that produced the node.
func (t *Tree) Action(i int) sdk.Action { return t.nodes[i].action }

// State is the node's hypothetical state.
func (t *Tree) State(i int) State { return t.nodes[i].state }

// Untried returns the actions not yet expanded.
func (t *Tree) Untried(i int) []sdk.Action { return t.nodes[i].untried }

func (t *Tree) terminal(i int) bool { return t.nodes[i].state.Terminated }

func (t *Tree) fullyExpanded(i int) bool { return len(t.nodes[i].untried) == 0 }

// AddChild attaches a child reached by action and returns its index.
func (t *Tree) AddChild(parent int, action sdk.Action, s State) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, t.newNode(parent, action, s))
	t.nodes[parent].children = append(t.nodes[parent].children, idx)
	return idx
}

// UCT scores child i for selection. Unvisited children score +Inf.
func (t *Tree) UCT(i int) float64 {
	n := t.nodes[i]
	if n.visits == 0 {
		return math.Inf(1)
	}
	parentVisits := t.nodes[n.parent].visits
	mean := n.total / float64(n.visits)
	return mean + t.cfg.Exploration*math.Sqrt(math.Log(float64(parentVisits))/float64(n.visits))
}

// BestUCTChild returns the child with the highest UCT score. Ties, including
// between several unvisited children, go to the earliest child. It returns
// -1 when the node has no children.
func (t *Tree) BestUCTChild(i int) int {
	best, bestScore := -1, math.Inf(-1)
	for _, c := range t.nodes[i].children {
		if score := t.UCT(c); best < 0 || score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

// Select descends from the root through fully expanded, non-terminal nodes.
func (t *Tree) Select() int {
	i := 0
	for !t.terminal(i) && t.fullyExpanded(i) {
		next := t.BestUCTChild(i)
		if next < 0 {
			break
		}
		i = next
	}
	return i
}

// Expand pops the last untried action of a non-terminal node and attaches
// the resulting child. Terminal and fully expanded nodes are returned as is.
func (t *Tree) Expand(i int) int {
	n := &t.nodes[i]
	if n.state.Terminated || len(n.untried) == 0 {
		return i
	}
	last := len(n.untried) - 1
	action := n.untried[last]
	n.untried = n.untried[:last]
	return t.AddChild(i, action, n.state.Apply(action, t.cfg))
}

// Rollout plays up to RolloutDepth uniformly random legal actions from s
// and scores where it ends up.
func (t *Tree) Rollout(s State, rng *rand.Rand) float64 {
	for range t.cfg.RolloutDepth {
		actions := s.Actions()
		if len(actions) == 0 {
			break
		}
		s = s.Apply(actions[rng.IntN(len(actions))], t.cfg)
	}
	return s.Evaluate(t.cfg)
}

// Backpropagate adds one visit and result to i and every ancestor.
func (t *Tree) Backpropagate(i int, result float64) {
	for ; i != noParent; i = t.nodes[i].parent {
		t.nodes[i].visits++
		t.nodes[i].total += result
	}
}

// BestChild returns the root child with the most visits, the earliest on
// ties, or the root itself when nothing was expanded.
func (t *Tree) BestChild() int {
	best := 0
	bestVisits := -1
	for _, c := range t.nodes[0].children {
		if v := t.nodes[c].visits; v > bestVisits {
			best, bestVisits = c, v
		}
	}
	return best
}
