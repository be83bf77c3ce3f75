package model

import (
	"fmt"
	"sort"
)

// TreeParams bounds regression tree growth.
type TreeParams struct {
	MaxDepth int `json:"max_depth"`
	MinLeaf  int `json:"min_leaf"`
}

// DefaultTreeParams returns the depth and leaf size used by the trainer.
func DefaultTreeParams() TreeParams {
	return TreeParams{MaxDepth: 8, MinLeaf: 5}
}

// Node is one tree node. Leaves have Feature -1.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value"`
}

// Tree is a CART regression tree stored as a flat node list rooted at 0.
type Tree struct {
	Features int        `json:"features"`
	Params   TreeParams `json:"params"`
	Nodes    []Node     `json:"nodes"`
}

// FitTree grows a tree by greedy variance reduction.
func FitTree(X [][]float64, y []float64, p TreeParams) (*Tree, error) {
	d, err := dims(X)
	if err != nil {
		return nil, err
	}
	if len(y) != len(X) {
		return nil, fmt.Errorf("%w: %d targets for %d rows", ErrShapeMismatch, len(y), len(X))
	}
	if p.MaxDepth < 0 || p.MinLeaf < 1 {
		return nil, fmt.Errorf("invalid tree params depth=%d leaf=%d", p.MaxDepth, p.MinLeaf)
	}
	t := &Tree{Features: d, Params: p}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	g := grower{X: X, y: y, p: p, tree: t}
	g.grow(idx, 0)
	return t, nil
}

type grower struct {
	X    [][]float64
	y    []float64
	p    TreeParams
	tree *Tree
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

func (g *grower) grow(idx []int, depth int) int {
	var sum float64
	for _, i := range idx {
		sum += g.y[i]
	}
	id := len(g.tree.Nodes)
	g.tree.Nodes = append(g.tree.Nodes, Node{Feature: -1, Value: sum / float64(len(idx))})

	if depth >= g.p.MaxDepth || len(idx) < 2*g.p.MinLeaf {
		return id
	}
	best, ok := g.bestSplit(idx)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range idx {
		if g.X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := g.grow(left, depth+1)
	r := g.grow(right, depth+1)
	n := &g.tree.Nodes[id]
	n.Feature, n.Threshold, n.Left, n.Right = best.feature, best.threshold, l, r
	return id
}

// bestSplit scans every feature for the threshold with the largest drop in
// squared error. Ties keep the lowest feature index.
func (g *grower) bestSplit(idx []int) (split, bool) {
	n := len(idx)
	var total, totalSq float64
	for _, i := range idx {
		total += g.y[i]
		totalSq += g.y[i] * g.y[i]
	}
	parent := totalSq - total*total/float64(n)

	best := split{feature: -1}
	order := make([]int, n)
	for f := 0; f < len(g.X[idx[0]]); f++ {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool { return g.X[order[a]][f] < g.X[order[b]][f] })

		var ls, lsq float64
		for k := 0; k < n-1; k++ {
			yi := g.y[order[k]]
			ls += yi
			lsq += yi * yi
			nl := k + 1
			nr := n - nl
			if nl < g.p.MinLeaf || nr < g.p.MinLeaf {
				continue
			}
			lo, hi := g.X[order[k]][f], g.X[order[k+1]][f]
			if lo == hi {
				continue
			}
			rs, rsq := total-ls, totalSq-lsq
			sse := (lsq - ls*ls/float64(nl)) + (rsq - rs*rs/float64(nr))
			if gain := parent - sse; gain > best.gain+1e-12 {
				best = split{feature: f, threshold: (lo + hi) / 2, gain: gain}
			}
		}
	}
	return best, best.feature >= 0
}

func (t *Tree) Name() string { return KindTree }
func (t *Tree) Dims() int    { return t.Features }

func (t *Tree) Predict(x []float64) (float64, error) {
	if err := checkShape(t.Features, x); err != nil {
		return 0, err
	}
	if len(t.Nodes) == 0 {
		return 0, fmt.Errorf("%w: empty tree", ErrCorruptModel)
	}
	i := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return finite(n.Value)
		}
		if n.Feature >= len(x) || !t.child(n.Left) || !t.child(n.Right) {
			return 0, fmt.Errorf("%w: node %d", ErrCorruptModel, i)
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return 0, fmt.Errorf("%w: tree has a cycle", ErrCorruptModel)
}

func (t *Tree) child(i int) bool { return i > 0 && i < len(t.Nodes) }

// validate checks the node layout FitTree produces: a non-empty list whose
// split nodes test an existing feature and point forward to later nodes.
func (t *Tree) validate() error {
	if t.Features < 0 {
		return fmt.Errorf("%w: %d features", ErrCorruptModel, t.Features)
	}
	if len(t.Nodes) == 0 {
		return fmt.Errorf("%w: empty tree", ErrCorruptModel)
	}
	for i, n := range t.Nodes {
		if n.Feature < 0 {
			continue
		}
		if n.Feature >= t.Features {
			return fmt.Errorf("%w: node %d splits on feature %d of %d", ErrCorruptModel, i, n.Feature, t.Features)
		}
		if n.Left <= i || n.Right <= i || !t.child(n.Left) || !t.child(n.Right) {
			return fmt.Errorf("%w: node %d has children %d and %d", ErrCorruptModel, i, n.Left, n.Right)
		}
	}
	return nil
}
