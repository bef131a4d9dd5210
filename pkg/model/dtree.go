package model

import (
	"github.com/tdarei/starisdons-sub013/pkg/dataset"
)

// ---------------------------
// Types
// ---------------------------

// Node is a decision tree node: either *Leaf or *Internal.
type Node interface {
	isNode()
}

// Leaf holds the predicted target value.
type Leaf struct {
	Value any `json:"value" yaml:"value"`
}

// Internal routes a record by one feature. Numeric splits send values
// <= SplitValue left; categorical splits send values equal to SplitValue left.
type Internal struct {
	Feature    string `json:"feature" yaml:"feature"`
	SplitValue any    `json:"splitValue" yaml:"splitValue"`
	Left       Node   `json:"left" yaml:"left"`
	Right      Node   `json:"right" yaml:"right"`
}

func (*Leaf) isNode()     {}
func (*Internal) isNode() {}

// DecisionTree is an immutable CART tree grown over one bootstrap sample and
// one feature subset.
type DecisionTree struct {
	MaxDepth int      `json:"maxDepth" yaml:"maxDepth"`
	Features []string `json:"features" yaml:"features"`
	Root     Node     `json:"root" yaml:"root"`
}

// ---------------------------
// Prediction
// ---------------------------

// Predict walks the tree for input and returns the leaf value.
func (t *DecisionTree) Predict(input dataset.Record) any {
	node := t.Root
	for {
		switch n := node.(type) {
		case *Leaf:
			return n.Value
		case *Internal:
			if goesLeft(input.Get(n.Feature), n.SplitValue) {
				node = n.Left
			} else {
				node = n.Right
			}
		default:
			return nil
		}
	}
}

// goesLeft is the routing rule shared by training and prediction. A numeric
// split takes numeric values <= split; a categorical split takes values equal
// to split. Missing (nil) or type-mismatched values always go right.
func goesLeft(v, split any) bool {
	if s, ok := split.(float64); ok {
		f, ok := v.(float64)
		return ok && f <= s
	}
	return v != nil && v == split
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *DecisionTree) Depth() int { return depthOf(t.Root) }

// Leaves returns the number of leaves.
func (t *DecisionTree) Leaves() int { return leavesOf(t.Root) }

func (t *DecisionTree) clone() *DecisionTree {
	if t == nil {
		return nil
	}
	return &DecisionTree{
		MaxDepth: t.MaxDepth,
		Features: append([]string(nil), t.Features...),
		Root:     cloneNode(t.Root),
	}
}

// cloneNode copies the tree structure. Leaf and split values are normalized
// scalars and are shared.
func cloneNode(n Node) Node {
	switch x := n.(type) {
	case *Leaf:
		return &Leaf{Value: x.Value}
	case *Internal:
		return &Internal{
			Feature:    x.Feature,
			SplitValue: x.SplitValue,
			Left:       cloneNode(x.Left),
			Right:      cloneNode(x.Right),
		}
	}
	return n
}

func depthOf(n Node) int {
	in, ok := n.(*Internal)
	if !ok {
		return 0
	}
	return 1 + max(depthOf(in.Left), depthOf(in.Right))
}

func leavesOf(n Node) int {
	in, ok := n.(*Internal)
	if !ok {
		return 1
	}
	return leavesOf(in.Left) + leavesOf(in.Right)
}

// ---------------------------
// Internal builders & helpers
// ---------------------------

// treeBuilder grows one tree. rows are indices into records and may repeat
// (bootstrap samples); targets[i] is the normalized target of records[i].
type treeBuilder struct {
	records  []dataset.Record
	targets  []any
	features []string
	maxDepth int
}

// A struct to hold the best split found so far.
type splitResult struct {
	score   float64
	feature string
	value   any
	found   bool
}

func (b *treeBuilder) build(rows []int) *DecisionTree {
	return &DecisionTree{
		MaxDepth: b.maxDepth,
		Features: b.features,
		Root:     b.buildNode(rows, 0),
	}
}

func (b *treeBuilder) buildNode(rows []int, depth int) Node {
	if len(rows) == 0 || depth >= b.maxDepth {
		return &Leaf{Value: b.majority(rows)}
	}
	if b.isPure(rows) {
		return &Leaf{Value: b.targets[rows[0]]}
	}

	best := b.findBestSplit(rows)
	if !best.found {
		return &Leaf{Value: b.majority(rows)}
	}

	left := make([]int, 0, len(rows))
	right := make([]int, 0, len(rows))
	for _, r := range rows {
		if goesLeft(b.records[r].Get(best.feature), best.value) {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return &Internal{
		Feature:    best.feature,
		SplitValue: best.value,
		Left:       b.buildNode(left, depth+1),
		Right:      b.buildNode(right, depth+1),
	}
}

// findBestSplit scans every feature and every distinct observed value of it,
// in first-seen order, and keeps the split with the lowest size-weighted Gini
// impurity. Splits leaving one side empty are skipped; on equal scores the
// earlier candidate wins.
func (b *treeBuilder) findBestSplit(rows []int) splitResult {
	var best splitResult
	values := make([]any, len(rows))
	for _, f := range b.features {
		for i, r := range rows {
			values[i] = b.records[r].Get(f)
		}
		for _, candidate := range uniqueValues(values) {
			score, ok := b.splitScore(rows, values, candidate)
			if !ok {
				continue
			}
			if !best.found || score < best.score {
				best = splitResult{score: score, feature: f, value: candidate, found: true}
			}
		}
	}
	return best
}

// splitScore returns the weighted Gini impurity of splitting rows at candidate.
func (b *treeBuilder) splitScore(rows []int, values []any, candidate any) (float64, bool) {
	leftCounts := map[any]int{}
	rightCounts := map[any]int{}
	nLeft, nRight := 0, 0
	for i, r := range rows {
		if goesLeft(values[i], candidate) {
			leftCounts[b.targets[r]]++
			nLeft++
		} else {
			rightCounts[b.targets[r]]++
			nRight++
		}
	}
	if nLeft == 0 || nRight == 0 {
		return 0, false
	}
	n := float64(len(rows))
	return float64(nLeft)/n*giniFromCounts(leftCounts) + float64(nRight)/n*giniFromCounts(rightCounts), true
}

func (b *treeBuilder) isPure(rows []int) bool {
	first := b.targets[rows[0]]
	for _, r := range rows[1:] {
		if b.targets[r] != first {
			return false
		}
	}
	return true
}

func (b *treeBuilder) majority(rows []int) any {
	values := make([]any, len(rows))
	for i, r := range rows {
		values[i] = b.targets[r]
	}
	return majorityValue(values)
}

// uniqueValues returns the distinct non-nil values in first-seen order.
func uniqueValues(values []any) []any {
	seen := make(map[any]struct{}, len(values))
	out := make([]any, 0)
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// ---------------------------
// Utilities: impurity & voting
// ---------------------------

// CalculateGini returns 1 - Σ p_c² over the proportions of each distinct value.
// It is 0 for an empty or single-valued input.
func CalculateGini(values []any) float64 {
	counts := make(map[any]int)
	for _, v := range values {
		counts[v]++
	}
	return giniFromCounts(counts)
}

func giniFromCounts(counts map[any]int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 1.0
	for _, c := range counts {
		p := float64(c) / n
		res -= p * p
	}
	return res
}

// majorityValue returns the most frequent value, counting in a single pass:
// the leader changes only when another value strictly overtakes it, so ties go
// to the value that reached the winning count first. Nil for empty input.
func majorityValue(values []any) any {
	counts := make(map[any]int)
	var best any
	bestCount := 0
	for _, v := range values {
		counts[v]++
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
