package huffman

import (
	"container/heap"
	"fmt"

	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
	"github.com/harshithgowdakt/rasterpack/internal/sched"
)

// Node is a code tree node. A leaf has no children. Internal nodes built from
// a frequency table always have two children, except the wrapper of a
// single-symbol tree which has only Left.
type Node struct {
	Left      *Node
	Right     *Node
	Frequency uint64
	Symbol    byte

	// order breaks frequency ties: symbol value for leaves,
	// 256 + creation index for internal nodes.
	order int
}

// IsLeaf reports whether n carries a symbol.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// LeafCount returns the number of leaves under n.
func (n *Node) LeafCount() int {
	count := 0
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.IsLeaf() {
			count++
			continue
		}
		if cur.Right != nil {
			stack = append(stack, cur.Right)
		}
		if cur.Left != nil {
			stack = append(stack, cur.Left)
		}
	}
	return count
}

// nodeHeap is a min-heap keyed by (Frequency, order).
type nodeHeap []*Node

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].Frequency != h[j].Frequency {
		return h[i].Frequency < h[j].Frequency
	}
	return h[i].order < h[j].order
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(*Node)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// BuildTree builds a code tree from a frequency table.
//
// The two lowest nodes are combined repeatedly; the first one extracted
// becomes the right child and the second the left child. A table with a
// single entry yields a wrapper node whose only (left) child is the leaf, so
// that every code is at least one bit long. A nil Yielder disables
// cooperative yielding.
func BuildTree(table []FrequencyEntry, y *sched.Yielder) (*Node, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: empty frequency table", codecerr.ErrBuild)
	}
	if len(table) > 256 {
		return nil, fmt.Errorf("%w: %d symbols exceed the byte alphabet", codecerr.ErrBuild, len(table))
	}

	seen := make(map[byte]bool, len(table))
	h := make(nodeHeap, 0, len(table))
	for _, e := range table {
		if e.Frequency == 0 {
			return nil, fmt.Errorf("%w: symbol %d has zero frequency", codecerr.ErrBuild, e.Symbol)
		}
		if seen[e.Symbol] {
			return nil, fmt.Errorf("%w: duplicate symbol %d", codecerr.ErrBuild, e.Symbol)
		}
		seen[e.Symbol] = true
		h = append(h, &Node{Symbol: e.Symbol, Frequency: e.Frequency, order: int(e.Symbol)})
	}

	if len(h) == 1 {
		leaf := h[0]
		return &Node{Left: leaf, Frequency: leaf.Frequency, order: 256}, nil
	}

	heap.Init(&h)
	next := 256
	for h.Len() > 1 {
		y.Step()
		right := heap.Pop(&h).(*Node)
		left := heap.Pop(&h).(*Node)
		heap.Push(&h, &Node{
			Left:      left,
			Right:     right,
			Frequency: left.Frequency + right.Frequency,
			order:     next,
		})
		next++
	}
	return h[0], nil
}
