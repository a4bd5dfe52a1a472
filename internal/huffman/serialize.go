package huffman

import (
	"bytes"
	"fmt"

	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
	"github.com/icza/bitio"
)

// Serialized tree layout, pre-order, bit-packed MSB first:
//
//	internal node: 0, then left subtree, then right subtree
//	leaf:          1, then the 8-bit symbol
//
// The final byte is zero-padded. A reader knows the tree is complete after
// visiting 2*leaves-1 nodes. A single-symbol tree is written as its lone leaf
// and re-wrapped on read.

const (
	bitInternal = false
	bitLeaf     = true
)

// SerializeTree writes the tree structure and symbol placement. Frequencies
// are not kept.
func SerializeTree(root *Node) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil tree", codecerr.ErrBuild)
	}
	if isWrapper(root) {
		root = root.Left
	}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.IsLeaf() {
			if err := w.WriteBool(bitLeaf); err != nil {
				return nil, err
			}
			if err := w.WriteByte(n.Symbol); err != nil {
				return nil, err
			}
			continue
		}
		if n.Left == nil || n.Right == nil {
			return nil, fmt.Errorf("%w: internal node with a single child below the root", codecerr.ErrBuild)
		}
		if err := w.WriteBool(bitInternal); err != nil {
			return nil, err
		}
		stack = append(stack, n.Right, n.Left)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeTree rebuilds a tree from the front of data and returns it along
// with the number of bytes the serialized tree occupied.
func DeserializeTree(data []byte) (*Node, int, error) {
	r := bitio.NewReader(bytes.NewReader(data))
	var bitsRead int

	readNode := func() (*Node, bool, error) {
		isLeaf, err := r.ReadBool()
		if err != nil {
			return nil, false, fmt.Errorf("%w: tree truncated after %d bits", codecerr.ErrDecode, bitsRead)
		}
		bitsRead++
		if !isLeaf {
			return &Node{}, false, nil
		}
		sym, err := r.ReadByte()
		if err != nil {
			return nil, false, fmt.Errorf("%w: leaf symbol truncated after %d bits", codecerr.ErrDecode, bitsRead)
		}
		bitsRead += 8
		return &Node{Symbol: sym, order: int(sym)}, true, nil
	}

	root, isLeaf, err := readNode()
	if err != nil {
		return nil, 0, err
	}
	if isLeaf {
		return &Node{Left: root, order: 256}, (bitsRead + 7) / 8, nil
	}
	root.order = 256

	seen := make(map[byte]bool)
	next := 257
	// Internal nodes still waiting for a child; the top is the next parent.
	stack := []*Node{root}
	for len(stack) > 0 {
		parent := stack[len(stack)-1]
		n, isLeaf, err := readNode()
		if err != nil {
			return nil, 0, err
		}
		if parent.Left == nil {
			parent.Left = n
		} else {
			parent.Right = n
			stack = stack[:len(stack)-1]
		}

		if !isLeaf {
			n.order = next
			next++
			stack = append(stack, n)
			continue
		}
		if seen[n.Symbol] {
			return nil, 0, fmt.Errorf("%w: symbol %d appears twice in tree", codecerr.ErrDecode, n.Symbol)
		}
		seen[n.Symbol] = true
	}
	return root, (bitsRead + 7) / 8, nil
}

// isWrapper reports whether n is the single-child root of a one-symbol tree.
func isWrapper(n *Node) bool {
	return n.Left != nil && n.Right == nil && n.Left.IsLeaf()
}
