package huffman

import (
	"fmt"
	"strings"

	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
)

// Code is the prefix code assigned to one symbol. Bits holds BitLength
// meaningful bits, most significant bit of Bits[0] first. Codes can be as
// long as 255 bits for skewed 256-symbol trees, so they are not kept in a
// fixed-width integer.
type Code struct {
	Symbol    byte
	BitLength int
	Bits      []byte
}

// Bit returns bit i of the code (0 is the first bit emitted).
func (c *Code) Bit(i int) byte {
	return (c.Bits[i/8] >> (7 - uint(i%8))) & 1
}

// String renders the code as a string of '0' and '1'.
func (c *Code) String() string {
	var sb strings.Builder
	sb.Grow(c.BitLength)
	for i := 0; i < c.BitLength; i++ {
		sb.WriteByte('0' + c.Bit(i))
	}
	return sb.String()
}

// EncodingMap maps every symbol of a tree to its code. It is built once per
// tree and never modified afterwards.
type EncodingMap struct {
	codes [256]*Code

	// EncodedBits is the payload size in bits implied by the leaf
	// frequencies (sum of frequency × bit length). Trees restored from
	// their serialized form carry no frequencies, so it is zero for them.
	EncodedBits uint64
	// Symbols is the number of symbols with a code.
	Symbols int
	// MaxBitLength is the longest code in the map.
	MaxBitLength int
}

// Lookup returns the code for sym, or nil if sym is not in the alphabet.
func (m *EncodingMap) Lookup(sym byte) *Code {
	return m.codes[sym]
}

// Codes returns all codes ordered by symbol value.
func (m *EncodingMap) Codes() []*Code {
	out := make([]*Code, 0, m.Symbols)
	for _, c := range m.codes {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

type codeFrame struct {
	node  *Node
	depth int
	bits  []byte
}

// BuildEncodingMap walks the tree depth-first; a left edge appends bit 0 and a
// right edge appends bit 1. Each leaf gets its path as code.
func BuildEncodingMap(root *Node) (*EncodingMap, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil tree", codecerr.ErrBuild)
	}
	if root.IsLeaf() {
		return nil, fmt.Errorf("%w: root leaf would have a zero-length code", codecerr.ErrBuild)
	}

	m := &EncodingMap{}
	stack := []codeFrame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.node.IsLeaf() {
			if m.codes[f.node.Symbol] != nil {
				return nil, fmt.Errorf("%w: symbol %d appears twice", codecerr.ErrBuild, f.node.Symbol)
			}
			m.codes[f.node.Symbol] = &Code{Symbol: f.node.Symbol, BitLength: f.depth, Bits: f.bits}
			m.EncodedBits += f.node.Frequency * uint64(f.depth)
			m.Symbols++
			if f.depth > m.MaxBitLength {
				m.MaxBitLength = f.depth
			}
			continue
		}
		if f.node.Right != nil {
			stack = append(stack, codeFrame{node: f.node.Right, depth: f.depth + 1, bits: appendBit(f.bits, f.depth, 1)})
		}
		if f.node.Left != nil {
			stack = append(stack, codeFrame{node: f.node.Left, depth: f.depth + 1, bits: appendBit(f.bits, f.depth, 0)})
		}
	}
	return m, nil
}

// appendBit returns a fresh copy of bits with bit number pos set to bit.
func appendBit(bits []byte, pos int, bit byte) []byte {
	out := make([]byte, pos/8+1)
	copy(out, bits)
	if bit != 0 {
		out[pos/8] |= 0x80 >> uint(pos%8)
	}
	return out
}
