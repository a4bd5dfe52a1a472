package huffman

import (
	"bytes"
	"fmt"
	"io"

	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
	"github.com/harshithgowdakt/rasterpack/internal/sched"
	"github.com/icza/bitio"
)

// EncodedPayload is a packed bitstream. Data is zero-padded to a byte
// boundary; BitLength counts only the meaningful bits.
type EncodedPayload struct {
	Data      []byte
	BitLength uint64
}

// Pack appends the code of every symbol, most significant bit first, and pads
// the final byte with zero bits. A nil Yielder disables cooperative yielding.
func Pack(symbols []byte, m *EncodingMap, y *sched.Yielder) (*EncodedPayload, error) {
	var buf bytes.Buffer
	buf.Grow(int(m.EncodedBits/8) + 1)
	w := bitio.NewWriter(&buf)

	var bitLength uint64
	for i, sym := range symbols {
		y.Step()
		code := m.Lookup(sym)
		if code == nil {
			return nil, fmt.Errorf("%w: symbol %d at offset %d has no code", codecerr.ErrInvalidInput, sym, i)
		}
		if err := writeCode(w, code); err != nil {
			return nil, fmt.Errorf("packing symbol %d: %w", i, err)
		}
		bitLength += uint64(code.BitLength)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flushing bitstream: %w", err)
	}
	return &EncodedPayload{Data: buf.Bytes(), BitLength: bitLength}, nil
}

func writeCode(w *bitio.Writer, c *Code) error {
	full := c.BitLength / 8
	for i := 0; i < full; i++ {
		if err := w.WriteByte(c.Bits[i]); err != nil {
			return err
		}
	}
	if rem := c.BitLength % 8; rem > 0 {
		return w.WriteBits(uint64(c.Bits[full]>>uint(8-rem)), uint8(rem))
	}
	return nil
}

// Unpack walks the tree one bit at a time, emitting a symbol at each leaf and
// restarting from the root. It reads exactly bitLength bits; the padding after
// them is never interpreted. A nil Yielder disables cooperative yielding.
func Unpack(data []byte, bitLength uint64, root *Node, y *sched.Yielder) ([]byte, error) {
	if root == nil || root.IsLeaf() {
		return nil, fmt.Errorf("%w: tree has no codes", codecerr.ErrDecode)
	}
	if bitLength > uint64(len(data))*8 {
		return nil, fmt.Errorf("%w: bit length %d exceeds %d available bits",
			codecerr.ErrDecode, bitLength, uint64(len(data))*8)
	}

	r := bitio.NewReader(bytes.NewReader(data))
	out := make([]byte, 0, len(data))
	node := root
	for i := uint64(0); i < bitLength; i++ {
		y.Step()
		bit, err := r.ReadBool()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("%w: reading bit %d: %v", codecerr.ErrDecode, i, err)
		}
		if bit {
			node = node.Right
		} else {
			node = node.Left
		}
		if node == nil {
			return nil, fmt.Errorf("%w: bit %d leads outside the tree", codecerr.ErrDecode, i)
		}
		if node.IsLeaf() {
			out = append(out, node.Symbol)
			node = root
		}
	}
	if node != root {
		return nil, fmt.Errorf("%w: bitstream ends mid-code after %d bits", codecerr.ErrDecode, bitLength)
	}
	return out, nil
}
