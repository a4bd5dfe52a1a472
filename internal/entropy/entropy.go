// Package entropy runs the two lossless stages of the raster codec, run-length
// encoding followed by Huffman coding, and frames their output.
//
// Block layout:
//
//	[serialized tree (self-delimiting)] [bit_length (4 LE)] [payload...]
package entropy

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
	"github.com/harshithgowdakt/rasterpack/internal/huffman"
	"github.com/harshithgowdakt/rasterpack/internal/rle"
	"github.com/harshithgowdakt/rasterpack/internal/sched"
)

// BitLengthSize is the byte width of the bit length field.
const BitLengthSize = 4

// Block is one entropy-coded stream.
type Block struct {
	Tree      []byte
	BitLength uint32
	Payload   []byte
}

// Stats describes the sizes produced by each stage of Encode.
type Stats struct {
	RawBytes      int
	RLEBytes      int
	Symbols       int
	MaxCodeLength int
	TreeBytes     int
	PayloadBytes  int
	BitLength     uint64
}

// Encode run-length encodes src, then Huffman codes the run-length records.
// A nil Yielder disables cooperative yielding.
func Encode(src []byte, y *sched.Yielder) (*Block, *Stats, error) {
	runs, err := rle.EncodeBytes(src, y)
	if err != nil {
		return nil, nil, err
	}

	table, err := huffman.BuildFrequencyTable(runs, y)
	if err != nil {
		return nil, nil, err
	}
	root, err := huffman.BuildTree(table, y)
	if err != nil {
		return nil, nil, err
	}
	codes, err := huffman.BuildEncodingMap(root)
	if err != nil {
		return nil, nil, err
	}
	packed, err := huffman.Pack(runs, codes, y)
	if err != nil {
		return nil, nil, err
	}
	if packed.BitLength > math.MaxUint32 {
		return nil, nil, fmt.Errorf("%w: payload of %d bits does not fit the bit length field",
			codecerr.ErrOversize, packed.BitLength)
	}
	tree, err := huffman.SerializeTree(root)
	if err != nil {
		return nil, nil, err
	}

	block := &Block{Tree: tree, BitLength: uint32(packed.BitLength), Payload: packed.Data}
	stats := &Stats{
		RawBytes:      len(src),
		RLEBytes:      len(runs),
		Symbols:       codes.Symbols,
		MaxCodeLength: codes.MaxBitLength,
		TreeBytes:     len(tree),
		PayloadBytes:  len(packed.Data),
		BitLength:     packed.BitLength,
	}
	return block, stats, nil
}

// Decode reverses Encode. Output longer than limit bytes fails with
// ErrOversize.
func Decode(b *Block, limit int, y *sched.Yielder) ([]byte, error) {
	root, _, err := huffman.DeserializeTree(b.Tree)
	if err != nil {
		return nil, fmt.Errorf("reading tree: %w", err)
	}
	runs, err := huffman.Unpack(b.Payload, uint64(b.BitLength), root, y)
	if err != nil {
		return nil, fmt.Errorf("unpacking payload: %w", err)
	}
	out, err := rle.DecodeBytes(runs, limit)
	if err != nil {
		return nil, fmt.Errorf("expanding runs: %w", err)
	}
	return out, nil
}

// Size returns the serialized size of the block.
func (b *Block) Size() int {
	return len(b.Tree) + BitLengthSize + len(b.Payload)
}

// AppendTo appends the serialized block to dst.
func (b *Block) AppendTo(dst []byte) []byte {
	dst = append(dst, b.Tree...)
	dst = binary.LittleEndian.AppendUint32(dst, b.BitLength)
	return append(dst, b.Payload...)
}

// MarshalBinary returns the serialized block.
func (b *Block) MarshalBinary() ([]byte, error) {
	return b.AppendTo(make([]byte, 0, b.Size())), nil
}

// ReadBlock parses a serialized block. Everything after the bit length field
// is payload.
func ReadBlock(data []byte) (*Block, error) {
	_, treeLen, err := huffman.DeserializeTree(data)
	if err != nil {
		return nil, fmt.Errorf("reading tree: %w", err)
	}
	rest := data[treeLen:]
	if len(rest) < BitLengthSize {
		return nil, fmt.Errorf("%w: bit length field truncated: have %d bytes", codecerr.ErrDecode, len(rest))
	}
	bitLength := binary.LittleEndian.Uint32(rest[:BitLengthSize])
	payload := rest[BitLengthSize:]
	if uint64(bitLength) > uint64(len(payload))*8 {
		return nil, fmt.Errorf("%w: bit length %d exceeds payload of %d bytes",
			codecerr.ErrDecode, bitLength, len(payload))
	}

	return &Block{
		Tree:      append([]byte(nil), data[:treeLen]...),
		BitLength: bitLength,
		Payload:   append([]byte(nil), payload...),
	}, nil
}
