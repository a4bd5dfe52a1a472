package compression

import (
	"fmt"

	"github.com/harshithgowdakt/rasterpack/internal/entropy"
)

// EntropyCodec stores blocks with the raster codec's own run-length and
// Huffman stages.
type EntropyCodec struct{}

func (c *EntropyCodec) MethodByte() byte { return MethodEntropy }

func (c *EntropyCodec) Name() string { return "entropy" }

func (c *EntropyCodec) Compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}
	block, _, err := entropy.Encode(src, nil)
	if err != nil {
		return nil, fmt.Errorf("entropy compress: %w", err)
	}
	return block.MarshalBinary()
}

func (c *EntropyCodec) Decompress(src []byte, decompressedSize int) ([]byte, error) {
	if decompressedSize == 0 {
		return []byte{}, nil
	}
	block, err := entropy.ReadBlock(src)
	if err != nil {
		return nil, fmt.Errorf("entropy decompress: %w", err)
	}
	dst, err := entropy.Decode(block, decompressedSize, nil)
	if err != nil {
		return nil, fmt.Errorf("entropy decompress: %w", err)
	}
	if len(dst) != decompressedSize {
		return nil, fmt.Errorf("entropy decompress: expected %d bytes, got %d", decompressedSize, len(dst))
	}
	return dst, nil
}
