package compression

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdEncOnce sync.Once
	zstdEnc     *zstd.Encoder
	zstdEncErr  error

	zstdDecOnce sync.Once
	zstdDec     *zstd.Decoder
	zstdDecErr  error
)

// Encoders and decoders are safe for concurrent EncodeAll/DecodeAll calls,
// so one of each is shared by every ZstdCodec.
func sharedZstdEncoder() (*zstd.Encoder, error) {
	zstdEncOnce.Do(func() {
		zstdEnc, zstdEncErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	})
	return zstdEnc, zstdEncErr
}

func sharedZstdDecoder() (*zstd.Decoder, error) {
	zstdDecOnce.Do(func() {
		zstdDec, zstdDecErr = zstd.NewReader(nil)
	})
	return zstdDec, zstdDecErr
}

// ZstdCodec implements Zstandard frame compression.
type ZstdCodec struct{}

func (c *ZstdCodec) MethodByte() byte { return MethodZSTD }

func (c *ZstdCodec) Name() string { return "zstd" }

func (c *ZstdCodec) Compress(src []byte) ([]byte, error) {
	enc, err := sharedZstdEncoder()
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	return enc.EncodeAll(src, make([]byte, 0, len(src)/2)), nil
}

func (c *ZstdCodec) Decompress(src []byte, decompressedSize int) ([]byte, error) {
	dec, err := sharedZstdDecoder()
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	dst, err := dec.DecodeAll(src, make([]byte, 0, decompressedSize))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(dst) != decompressedSize {
		return nil, fmt.Errorf("zstd decompress: expected %d bytes, got %d", decompressedSize, len(dst))
	}
	return dst, nil
}
