package compression

import (
	"fmt"
	"strings"
)

// Codec compresses and decompresses stored channel blocks.
type Codec interface {
	// MethodByte returns the single-byte codec identifier.
	MethodByte() byte
	Name() string
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte, decompressedSize int) ([]byte, error)
}

// Method byte constants. None, LZ4 and ZSTD keep the ClickHouse values.
const (
	MethodNone    byte = 0x02
	MethodLZ4     byte = 0x82
	MethodZSTD    byte = 0x90
	MethodEntropy byte = 0xA0
)

// CodecForMethod returns the codec for a block's method byte.
func CodecForMethod(method byte) (Codec, error) {
	switch method {
	case MethodNone:
		return &NoneCodec{}, nil
	case MethodLZ4:
		return &LZ4Codec{}, nil
	case MethodZSTD:
		return &ZstdCodec{}, nil
	case MethodEntropy:
		return &EntropyCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown compression method: 0x%02x", method)
	}
}

// ParseCodec returns the codec with the given name (none, lz4, zstd, entropy).
func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "none":
		return &NoneCodec{}, nil
	case "lz4":
		return &LZ4Codec{}, nil
	case "zstd":
		return &ZstdCodec{}, nil
	case "entropy", "rle+huffman":
		return &EntropyCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
