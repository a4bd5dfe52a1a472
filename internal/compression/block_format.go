package compression

import (
	"encoding/binary"
	"fmt"
)

// Stored channel block format (ClickHouse layout without the CityHash checksum):
//   [method_byte (1)] [compressed_size_with_header (4 LE)] [uncompressed_size (4 LE)] [payload...]
//
// compressed_size_with_header includes the 9-byte header itself.

const HeaderSize = 9

// BlockHeader is the decoded header of a stored block.
type BlockHeader struct {
	Method           byte
	CompressedTotal  uint32
	UncompressedSize uint32
}

// CompressBlock compresses data and returns the full block (header + compressed payload).
func CompressBlock(codec Codec, data []byte) ([]byte, error) {
	compressed, err := codec.Compress(data)
	if err != nil {
		return nil, err
	}

	totalSize := HeaderSize + len(compressed)
	block := make([]byte, totalSize)

	block[0] = codec.MethodByte()
	binary.LittleEndian.PutUint32(block[1:5], uint32(totalSize))
	binary.LittleEndian.PutUint32(block[5:9], uint32(len(data)))
	copy(block[HeaderSize:], compressed)

	return block, nil
}

// DecompressBlock reads a block, validates its header and decompresses it
// with the codec named by the method byte.
func DecompressBlock(data []byte) ([]byte, error) {
	h, err := ReadBlockHeader(data)
	if err != nil {
		return nil, err
	}
	if int(h.CompressedTotal) > len(data) || h.CompressedTotal < HeaderSize {
		return nil, fmt.Errorf("compressed block size mismatch: header says %d, have %d",
			h.CompressedTotal, len(data))
	}

	codec, err := CodecForMethod(h.Method)
	if err != nil {
		return nil, err
	}
	return codec.Decompress(data[HeaderSize:h.CompressedTotal], int(h.UncompressedSize))
}

// ReadBlockHeader reads the header from the front of a block.
func ReadBlockHeader(data []byte) (BlockHeader, error) {
	if len(data) < HeaderSize {
		return BlockHeader{}, fmt.Errorf("compressed block too small: %d bytes", len(data))
	}
	return BlockHeader{
		Method:           data[0],
		CompressedTotal:  binary.LittleEndian.Uint32(data[1:5]),
		UncompressedSize: binary.LittleEndian.Uint32(data[5:9]),
	}, nil
}
