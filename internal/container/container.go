// Package container frames an entropy-coded raster for transport.
//
// Container layout (all integers little-endian):
//
//	[version (2)] [width (2)] [height (2)] [serialized tree] [bit_length (4)] [payload...]
package container

import (
	"encoding/binary"
	"fmt"

	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
	"github.com/harshithgowdakt/rasterpack/internal/entropy"
	"github.com/harshithgowdakt/rasterpack/internal/raster"
	"github.com/harshithgowdakt/rasterpack/internal/rle"
)

const (
	// HeaderSize is the fixed size of the container header.
	HeaderSize = 6
	// Version is the container format version written by Frame.
	Version uint16 = 1

	// maxTreeBytes bounds a serialized 256-leaf tree: 511 control bits
	// plus 256 symbols of 8 bits.
	maxTreeBytes = (2*256 - 1 + 256*8 + 7) / 8

	// MaxSize is the largest container the largest raster can produce:
	// every merged byte a separate run record, and a Huffman payload never
	// longer than the record bytes it codes.
	MaxSize = HeaderSize + maxTreeBytes + entropy.BitLengthSize +
		rle.RecordSize*(raster.MaxImageBytes+raster.MaxMaterialsBytes)
)

// Header describes the raster carried by a container.
type Header struct {
	Version uint16
	Width   uint16
	Height  uint16
}

// Container is a parsed container: header plus entropy block.
type Container struct {
	Header Header
	Block  *entropy.Block
}

// Size returns the framed size in bytes.
func (c *Container) Size() int {
	return HeaderSize + c.Block.Size()
}

// Frame concatenates the header and block into a freshly allocated buffer.
func Frame(h Header, b *entropy.Block) []byte {
	out := make([]byte, HeaderSize, HeaderSize+b.Size())
	putHeader(out, h)
	return b.AppendTo(out)
}

// Bytes returns the framed container.
func (c *Container) Bytes() []byte {
	return Frame(c.Header, c.Block)
}

func putHeader(dst []byte, h Header) {
	binary.LittleEndian.PutUint16(dst[0:2], h.Version)
	binary.LittleEndian.PutUint16(dst[2:4], h.Width)
	binary.LittleEndian.PutUint16(dst[4:6], h.Height)
}

// ReadHeader reads the fixed header at the start of data.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: container header truncated: %d bytes", codecerr.ErrDecode, len(data))
	}
	return Header{
		Version: binary.LittleEndian.Uint16(data[0:2]),
		Width:   binary.LittleEndian.Uint16(data[2:4]),
		Height:  binary.LittleEndian.Uint16(data[4:6]),
	}, nil
}

// Parse reads a framed container. Unknown versions and containers larger
// than MaxSize are rejected.
func Parse(data []byte) (*Container, error) {
	if len(data) > MaxSize {
		return nil, fmt.Errorf("%w: container of %d bytes, limit is %d", codecerr.ErrOversize, len(data), MaxSize)
	}
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: unsupported container version %d", codecerr.ErrDecode, h.Version)
	}
	block, err := entropy.ReadBlock(data[HeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("reading container body: %w", err)
	}
	return &Container{Header: h, Block: block}, nil
}
