package container_test

import (
	"encoding/binary"
	"testing"

	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
	"github.com/harshithgowdakt/rasterpack/internal/container"
	"github.com/harshithgowdakt/rasterpack/internal/entropy"
	"github.com/stretchr/testify/require"
)

func encodeBlock(t *testing.T, data string) *entropy.Block {
	t.Helper()
	block, _, err := entropy.Encode([]byte(data), nil)
	require.NoError(t, err)
	return block
}

func TestFrameLayout(t *testing.T) {
	block := encodeBlock(t, "AABBBBBAAABCCAAD")
	h := container.Header{Version: container.Version, Width: 300, Height: 2}
	data := container.Frame(h, block)

	require.Len(t, data, container.HeaderSize+len(block.Tree)+4+len(block.Payload))
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[0:2]))
	require.Equal(t, uint16(300), binary.LittleEndian.Uint16(data[2:4]))
	require.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[4:6]))
	require.Equal(t, block.Tree, data[6:6+len(block.Tree)])

	off := 6 + len(block.Tree)
	require.Equal(t, block.BitLength, binary.LittleEndian.Uint32(data[off:off+4]))
	require.Equal(t, block.Payload, data[off+4:])
}

func TestParseRoundTrip(t *testing.T) {
	block := encodeBlock(t, "raster raster raster")
	c := &container.Container{
		Header: container.Header{Version: container.Version, Width: 4, Height: 5},
		Block:  block,
	}
	data := c.Bytes()
	require.Len(t, data, c.Size())

	parsed, err := container.Parse(data)
	require.NoError(t, err)
	require.Equal(t, c.Header, parsed.Header)
	require.Equal(t, block, parsed.Block)

	out, err := entropy.Decode(parsed.Block, len("raster raster raster"), nil)
	require.NoError(t, err)
	require.Equal(t, "raster raster raster", string(out))
}

func TestParseErrors(t *testing.T) {
	_, err := container.Parse([]byte{1, 0, 2})
	require.ErrorIs(t, err, codecerr.ErrDecode)

	data := container.Frame(container.Header{Version: 9, Width: 1, Height: 1}, encodeBlock(t, "x"))
	_, err = container.Parse(data)
	require.ErrorIs(t, err, codecerr.ErrDecode)

	data = container.Frame(container.Header{Version: container.Version, Width: 1, Height: 1}, encodeBlock(t, "x"))
	_, err = container.Parse(data[:container.HeaderSize+1])
	require.ErrorIs(t, err, codecerr.ErrDecode)
}
