package compression_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/harshithgowdakt/rasterpack/internal/compression"
	"github.com/stretchr/testify/require"
)

func allCodecs() []compression.Codec {
	return []compression.Codec{
		&compression.NoneCodec{},
		&compression.LZ4Codec{},
		&compression.ZstdCodec{},
		&compression.EntropyCodec{},
	}
}

func TestBlockRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	noise := make([]byte, 4096)
	rng.Read(noise)
	inputs := [][]byte{
		{},
		[]byte("x"),
		bytes.Repeat([]byte("water"), 2000),
		noise,
	}

	for _, codec := range allCodecs() {
		for _, in := range inputs {
			block, err := compression.CompressBlock(codec, in)
			require.NoError(t, err, codec.Name())

			h, err := compression.ReadBlockHeader(block)
			require.NoError(t, err)
			require.Equal(t, codec.MethodByte(), h.Method)
			require.Equal(t, uint32(len(block)), h.CompressedTotal)
			require.Equal(t, uint32(len(in)), h.UncompressedSize)

			out, err := compression.DecompressBlock(block)
			require.NoError(t, err, codec.Name())
			require.Equal(t, len(in), len(out), codec.Name())
			require.True(t, bytes.Equal(in, out), codec.Name())
		}
	}
}

func TestRepetitiveDataShrinks(t *testing.T) {
	in := bytes.Repeat([]byte{0, 0, 0, 0, 1}, 10000)
	for _, codec := range allCodecs() {
		if codec.MethodByte() == compression.MethodNone {
			continue
		}
		block, err := compression.CompressBlock(codec, in)
		require.NoError(t, err)
		require.Less(t, len(block), len(in)/2, codec.Name())
	}
}

func TestDecompressBlockErrors(t *testing.T) {
	_, err := compression.DecompressBlock([]byte{0x82, 1})
	require.Error(t, err)

	block, err := compression.CompressBlock(&compression.LZ4Codec{}, []byte("hello hello hello"))
	require.NoError(t, err)
	_, err = compression.DecompressBlock(block[:len(block)-1])
	require.Error(t, err)

	block[0] = 0x7F
	_, err = compression.DecompressBlock(block)
	require.Error(t, err)
}

func TestNoneCodecSizeMismatch(t *testing.T) {
	block, err := compression.CompressBlock(&compression.NoneCodec{}, []byte("channel"))
	require.NoError(t, err)
	// Declare one byte more than the block holds.
	block[5]++
	_, err = compression.DecompressBlock(block)
	require.Error(t, err)
}

func TestParseCodec(t *testing.T) {
	for _, codec := range allCodecs() {
		parsed, err := compression.ParseCodec(codec.Name())
		require.NoError(t, err)
		require.Equal(t, codec.MethodByte(), parsed.MethodByte())

		byMethod, err := compression.CodecForMethod(codec.MethodByte())
		require.NoError(t, err)
		require.Equal(t, codec.Name(), byMethod.Name())
	}
	_, err := compression.ParseCodec("brotli")
	require.Error(t, err)
}
