package entropy_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
	"github.com/harshithgowdakt/rasterpack/internal/entropy"
	"github.com/harshithgowdakt/rasterpack/internal/sched"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	inputs := [][]byte{
		[]byte("A"),
		[]byte("AABBBBBAAABCCAAD"),
		bytes.Repeat([]byte{0}, 200000),
	}
	noisy := make([]byte, 5000)
	rng.Read(noisy)
	inputs = append(inputs, noisy)

	for _, in := range inputs {
		block, stats, err := entropy.Encode(in, sched.NewYielder())
		require.NoError(t, err)
		require.Equal(t, len(in), stats.RawBytes)
		require.Equal(t, len(block.Payload), stats.PayloadBytes)
		require.Equal(t, uint64(block.BitLength), stats.BitLength)

		out, err := entropy.Decode(block, len(in), nil)
		require.NoError(t, err)
		require.Equal(t, in, out)
	}
}

func TestLongRunCompresses(t *testing.T) {
	in := bytes.Repeat([]byte{9}, 100000)
	block, stats, err := entropy.Encode(in, nil)
	require.NoError(t, err)
	// Two records: 65535 and 34465, each 3 bytes.
	require.Equal(t, 6, stats.RLEBytes)
	require.Less(t, block.Size(), 32)
}

func TestEncodeEmpty(t *testing.T) {
	_, _, err := entropy.Encode(nil, nil)
	require.ErrorIs(t, err, codecerr.ErrInvalidInput)
}

func TestBlockSerialization(t *testing.T) {
	in := []byte("the quick brown fox jumps over the lazy dog")
	block, _, err := entropy.Encode(in, nil)
	require.NoError(t, err)

	data, err := block.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, block.Size())

	parsed, err := entropy.ReadBlock(data)
	require.NoError(t, err)
	require.Equal(t, block, parsed)

	out, err := entropy.Decode(parsed, len(in), nil)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestReadBlockTruncated(t *testing.T) {
	block, _, err := entropy.Encode([]byte("hello hello hello"), nil)
	require.NoError(t, err)
	data, err := block.MarshalBinary()
	require.NoError(t, err)

	_, err = entropy.ReadBlock(data[:len(block.Tree)+2])
	require.ErrorIs(t, err, codecerr.ErrDecode)

	_, err = entropy.ReadBlock(data[:len(data)-1])
	require.ErrorIs(t, err, codecerr.ErrDecode)
}

func TestDecodeLimit(t *testing.T) {
	in := bytes.Repeat([]byte{4}, 1000)
	block, _, err := entropy.Encode(in, nil)
	require.NoError(t, err)

	_, err = entropy.Decode(block, 999, nil)
	require.ErrorIs(t, err, codecerr.ErrOversize)
}
