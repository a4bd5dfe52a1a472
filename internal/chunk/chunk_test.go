package chunk_test

import (
	"math/rand"
	"testing"

	"github.com/harshithgowdakt/rasterpack/internal/chunk"
	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
	"github.com/stretchr/testify/require"
)

func TestSplitJoin(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		payload := make([]byte, rng.Intn(3000))
		rng.Read(payload)
		limit := 1 + rng.Intn(700)

		chunks, err := chunk.Split(payload, limit)
		require.NoError(t, err)
		require.Len(t, chunks, chunk.Count(len(payload), limit))
		for j, c := range chunks {
			if j < len(chunks)-1 {
				require.Len(t, c, limit)
			} else {
				require.NotEmpty(t, c)
				require.LessOrEqual(t, len(c), limit)
			}
		}
		require.Equal(t, payload, chunk.Join(chunks))
	}
}

func TestSplitExactMultiple(t *testing.T) {
	chunks, err := chunk.Split([]byte("abcdef"), 3)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("abc"), []byte("def")}, chunks)
}

func TestSplitLimitOne(t *testing.T) {
	chunks, err := chunk.Split([]byte("xyz"), 1)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("x"), []byte("y"), []byte("z")}, chunks)
}

func TestSplitEmpty(t *testing.T) {
	chunks, err := chunk.Split(nil, 10)
	require.NoError(t, err)
	require.Empty(t, chunks)
	require.Empty(t, chunk.Join(chunks))
}

func TestSplitInvalidLimit(t *testing.T) {
	_, err := chunk.Split([]byte("abc"), 0)
	require.ErrorIs(t, err, codecerr.ErrInvalidInput)
}

func TestSplitCopies(t *testing.T) {
	payload := []byte("abcd")
	chunks, err := chunk.Split(payload, 2)
	require.NoError(t, err)
	payload[0] = 'z'
	require.Equal(t, []byte("ab"), chunks[0])
}
