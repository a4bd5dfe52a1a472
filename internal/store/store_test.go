package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harshithgowdakt/rasterpack/internal/compression"
	"github.com/harshithgowdakt/rasterpack/internal/raster"
	"github.com/harshithgowdakt/rasterpack/internal/store"
	"github.com/stretchr/testify/require"
)

func sampleImage(t *testing.T) *raster.Image {
	t.Helper()
	img, err := raster.New(12, 9)
	require.NoError(t, err)
	for y := 0; y < 9; y++ {
		for x := 0; x < 12; x++ {
			img.Set(x, y, raster.Pixel{byte(x), byte(y), 50, byte(x + y), 3, 0, byte(x % 2), 0})
		}
	}
	img.SetMaterials([]string{"Grass"}, []string{"Town"}, []string{"Road"})
	return img
}

func TestWriteRead(t *testing.T) {
	for _, name := range []string{"none", "lz4", "zstd", "entropy"} {
		t.Run(name, func(t *testing.T) {
			codec, err := compression.ParseCodec(name)
			require.NoError(t, err)
			s, err := store.New(t.TempDir(), codec)
			require.NoError(t, err)

			img := sampleImage(t)
			meta, err := s.Write("render-1", img)
			require.NoError(t, err)
			require.Equal(t, name, meta.Codec)
			require.Len(t, meta.Files, raster.NumChannels+1)

			for _, f := range meta.Files {
				_, err := os.Stat(filepath.Join(s.Path("render-1"), f.File))
				require.NoError(t, err)
			}

			back, readMeta, err := s.Read("render-1")
			require.NoError(t, err)
			require.Equal(t, img, back)
			require.Equal(t, meta.Files, readMeta.Files)
		})
	}
}

func TestWriteDuplicate(t *testing.T) {
	s, err := store.New(t.TempDir(), &compression.LZ4Codec{})
	require.NoError(t, err)
	_, err = s.Write("a", sampleImage(t))
	require.NoError(t, err)
	_, err = s.Write("a", sampleImage(t))
	require.Error(t, err)
}

func TestInvalidID(t *testing.T) {
	s, err := store.New(t.TempDir(), &compression.NoneCodec{})
	require.NoError(t, err)
	_, err = s.Write("../escape", sampleImage(t))
	require.Error(t, err)
	_, _, err = s.Read("")
	require.Error(t, err)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, &compression.ZstdCodec{})
	require.NoError(t, err)
	for _, id := range []string{"b", "a", "c"} {
		_, err := s.Write(id, sampleImage(t))
		require.NoError(t, err)
	}
	// Leftover from an interrupted write.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".tmp_d"), 0755))

	ids, err := s.List()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, ids)
}
