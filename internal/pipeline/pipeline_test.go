package pipeline_test

import (
	"math/rand"
	"testing"

	"github.com/harshithgowdakt/rasterpack/internal/chunk"
	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
	"github.com/harshithgowdakt/rasterpack/internal/container"
	"github.com/harshithgowdakt/rasterpack/internal/entropy"
	"github.com/harshithgowdakt/rasterpack/internal/huffman"
	"github.com/harshithgowdakt/rasterpack/internal/pipeline"
	"github.com/harshithgowdakt/rasterpack/internal/raster"
	"github.com/harshithgowdakt/rasterpack/internal/rle"
	"github.com/harshithgowdakt/rasterpack/internal/sched"
	"github.com/stretchr/testify/require"
)

// terrain builds an image with large flat regions, like a rendered map.
func terrain(t *testing.T, w, h int) *raster.Image {
	t.Helper()
	img, err := raster.New(w, h)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(int64(w*h + 1)))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			water := x < w/3
			p := raster.Pixel{
				raster.Red:    byte(40 + y/8),
				raster.Green:  byte(120 + x/16),
				raster.Blue:   60,
				raster.Height: byte((x + y) / 4),
			}
			if water {
				p[raster.Blue] = 200
				p[raster.Water] = 1
				p[raster.Material] = 7
			} else if rng.Intn(50) == 0 {
				p[raster.Buildings] = 1
			}
			if y == h/2 {
				p[raster.Roads] = 1
			}
			img.Set(x, y, p)
		}
	}
	img.SetMaterials([]string{"Grass", "Water", "Rock"}, []string{"Town"}, []string{"Main"})
	return img
}

func TestCompressDecompress(t *testing.T) {
	img := terrain(t, 96, 64)
	res, err := pipeline.Compress(img, pipeline.Options{Yielder: sched.NewYielder(), Quiet: true})
	require.NoError(t, err)
	require.Equal(t, container.Header{Version: container.Version, Width: 96, Height: 64}, res.Header)
	require.Less(t, len(res.Container), res.Stats.RawBytes)

	back, err := pipeline.Decompress(res.Container, nil)
	require.NoError(t, err)
	require.Equal(t, img, back)
}

func TestPrepareChunks(t *testing.T) {
	img := terrain(t, 40, 40)
	chunks, res, err := pipeline.Prepare(img, 100, pipeline.Options{Quiet: true})
	require.NoError(t, err)
	require.Len(t, chunks, chunk.Count(len(res.Container), 100))
	require.Equal(t, res.Container, chunk.Join(chunks))

	back, err := pipeline.Decompress(chunk.Join(chunks), nil)
	require.NoError(t, err)
	require.Equal(t, img, back)
}

func TestPrepareInvalidLimit(t *testing.T) {
	_, _, err := pipeline.Prepare(terrain(t, 2, 2), 0, pipeline.Options{Quiet: true})
	require.ErrorIs(t, err, codecerr.ErrInvalidInput)
}

func TestCompressUniformImage(t *testing.T) {
	img, err := raster.New(16, 16)
	require.NoError(t, err)
	res, err := pipeline.Compress(img, pipeline.Options{Quiet: true})
	require.NoError(t, err)
	back, err := pipeline.Decompress(res.Container, nil)
	require.NoError(t, err)
	require.Equal(t, img, back)
}

func TestCompressRejectsBadImage(t *testing.T) {
	img := &raster.Image{Width: 8000, Height: 8000}
	_, err := pipeline.Compress(img, pipeline.Options{Quiet: true})
	require.ErrorIs(t, err, codecerr.ErrOversize)
}

func TestDecompressCorrupt(t *testing.T) {
	res, err := pipeline.Compress(terrain(t, 8, 8), pipeline.Options{Quiet: true})
	require.NoError(t, err)
	_, err = pipeline.Decompress(res.Container[:len(res.Container)-3], nil)
	require.ErrorIs(t, err, codecerr.ErrDecode)
}

// frameRuns entropy-codes already serialized run records under a header,
// so the runs can describe more bytes than the header allows.
func frameRuns(t *testing.T, h container.Header, runs []rle.Sequence) []byte {
	t.Helper()
	records := rle.Marshal(runs)
	table, err := huffman.BuildFrequencyTable(records, nil)
	require.NoError(t, err)
	root, err := huffman.BuildTree(table, nil)
	require.NoError(t, err)
	codes, err := huffman.BuildEncodingMap(root)
	require.NoError(t, err)
	packed, err := huffman.Pack(records, codes, nil)
	require.NoError(t, err)
	tree, err := huffman.SerializeTree(root)
	require.NoError(t, err)
	return container.Frame(h, &entropy.Block{Tree: tree, BitLength: uint32(packed.BitLength), Payload: packed.Data})
}

func TestDecompressRejectsRunsPastHeader(t *testing.T) {
	runs := make([]rle.Sequence, 2000)
	for i := range runs {
		runs[i] = rle.Sequence{Length: rle.MaxRunLength, Value: byte(i % 3)}
	}
	data := frameRuns(t, container.Header{Version: container.Version, Width: 1, Height: 1}, runs)
	require.Less(t, len(data), 4096)

	_, err := pipeline.Decompress(data, nil)
	require.ErrorIs(t, err, codecerr.ErrOversize)
}

func TestDecompressMaterialsAtLimit(t *testing.T) {
	// 8 channel bytes plus a trailer one byte over the limit.
	over := raster.MaxMergedSize(1, 1) + 1
	var runs []rle.Sequence
	for over > 0 {
		n := min(over, rle.MaxRunLength)
		runs = append(runs, rle.Sequence{Length: uint16(n), Value: 'm'})
		over -= n
	}
	h := container.Header{Version: container.Version, Width: 1, Height: 1}

	_, err := pipeline.Decompress(frameRuns(t, h, runs), nil)
	require.ErrorIs(t, err, codecerr.ErrOversize)

	runs[len(runs)-1].Length--
	img, err := pipeline.Decompress(frameRuns(t, h, runs), nil)
	require.NoError(t, err)
	require.Len(t, img.MaterialsEncoding, raster.MaxMaterialsBytes)
}

func TestDecompressRejectsZeroDimensions(t *testing.T) {
	data := frameRuns(t, container.Header{Version: container.Version}, []rle.Sequence{{Length: 8, Value: 1}})
	_, err := pipeline.Decompress(data, nil)
	require.ErrorIs(t, err, codecerr.ErrInvalidInput)
}
