// Package pipeline runs one full compression pass over a rendered image:
// merge channels, run-length and Huffman code them, frame the container and
// split it for upload.
package pipeline

import (
	"fmt"
	"log"

	"github.com/harshithgowdakt/rasterpack/internal/chunk"
	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
	"github.com/harshithgowdakt/rasterpack/internal/container"
	"github.com/harshithgowdakt/rasterpack/internal/entropy"
	"github.com/harshithgowdakt/rasterpack/internal/raster"
	"github.com/harshithgowdakt/rasterpack/internal/sched"
)

// Result is a finished compression pass.
type Result struct {
	Header    container.Header
	Container []byte
	Stats     entropy.Stats
}

// Options tune a compression pass.
type Options struct {
	// Yielder is stepped during long scans. Nil disables yielding.
	Yielder *sched.Yielder
	// Quiet suppresses the statistics log line.
	Quiet bool
}

// Compress encodes a fully rendered image into a container. On error no
// container is returned.
func Compress(img *raster.Image, opts Options) (*Result, error) {
	merged, err := img.Merge()
	if err != nil {
		return nil, err
	}

	block, stats, err := entropy.Encode(merged, opts.Yielder)
	if err != nil {
		return nil, fmt.Errorf("encoding %dx%d image: %w", img.Width, img.Height, err)
	}

	h := container.Header{
		Version: container.Version,
		Width:   uint16(img.Width),
		Height:  uint16(img.Height),
	}
	res := &Result{Header: h, Container: container.Frame(h, block), Stats: *stats}
	if !opts.Quiet {
		logStats(res)
	}
	return res, nil
}

// Prepare compresses img and splits the container into chunks of at most
// limit bytes.
func Prepare(img *raster.Image, limit int, opts Options) ([][]byte, *Result, error) {
	if limit < 1 {
		return nil, nil, fmt.Errorf("%w: chunk limit %d", codecerr.ErrInvalidInput, limit)
	}
	res, err := Compress(img, opts)
	if err != nil {
		return nil, nil, err
	}
	chunks, err := chunk.Split(res.Container, limit)
	if err != nil {
		return nil, nil, err
	}
	return chunks, res, nil
}

// Decompress parses a container and restores the image it carries. The
// decoded size is bounded by the header dimensions; a body that would expand
// past them fails with ErrOversize before it is expanded.
func Decompress(data []byte, y *sched.Yielder) (*raster.Image, error) {
	c, err := container.Parse(data)
	if err != nil {
		return nil, err
	}
	w, h := int(c.Header.Width), int(c.Header.Height)
	if err := raster.CheckDimensions(w, h); err != nil {
		return nil, err
	}
	merged, err := entropy.Decode(c.Block, raster.MaxMergedSize(w, h), y)
	if err != nil {
		return nil, err
	}
	img, err := raster.Unmerge(merged, w, h)
	if err != nil {
		return nil, fmt.Errorf("restoring channels: %w", err)
	}
	return img, nil
}

func logStats(res *Result) {
	s := res.Stats
	log.Printf("[pipeline] %dx%d raw=%.2fKB rle=%.2fKB (%.2f%%) huffman=%.2fKB (%.2f%%) symbols=%d max_code=%d final=%.2fKB chunks=%d",
		res.Header.Width, res.Header.Height,
		kb(s.RawBytes),
		kb(s.RLEBytes), savings(s.RLEBytes, s.RawBytes),
		kb(s.PayloadBytes), savings(s.PayloadBytes, s.RawBytes),
		s.Symbols, s.MaxCodeLength,
		kb(len(res.Container)), chunk.Count(len(res.Container), chunk.DefaultLimit))
}

func kb(n int) float64 { return float64(n) / 1000 }

func savings(n, raw int) float64 {
	if raw == 0 {
		return 0
	}
	return (1 - float64(n)/float64(raw)) * 100
}
