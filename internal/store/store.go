// Package store persists decoded rasters on disk, one directory per render.
//
// Layout of a render directory:
//
//	meta.json        dimensions, codec and per-file sizes
//	<channel>.bin    one compressed block per channel
//	materials.bin    compressed materials encoding (optional)
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/harshithgowdakt/rasterpack/internal/compression"
	"github.com/harshithgowdakt/rasterpack/internal/container"
	"github.com/harshithgowdakt/rasterpack/internal/raster"
)

const (
	metaFile      = "meta.json"
	materialsName = "materials"
	tmpPrefix     = ".tmp_"
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidID reports whether id can name a render directory.
func ValidID(id string) bool {
	return validID.MatchString(id)
}

// FileInfo describes one stored block file.
type FileInfo struct {
	Name        string `json:"name"`
	File        string `json:"file"`
	RawBytes    int    `json:"raw_bytes"`
	StoredBytes int    `json:"stored_bytes"`
}

// Meta is the content of meta.json.
type Meta struct {
	ID        string     `json:"id"`
	Version   uint16     `json:"version"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Codec     string     `json:"codec"`
	Files     []FileInfo `json:"files"`
	CreatedAt time.Time  `json:"created_at"`
}

// RasterStore manages render directories under a base directory.
type RasterStore struct {
	dir   string
	codec compression.Codec
	mu    sync.RWMutex
}

// New creates a store rooted at dir, creating it if needed. Channels are
// written with codec; reads use whatever codec each block names.
func New(dir string, codec compression.Codec) (*RasterStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	return &RasterStore{dir: dir, codec: codec}, nil
}

// Dir returns the base directory.
func (s *RasterStore) Dir() string { return s.dir }

// Path returns the directory of render id.
func (s *RasterStore) Path(id string) string {
	return filepath.Join(s.dir, id)
}

// Write stores img as render id. An existing render with the same id is an
// error.
func (s *RasterStore) Write(id string, img *raster.Image) (*Meta, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("invalid render id %q", id)
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	finalDir := s.Path(id)
	if _, err := os.Stat(finalDir); err == nil {
		return nil, fmt.Errorf("render %s already exists", id)
	}

	tmpDir := filepath.Join(s.dir, tmpPrefix+id)
	os.RemoveAll(tmpDir)
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return nil, fmt.Errorf("creating tmp dir: %w", err)
	}

	// Clean up on failure
	success := false
	defer func() {
		if !success {
			os.RemoveAll(tmpDir)
		}
	}()

	meta := &Meta{
		ID:        id,
		Version:   container.Version,
		Width:     img.Width,
		Height:    img.Height,
		Codec:     s.codec.Name(),
		CreatedAt: time.Now().UTC(),
	}
	for _, c := range raster.ChannelOrder {
		info, err := s.writeBlock(tmpDir, c.String(), img.Channel(c))
		if err != nil {
			return nil, fmt.Errorf("writing channel %s: %w", c, err)
		}
		meta.Files = append(meta.Files, info)
	}
	if len(img.MaterialsEncoding) > 0 {
		info, err := s.writeBlock(tmpDir, materialsName, img.MaterialsEncoding)
		if err != nil {
			return nil, fmt.Errorf("writing materials: %w", err)
		}
		meta.Files = append(meta.Files, info)
	}

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(tmpDir, metaFile), metaBytes, 0644); err != nil {
		return nil, err
	}

	// Atomic rename from tmp to final
	if err := os.Rename(tmpDir, finalDir); err != nil {
		return nil, fmt.Errorf("renaming render dir: %w", err)
	}
	success = true
	return meta, nil
}

func (s *RasterStore) writeBlock(dir, name string, data []byte) (FileInfo, error) {
	block, err := compression.CompressBlock(s.codec, data)
	if err != nil {
		return FileInfo{}, err
	}
	file := name + ".bin"
	if err := os.WriteFile(filepath.Join(dir, file), block, 0644); err != nil {
		return FileInfo{}, err
	}
	return FileInfo{Name: name, File: file, RawBytes: len(data), StoredBytes: len(block)}, nil
}

// ReadMeta loads meta.json of render id.
func (s *RasterStore) ReadMeta(id string) (*Meta, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("invalid render id %q", id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return readMeta(s.Path(id))
}

func readMeta(dir string) (*Meta, error) {
	data, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, err
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", metaFile, err)
	}
	return &meta, nil
}

// Read restores render id.
func (s *RasterStore) Read(id string) (*raster.Image, *Meta, error) {
	if !ValidID(id) {
		return nil, nil, fmt.Errorf("invalid render id %q", id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := s.Path(id)
	meta, err := readMeta(dir)
	if err != nil {
		return nil, nil, err
	}

	img := &raster.Image{Width: meta.Width, Height: meta.Height}
	for _, f := range meta.Files {
		block, err := os.ReadFile(filepath.Join(dir, f.File))
		if err != nil {
			return nil, nil, err
		}
		data, err := compression.DecompressBlock(block)
		if err != nil {
			return nil, nil, fmt.Errorf("decompressing %s: %w", f.File, err)
		}
		if f.Name == materialsName {
			img.MaterialsEncoding = data
			continue
		}
		c, err := raster.ParseChannel(f.Name)
		if err != nil {
			return nil, nil, err
		}
		img.Channels[c] = data
	}
	if err := img.Validate(); err != nil {
		return nil, nil, fmt.Errorf("render %s: %w", id, err)
	}
	return img, meta, nil
}

// List returns the ids of all stored renders, sorted.
func (s *RasterStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		// In-progress writes use a tmp prefix that is not a valid id.
		if !e.IsDir() || !ValidID(e.Name()) {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dir, e.Name(), metaFile)); err != nil {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}
