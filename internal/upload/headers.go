// Package upload moves container chunks between the renderer and the
// receiving server. Chunk order and identity travel in HTTP headers, never
// in the chunk bytes.
package upload

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/harshithgowdakt/rasterpack/internal/chunk"
	"github.com/harshithgowdakt/rasterpack/internal/container"
)

// Header names carried by every chunk request.
const (
	HeaderChunkID     = "chunkId"
	HeaderTotalChunks = "totalChunks"
	HeaderPipelineID  = "pipelineId"
)

// MaxTotalChunks is the most chunks an upload may declare: enough for the
// largest container at the default chunk limit.
const MaxTotalChunks = (container.MaxSize + chunk.DefaultLimit - 1) / chunk.DefaultLimit

// ChunkMeta identifies one chunk of one upload.
type ChunkMeta struct {
	PipelineID string
	Index      int
	Total      int
}

// Set writes m into h.
func (m ChunkMeta) Set(h http.Header) {
	h.Set(HeaderChunkID, strconv.Itoa(m.Index))
	h.Set(HeaderTotalChunks, strconv.Itoa(m.Total))
	h.Set(HeaderPipelineID, m.PipelineID)
}

// ParseChunkMeta reads and validates chunk headers.
func ParseChunkMeta(h http.Header) (ChunkMeta, error) {
	m := ChunkMeta{PipelineID: h.Get(HeaderPipelineID)}
	if m.PipelineID == "" {
		return m, fmt.Errorf("missing %s header", HeaderPipelineID)
	}
	var err error
	if m.Index, err = strconv.Atoi(h.Get(HeaderChunkID)); err != nil {
		return m, fmt.Errorf("bad %s header: %w", HeaderChunkID, err)
	}
	if m.Total, err = strconv.Atoi(h.Get(HeaderTotalChunks)); err != nil {
		return m, fmt.Errorf("bad %s header: %w", HeaderTotalChunks, err)
	}
	return m, m.Validate()
}

// Validate checks that Total is within [1, MaxTotalChunks] and Index within
// [0, Total).
func (m ChunkMeta) Validate() error {
	if m.Total < 1 || m.Total > MaxTotalChunks {
		return fmt.Errorf("%s must be in [1, %d], got %d", HeaderTotalChunks, MaxTotalChunks, m.Total)
	}
	if m.Index < 0 || m.Index >= m.Total {
		return fmt.Errorf("%s %d out of range [0, %d)", HeaderChunkID, m.Index, m.Total)
	}
	return nil
}
