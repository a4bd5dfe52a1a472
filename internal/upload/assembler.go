package upload

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

type assembly struct {
	chunks   [][]byte
	received int
	updated  time.Time
}

// Assembler collects the chunks of concurrent uploads and hands back each
// upload's bytes once every chunk has arrived.
type Assembler struct {
	mu      sync.Mutex
	pending map[string]*assembly
	timeout time.Duration
	now     func() time.Time
}

// NewAssembler creates an assembler that drops uploads idle for longer than
// timeout.
func NewAssembler(timeout time.Duration) *Assembler {
	return &Assembler{
		pending: make(map[string]*assembly),
		timeout: timeout,
		now:     time.Now,
	}
}

// Add stores one chunk. When it completes its upload, Add returns the joined
// bytes and true, and forgets the upload. Re-sending a chunk replaces it.
func (a *Assembler) Add(meta ChunkMeta, data []byte) ([]byte, bool, error) {
	if err := meta.Validate(); err != nil {
		return nil, false, fmt.Errorf("pipeline %s: %w", meta.PipelineID, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	asm, ok := a.pending[meta.PipelineID]
	if !ok {
		asm = &assembly{chunks: make([][]byte, meta.Total)}
		a.pending[meta.PipelineID] = asm
	}
	if len(asm.chunks) != meta.Total {
		return nil, false, fmt.Errorf("pipeline %s: total chunks changed from %d to %d",
			meta.PipelineID, len(asm.chunks), meta.Total)
	}
	if asm.chunks[meta.Index] == nil {
		asm.received++
	}
	asm.chunks[meta.Index] = append([]byte{}, data...)
	asm.updated = a.now()

	if asm.received < meta.Total {
		return nil, false, nil
	}
	delete(a.pending, meta.PipelineID)

	size := 0
	for _, c := range asm.chunks {
		size += len(c)
	}
	out := make([]byte, 0, size)
	for _, c := range asm.chunks {
		out = append(out, c...)
	}
	return out, true, nil
}

// Pending returns the number of incomplete uploads.
func (a *Assembler) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Sweep drops uploads that have been idle longer than the timeout and
// returns how many were dropped.
func (a *Assembler) Sweep() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := a.now().Add(-a.timeout)
	dropped := 0
	for id, asm := range a.pending {
		if asm.updated.Before(cutoff) {
			log.Printf("[upload] pipeline %s: dropping after %d/%d chunks", id, asm.received, len(asm.chunks))
			delete(a.pending, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps periodically. It blocks until ctx is cancelled.
func (a *Assembler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Sweep()
		}
	}
}
