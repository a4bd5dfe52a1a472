// Package chunk splits a framed container into pieces that fit a transport
// body-size limit. Chunks carry no sequencing metadata of their own.
package chunk

import (
	"fmt"

	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
)

// DefaultLimit is the HTTPS request body limit chunks are sized for.
const DefaultLimit = 1024*1000 - 1

// Split returns contiguous slices of payload, each exactly limit bytes except
// possibly the last. The slices are copies; payload may be reused afterwards.
// An empty payload yields no chunks.
func Split(payload []byte, limit int) ([][]byte, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: chunk limit %d must be at least 1", codecerr.ErrInvalidInput, limit)
	}
	chunks := make([][]byte, 0, Count(len(payload), limit))
	for start := 0; start < len(payload); start += limit {
		end := min(start+limit, len(payload))
		chunks = append(chunks, append([]byte(nil), payload[start:end]...))
	}
	return chunks, nil
}

// Count returns how many chunks Split produces for size bytes.
func Count(size, limit int) int {
	if limit < 1 || size <= 0 {
		return 0
	}
	return (size + limit - 1) / limit
}

// Join concatenates chunks in order.
func Join(chunks [][]byte) []byte {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	out := make([]byte, 0, total)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}
