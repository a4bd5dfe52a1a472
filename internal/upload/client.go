package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client posts chunks to a receiver URL.
type Client struct {
	URL  string
	HTTP *http.Client
}

// NewClient creates a client for url.
func NewClient(url string) *Client {
	return &Client{
		URL:  url,
		HTTP: &http.Client{Timeout: 60 * time.Second},
	}
}

// Send posts every chunk in order. It stops at the first chunk that fails and
// returns that error; chunks are never retried here.
func (c *Client) Send(ctx context.Context, pipelineID string, chunks [][]byte) error {
	if len(chunks) == 0 {
		return fmt.Errorf("nothing to upload")
	}
	if len(chunks) > MaxTotalChunks {
		return fmt.Errorf("%d chunks exceed the %d a receiver accepts", len(chunks), MaxTotalChunks)
	}
	for i, data := range chunks {
		meta := ChunkMeta{PipelineID: pipelineID, Index: i, Total: len(chunks)}
		if err := c.sendChunk(ctx, meta, data); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		log.Printf("[upload] pipeline %s: sent chunk %d/%d (%d bytes)", pipelineID, i+1, len(chunks), len(data))
	}
	return nil
}

func (c *Client) sendChunk(ctx context.Context, meta ChunkMeta, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")
	meta.Set(req.Header)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
