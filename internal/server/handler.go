package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/harshithgowdakt/rasterpack/internal/chunk"
	"github.com/harshithgowdakt/rasterpack/internal/pipeline"
	"github.com/harshithgowdakt/rasterpack/internal/sched"
	"github.com/harshithgowdakt/rasterpack/internal/store"
	"github.com/harshithgowdakt/rasterpack/internal/upload"
)

// UploadHandler receives container chunks, decodes finished uploads and
// serves stored render metadata.
type UploadHandler struct {
	store     *store.RasterStore
	assembler *upload.Assembler
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(s *store.RasterStore, a *upload.Assembler) *UploadHandler {
	return &UploadHandler{store: s, assembler: a}
}

// HandleUpload accepts one chunk. The request completing an upload decodes
// the container and stores the raster before responding.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	meta, err := upload.ParseChunkMeta(r.Header)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !store.ValidID(meta.PipelineID) {
		http.Error(w, fmt.Sprintf("invalid pipeline id %q", meta.PipelineID), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, chunk.DefaultLimit+1))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) > chunk.DefaultLimit {
		http.Error(w, "chunk exceeds body limit", http.StatusRequestEntityTooLarge)
		return
	}

	data, done, err := h.assembler.Add(meta, body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if !done {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "Chunk %d/%d received\n", meta.Index+1, meta.Total)
		return
	}

	img, err := pipeline.Decompress(data, sched.NewYielder())
	if err != nil {
		log.Printf("[server] pipeline %s: decode failed: %v", meta.PipelineID, err)
		http.Error(w, fmt.Sprintf("decode error: %v", err), http.StatusUnprocessableEntity)
		return
	}
	stored, err := h.store.Write(meta.PipelineID, img)
	if err != nil {
		log.Printf("[server] pipeline %s: store failed: %v", meta.PipelineID, err)
		http.Error(w, fmt.Sprintf("store error: %v", err), http.StatusInternalServerError)
		return
	}
	log.Printf("[server] pipeline %s: stored %dx%d render from %d chunks (%d bytes)",
		meta.PipelineID, img.Width, img.Height, meta.Total, len(data))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stored)
}

// HandleRender returns the metadata of one stored render.
func (h *UploadHandler) HandleRender(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	meta, err := h.store.ReadMeta(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, fmt.Sprintf("render %q not found", id), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(meta)
}

// HandleList lists stored renders.
func (h *UploadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metas := make([]*store.Meta, 0, len(ids))
	for _, id := range ids {
		m, err := h.store.ReadMeta(id)
		if err != nil {
			continue
		}
		metas = append(metas, m)
	}

	format := ParseFormat(r.URL.Query().Get("format"))
	switch format {
	case FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
	default:
		w.Header().Set("Content-Type", "text/tab-separated-values")
	}
	if err := FormatRenders(w, metas, format); err != nil {
		http.Error(w, fmt.Sprintf("format error: %v", err), http.StatusInternalServerError)
	}
}

// HandlePing responds with "Ok." for health checks.
func (h *UploadHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Ok.")
}
