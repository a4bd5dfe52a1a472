package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/harshithgowdakt/rasterpack/internal/store"
	"github.com/harshithgowdakt/rasterpack/internal/upload"
)

// Server is the render upload HTTP server.
type Server struct {
	store     *store.RasterStore
	assembler *upload.Assembler
	addr      string
	handler   *UploadHandler
}

// NewServer creates a new server. Uploads idle for longer than
// assemblyTimeout are discarded.
func NewServer(s *store.RasterStore, addr string, assemblyTimeout time.Duration) *Server {
	a := upload.NewAssembler(assemblyTimeout)
	return &Server{
		store:     s,
		assembler: a,
		addr:      addr,
		handler:   NewUploadHandler(s, a),
	}
}

// Routes returns the server's request multiplexer.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", s.handler.HandleUpload)
	mux.HandleFunc("GET /renders", s.handler.HandleList)
	mux.HandleFunc("GET /renders/{id}", s.handler.HandleRender)
	mux.HandleFunc("/ping", s.handler.HandlePing)
	return mux
}

// Start starts the HTTP server and the stale-upload sweeper.
func (s *Server) Start(ctx context.Context) error {
	go s.assembler.Run(ctx, 10*time.Second)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Routes(),
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	log.Printf("[server] listening on %s, storing renders in %s", s.addr, s.store.Dir())
	return srv.ListenAndServe()
}
