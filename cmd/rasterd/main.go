package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harshithgowdakt/rasterpack/internal/compression"
	"github.com/harshithgowdakt/rasterpack/internal/server"
	"github.com/harshithgowdakt/rasterpack/internal/store"
)

func main() {
	dataDir := flag.String("data-dir", "./rasterpack-data", "Directory for stored renders")
	addr := flag.String("addr", ":5000", "HTTP server address")
	codecName := flag.String("codec", "lz4", "Codec for stored channels (none, lz4, zstd, entropy)")
	assemblyTimeout := flag.Duration("assembly-timeout", 10*time.Minute, "Drop uploads idle for longer than this")
	flag.Parse()

	codec, err := compression.ParseCodec(*codecName)
	if err != nil {
		log.Fatalf("Invalid -codec: %v", err)
	}

	s, err := store.New(*dataDir, codec)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}

	fmt.Printf("rasterd - render chunk receiver\n")
	fmt.Printf("Data directory: %s (codec %s)\n", *dataDir, codec.Name())

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	srv := server.NewServer(s, *addr, *assemblyTimeout)
	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}
}
