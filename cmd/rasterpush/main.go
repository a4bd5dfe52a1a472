package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/harshithgowdakt/rasterpack/internal/chunk"
	"github.com/harshithgowdakt/rasterpack/internal/pipeline"
	"github.com/harshithgowdakt/rasterpack/internal/raster"
	"github.com/harshithgowdakt/rasterpack/internal/sched"
	"github.com/harshithgowdakt/rasterpack/internal/upload"
)

func main() {
	in := flag.String("in", "", "Merged channel file (8 channels of width*height bytes, in channel order)")
	width := flag.Int("width", 0, "Image width in pixels")
	height := flag.Int("height", 0, "Image height in pixels")
	materials := flag.String("materials", "", "Materials encoding appended after the channels (names joined by @#%)")
	url := flag.String("url", "", "Receiver upload URL; when empty nothing is sent")
	pipelineID := flag.String("pipeline-id", "", "Upload id (default: derived from the current time)")
	limit := flag.Int("limit", chunk.DefaultLimit, "Maximum chunk size in bytes")
	out := flag.String("out", "", "Also write the framed container to this file")
	flag.Parse()

	if *in == "" {
		fatalf("missing required -in")
	}
	data, err := os.ReadFile(*in)
	if err != nil {
		fatalf("read input: %v", err)
	}
	if *materials != "" {
		data = append(data, []byte(strings.TrimSpace(*materials))...)
	}
	img, err := raster.Unmerge(data, *width, *height)
	if err != nil {
		fatalf("load image: %v", err)
	}

	chunks, res, err := pipeline.Prepare(img, *limit, pipeline.Options{Yielder: sched.NewYielder()})
	if err != nil {
		fatalf("compress: %v", err)
	}
	fmt.Printf("container: %d bytes in %d chunks of at most %d bytes\n", len(res.Container), len(chunks), *limit)

	if *out != "" {
		if err := os.WriteFile(*out, res.Container, 0644); err != nil {
			fatalf("write container: %v", err)
		}
	}
	if *url == "" {
		return
	}

	id := *pipelineID
	if id == "" {
		id = fmt.Sprintf("render-%d", time.Now().UnixNano())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := upload.NewClient(*url).Send(ctx, id, chunks); err != nil {
		fatalf("upload: %v", err)
	}
	fmt.Printf("uploaded pipeline %s\n", id)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
