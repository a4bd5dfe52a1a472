package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harshithgowdakt/rasterpack/internal/chunk"
	"github.com/harshithgowdakt/rasterpack/internal/compression"
	"github.com/harshithgowdakt/rasterpack/internal/container"
	"github.com/harshithgowdakt/rasterpack/internal/huffman"
	"github.com/harshithgowdakt/rasterpack/internal/store"
)

type headerJSON struct {
	Version uint16 `json:"version"`
	Width   uint16 `json:"width"`
	Height  uint16 `json:"height"`
}

type codeJSON struct {
	Symbol uint8  `json:"symbol"`
	Code   string `json:"code"`
}

type containerJSON struct {
	File           string      `json:"file"`
	FileSize       int         `json:"file_size"`
	Header         headerJSON  `json:"header"`
	TreeBytes      int         `json:"tree_bytes"`
	Leaves         int         `json:"leaves"`
	BitLength      uint32      `json:"bit_length"`
	PayloadBytes   int         `json:"payload_bytes"`
	CodeLengths    map[int]int `json:"code_length_histogram"`
	Codes          []codeJSON  `json:"codes,omitempty"`
	ChunkLimit     int         `json:"chunk_limit"`
	ChunksRequired int         `json:"chunks_required"`
	RawChannelSize int         `json:"raw_channel_bytes"`
	Ratio          float64     `json:"compression_ratio"`
}

type blockJSON struct {
	File             string `json:"file"`
	MethodByte       uint8  `json:"method_byte"`
	CompressedBytes  uint32 `json:"compressed_bytes_with_header"`
	UncompressedSize uint32 `json:"uncompressed_bytes"`
}

type renderJSON struct {
	Meta   *store.Meta `json:"meta"`
	Blocks []blockJSON `json:"blocks"`
}

func main() {
	containerPath := flag.String("container", "", "Framed container file to inspect")
	dataDir := flag.String("data-dir", "./rasterpack-data", "Render store directory")
	renderID := flag.String("render", "", "Stored render id")
	limit := flag.Int("limit", chunk.DefaultLimit, "Chunk limit used for chunks_required")
	showCodes := flag.Bool("codes", false, "Include every symbol's code")
	flag.Parse()

	switch {
	case *containerPath != "":
		dumpContainer(*containerPath, *limit, *showCodes)
	case *renderID != "":
		dumpRender(*dataDir, *renderID)
	default:
		s, err := store.New(*dataDir, &compression.NoneCodec{})
		if err != nil {
			fatalf("open store: %v", err)
		}
		ids, err := s.List()
		if err != nil {
			fatalf("list renders: %v", err)
		}
		printJSON(map[string]any{"data_dir": *dataDir, "renders": ids})
	}
}

func dumpContainer(path string, limit int, showCodes bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("read container: %v", err)
	}
	c, err := container.Parse(data)
	if err != nil {
		fatalf("parse container: %v", err)
	}
	root, _, err := huffman.DeserializeTree(c.Block.Tree)
	if err != nil {
		fatalf("read tree: %v", err)
	}
	codes, err := huffman.BuildEncodingMap(root)
	if err != nil {
		fatalf("build codes: %v", err)
	}

	out := containerJSON{
		File:     path,
		FileSize: len(data),
		Header: headerJSON{
			Version: c.Header.Version,
			Width:   c.Header.Width,
			Height:  c.Header.Height,
		},
		TreeBytes:      len(c.Block.Tree),
		Leaves:         root.LeafCount(),
		BitLength:      c.Block.BitLength,
		PayloadBytes:   len(c.Block.Payload),
		CodeLengths:    make(map[int]int),
		ChunkLimit:     limit,
		ChunksRequired: chunk.Count(len(data), limit),
		RawChannelSize: int(c.Header.Width) * int(c.Header.Height) * 8,
	}
	for _, code := range codes.Codes() {
		out.CodeLengths[code.BitLength]++
		if showCodes {
			out.Codes = append(out.Codes, codeJSON{Symbol: code.Symbol, Code: code.String()})
		}
	}
	if len(data) > 0 {
		out.Ratio = float64(out.RawChannelSize) / float64(len(data))
	}
	printJSON(out)
}

func dumpRender(dataDir, id string) {
	s, err := store.New(dataDir, &compression.NoneCodec{})
	if err != nil {
		fatalf("open store: %v", err)
	}
	meta, err := s.ReadMeta(id)
	if err != nil {
		fatalf("read render %q: %v", id, err)
	}

	out := renderJSON{Meta: meta}
	for _, f := range meta.Files {
		block, err := os.ReadFile(filepath.Join(s.Path(id), f.File))
		if err != nil {
			continue
		}
		h, err := compression.ReadBlockHeader(block)
		if err != nil {
			continue
		}
		out.Blocks = append(out.Blocks, blockJSON{
			File:             f.File,
			MethodByte:       h.Method,
			CompressedBytes:  h.CompressedTotal,
			UncompressedSize: h.UncompressedSize,
		})
	}
	printJSON(out)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatalf("encode json: %v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
