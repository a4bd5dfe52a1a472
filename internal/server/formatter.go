package server

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/harshithgowdakt/rasterpack/internal/store"
)

// OutputFormat specifies the listing format.
type OutputFormat string

const (
	FormatTabSeparated OutputFormat = "TabSeparated"
	FormatJSON         OutputFormat = "JSON"
	FormatCSV          OutputFormat = "CSV"
)

// ParseFormat parses a format string (case-insensitive).
func ParseFormat(s string) OutputFormat {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "csv":
		return FormatCSV
	default:
		return FormatTabSeparated
	}
}

var renderColumns = []string{"id", "width", "height", "codec", "raw_bytes", "stored_bytes", "created_at"}

func renderRow(m *store.Meta) []string {
	raw, stored := 0, 0
	for _, f := range m.Files {
		raw += f.RawBytes
		stored += f.StoredBytes
	}
	return []string{
		m.ID,
		strconv.Itoa(m.Width),
		strconv.Itoa(m.Height),
		m.Codec,
		strconv.Itoa(raw),
		strconv.Itoa(stored),
		m.CreatedAt.Format(time.RFC3339),
	}
}

// FormatRenders writes one row per stored render in the specified format.
func FormatRenders(w io.Writer, metas []*store.Meta, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return formatJSON(w, metas)
	case FormatCSV:
		return formatCSV(w, metas)
	default:
		return formatTabSeparated(w, metas)
	}
}

func formatTabSeparated(w io.Writer, metas []*store.Meta) error {
	fmt.Fprintln(w, strings.Join(renderColumns, "\t"))
	for _, m := range metas {
		fmt.Fprintln(w, strings.Join(renderRow(m), "\t"))
	}
	return nil
}

func formatCSV(w io.Writer, metas []*store.Meta) error {
	fmt.Fprintln(w, strings.Join(quoteCSV(renderColumns), ","))
	for _, m := range metas {
		fmt.Fprintln(w, strings.Join(quoteCSV(renderRow(m)), ","))
	}
	return nil
}

func formatJSON(w io.Writer, metas []*store.Meta) error {
	type resultJSON struct {
		Data []*store.Meta `json:"data"`
		Rows int           `json:"rows"`
	}
	result := resultJSON{Data: metas, Rows: len(metas)}
	if result.Data == nil {
		result.Data = []*store.Meta{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func quoteCSV(vals []string) []string {
	result := make([]string, len(vals))
	for i, v := range vals {
		if strings.ContainsAny(v, ",\"\n") {
			result[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		} else {
			result[i] = v
		}
	}
	return result
}
