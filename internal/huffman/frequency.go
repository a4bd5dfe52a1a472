package huffman

import (
	"fmt"
	"sort"

	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
	"github.com/harshithgowdakt/rasterpack/internal/sched"
)

// FrequencyEntry counts how often one symbol occurs in a stream.
type FrequencyEntry struct {
	Symbol    byte
	Frequency uint64
}

// BuildFrequencyTable counts every distinct byte in data. Entries are sorted
// ascending by frequency, ties broken by ascending symbol value.
// A nil Yielder disables cooperative yielding.
func BuildFrequencyTable(data []byte, y *sched.Yielder) ([]FrequencyEntry, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty stream has no symbols", codecerr.ErrBuild)
	}

	var counts [256]uint64
	for _, b := range data {
		y.Step()
		counts[b]++
	}

	table := make([]FrequencyEntry, 0, 256)
	for sym, n := range counts {
		if n > 0 {
			table = append(table, FrequencyEntry{Symbol: byte(sym), Frequency: n})
		}
	}
	sort.SliceStable(table, func(i, j int) bool {
		if table[i].Frequency != table[j].Frequency {
			return table[i].Frequency < table[j].Frequency
		}
		return table[i].Symbol < table[j].Symbol
	})
	return table, nil
}
