// Package rle implements the run-length stage of the raster codec.
//
// Serialized form, one record per run:
//
//	[length (2 LE)] [value (1)]
//
// Records are fixed-size so a decoder can index them directly.
package rle

import (
	"encoding/binary"
	"fmt"

	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
	"github.com/harshithgowdakt/rasterpack/internal/sched"
)

const (
	// LengthSize is the byte width of the run length field.
	LengthSize = 2
	// RecordSize is the serialized size of one Sequence.
	RecordSize = LengthSize + 1
	// MaxRunLength is the longest run a single record can hold.
	MaxRunLength = 1<<(8*LengthSize) - 1
)

// Sequence is one run: Value repeated Length times.
type Sequence struct {
	Length uint16
	Value  byte
}

// Encode splits data into maximal runs. Runs longer than MaxRunLength are
// split into consecutive sequences with the same value.
func Encode(data []byte) ([]Sequence, error) {
	return encode(data, nil)
}

func encode(data []byte, y *sched.Yielder) ([]Sequence, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: run-length encode of empty buffer", codecerr.ErrInvalidInput)
	}

	runs := make([]Sequence, 0, 16)
	current := data[0]
	count := 1
	for _, next := range data[1:] {
		y.Step()
		if next == current && count < MaxRunLength {
			count++
			continue
		}
		runs = append(runs, Sequence{Length: uint16(count), Value: current})
		current = next
		count = 1
	}
	runs = append(runs, Sequence{Length: uint16(count), Value: current})
	return runs, nil
}

// Decode expands runs back into the original byte stream.
func Decode(runs []Sequence) []byte {
	out := make([]byte, Size(runs))
	pos := 0
	for _, r := range runs {
		end := pos + int(r.Length)
		for i := pos; i < end; i++ {
			out[i] = r.Value
		}
		pos = end
	}
	return out
}

// Marshal serializes runs as fixed-size records.
func Marshal(runs []Sequence) []byte {
	out := make([]byte, len(runs)*RecordSize)
	for i, r := range runs {
		off := i * RecordSize
		binary.LittleEndian.PutUint16(out[off:off+LengthSize], r.Length)
		out[off+LengthSize] = r.Value
	}
	return out
}

// Unmarshal parses fixed-size records. The input length must be a multiple
// of RecordSize and no record may have a zero length.
func Unmarshal(data []byte) ([]Sequence, error) {
	if len(data)%RecordSize != 0 {
		return nil, fmt.Errorf("%w: run-length data of %d bytes is not a multiple of %d",
			codecerr.ErrDecode, len(data), RecordSize)
	}
	runs := make([]Sequence, len(data)/RecordSize)
	for i := range runs {
		off := i * RecordSize
		length := binary.LittleEndian.Uint16(data[off : off+LengthSize])
		if length == 0 {
			return nil, fmt.Errorf("%w: zero-length run at record %d", codecerr.ErrDecode, i)
		}
		runs[i] = Sequence{Length: length, Value: data[off+LengthSize]}
	}
	return runs, nil
}

// EncodeBytes run-length encodes data and returns the serialized records.
// A nil Yielder disables cooperative yielding.
func EncodeBytes(data []byte, y *sched.Yielder) ([]byte, error) {
	runs, err := encode(data, y)
	if err != nil {
		return nil, err
	}
	return Marshal(runs), nil
}

// Size returns the number of bytes runs expand to.
func Size(runs []Sequence) int {
	total := 0
	for _, r := range runs {
		total += int(r.Length)
	}
	return total
}

// DecodeBytes parses serialized records and expands them. Records that would
// expand past limit bytes fail with ErrOversize before anything is allocated
// for the output.
func DecodeBytes(data []byte, limit int) ([]byte, error) {
	runs, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if n := Size(runs); n > limit {
		return nil, fmt.Errorf("%w: runs expand to %d bytes, limit is %d", codecerr.ErrOversize, n, limit)
	}
	return Decode(runs), nil
}
