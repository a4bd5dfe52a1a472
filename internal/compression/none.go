package compression

import "fmt"

// NoneCodec writes channel blocks uncompressed.
type NoneCodec struct{}

func (c *NoneCodec) MethodByte() byte { return MethodNone }

func (c *NoneCodec) Name() string { return "none" }

// Compress returns a copy of src.
func (c *NoneCodec) Compress(src []byte) ([]byte, error) {
	return append([]byte(nil), src...), nil
}

// Decompress checks that the stored payload holds exactly the declared
// channel size.
func (c *NoneCodec) Decompress(src []byte, decompressedSize int) ([]byte, error) {
	if len(src) != decompressedSize {
		return nil, fmt.Errorf("stored block has %d bytes, header declares %d", len(src), decompressedSize)
	}
	return append([]byte(nil), src...), nil
}
