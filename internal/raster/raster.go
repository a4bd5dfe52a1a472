// Package raster holds the per-pixel channel buffers produced by the
// renderer and the fixed order in which they are merged before compression.
package raster

import (
	"fmt"
	"math"
	"strings"

	"github.com/harshithgowdakt/rasterpack/internal/codecerr"
)

// Channel identifies one byte-per-pixel channel.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
	Height
	Material
	Roads
	Buildings
	Water
)

// NumChannels is the number of fixed-size channels.
const NumChannels = 8

// ChannelOrder is the order channels are concatenated in merged buffers.
var ChannelOrder = [NumChannels]Channel{Red, Green, Blue, Height, Material, Roads, Buildings, Water}

var channelNames = [NumChannels]string{"red", "green", "blue", "height", "material", "roads", "buildings", "water"}

func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// ParseChannel maps a channel name back to its Channel.
func ParseChannel(name string) (Channel, error) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown channel %q", codecerr.ErrInvalidInput, name)
}

const (
	// MaxImageBytes is the largest merged channel budget accepted.
	MaxImageBytes = 7000 * 7000 * NumChannels
	// MaxMaterialsBytes is the longest MaterialsEncoding accepted.
	MaxMaterialsBytes = 1 << 20
	// MaterialsSeparator separates the name lists in MaterialsEncoding.
	MaterialsSeparator = "@#%"
)

// MaxMergedSize returns the largest merged buffer a width x height image can
// produce: eight channels plus the longest allowed materials trailer.
func MaxMergedSize(width, height int) int {
	return width*height*NumChannels + MaxMaterialsBytes
}

func checkMaterials(n int) error {
	if n > MaxMaterialsBytes {
		return fmt.Errorf("%w: materials encoding of %d bytes, limit is %d",
			codecerr.ErrOversize, n, MaxMaterialsBytes)
	}
	return nil
}

// CheckDimensions rejects images whose channels would exceed MaxImageBytes or
// whose sides do not fit the 16-bit container header.
func CheckDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: image dimensions %dx%d", codecerr.ErrInvalidInput, width, height)
	}
	if width > math.MaxUint16 || height > math.MaxUint16 {
		return fmt.Errorf("%w: %dx%d does not fit 16-bit dimensions", codecerr.ErrOversize, width, height)
	}
	if width*height*NumChannels > MaxImageBytes {
		return fmt.Errorf("%w: %dx%d needs %d bytes, limit is %d",
			codecerr.ErrOversize, width, height, width*height*NumChannels, MaxImageBytes)
	}
	return nil
}

// Image is a fully rendered raster. Every channel holds Width*Height bytes,
// row-major.
type Image struct {
	Width    int
	Height   int
	Channels [NumChannels][]byte

	// MaterialsEncoding names the material, building group and road group
	// values, joined by MaterialsSeparator. It may be empty.
	MaterialsEncoding []byte
}

// New allocates a zeroed image.
func New(width, height int) (*Image, error) {
	if err := CheckDimensions(width, height); err != nil {
		return nil, err
	}
	img := &Image{Width: width, Height: height}
	for i := range img.Channels {
		img.Channels[i] = make([]byte, width*height)
	}
	return img, nil
}

// Pixel is the value of every channel at one position.
type Pixel [NumChannels]byte

// Set writes p at (x, y).
func (img *Image) Set(x, y int, p Pixel) {
	off := y*img.Width + x
	for i := range img.Channels {
		img.Channels[i][off] = p[i]
	}
}

// At reads the pixel at (x, y).
func (img *Image) At(x, y int) Pixel {
	var p Pixel
	off := y*img.Width + x
	for i := range img.Channels {
		p[i] = img.Channels[i][off]
	}
	return p
}

// Channel returns the buffer for c.
func (img *Image) Channel(c Channel) []byte {
	return img.Channels[c]
}

// SetMaterials stores the material, building group and road group names.
func (img *Image) SetMaterials(materials, buildingGroups, roadGroups []string) {
	img.MaterialsEncoding = []byte(strings.Join(materials, ",") + MaterialsSeparator +
		strings.Join(buildingGroups, ",") + MaterialsSeparator +
		strings.Join(roadGroups, ","))
}

// Materials splits MaterialsEncoding back into its three name lists.
func (img *Image) Materials() (materials, buildingGroups, roadGroups []string, err error) {
	if len(img.MaterialsEncoding) == 0 {
		return nil, nil, nil, nil
	}
	parts := strings.Split(string(img.MaterialsEncoding), MaterialsSeparator)
	if len(parts) != 3 {
		return nil, nil, nil, fmt.Errorf("%w: materials encoding has %d sections, want 3", codecerr.ErrDecode, len(parts))
	}
	return splitList(parts[0]), splitList(parts[1]), splitList(parts[2]), nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// Validate checks that every channel has Width*Height bytes and that the
// materials trailer is within MaxMaterialsBytes.
func (img *Image) Validate() error {
	if err := CheckDimensions(img.Width, img.Height); err != nil {
		return err
	}
	if err := checkMaterials(len(img.MaterialsEncoding)); err != nil {
		return err
	}
	want := img.Width * img.Height
	for i, ch := range img.Channels {
		if len(ch) != want {
			return fmt.Errorf("%w: channel %s has %d bytes, want %d",
				codecerr.ErrInvalidInput, Channel(i), len(ch), want)
		}
	}
	return nil
}

// Merge concatenates the channels in ChannelOrder followed by
// MaterialsEncoding into one freshly allocated buffer.
func (img *Image) Merge() ([]byte, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, 0, img.Width*img.Height*NumChannels+len(img.MaterialsEncoding))
	for _, c := range ChannelOrder {
		out = append(out, img.Channels[c]...)
	}
	return append(out, img.MaterialsEncoding...), nil
}

// Unmerge splits a merged buffer back into an Image. Bytes past the eight
// channels become MaterialsEncoding, up to MaxMaterialsBytes.
func Unmerge(data []byte, width, height int) (*Image, error) {
	if err := CheckDimensions(width, height); err != nil {
		return nil, err
	}
	size := width * height
	if len(data) < size*NumChannels {
		return nil, fmt.Errorf("%w: merged buffer has %d bytes, need at least %d",
			codecerr.ErrDecode, len(data), size*NumChannels)
	}
	if err := checkMaterials(len(data) - size*NumChannels); err != nil {
		return nil, err
	}
	img := &Image{Width: width, Height: height}
	for i, c := range ChannelOrder {
		img.Channels[c] = append([]byte(nil), data[i*size:(i+1)*size]...)
	}
	if rest := data[size*NumChannels:]; len(rest) > 0 {
		img.MaterialsEncoding = append([]byte(nil), rest...)
	}
	return img, nil
}
