// Package codecerr defines the error kinds shared by the raster codec stages.
package codecerr

import "errors"

var (
	// ErrInvalidInput is returned when a stage is given input it cannot accept,
	// such as an empty byte stream handed to the run-length encoder.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBuild is returned when a frequency table or code tree cannot be built.
	ErrBuild = errors.New("cannot build code tree")

	// ErrDecode is returned when a bitstream, serialized tree or container is
	// truncated or does not resolve within its declared bit length.
	ErrDecode = errors.New("decode error")

	// ErrOversize is returned when an image or encoded section exceeds the
	// supported byte budget.
	ErrOversize = errors.New("image exceeds maximum supported size")
)
