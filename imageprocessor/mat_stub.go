//go:build nogocv

package imageprocessor

import (
	"errors"
	"image"
)

// OpenCVAvailable reports whether the gocv backend is compiled in
const OpenCVAvailable = false

var errNoOpenCV = errors.New("built without OpenCV (nogocv tag), use the raster renderer")

// MatDecoder is unavailable in nogocv builds
type MatDecoder struct{}

// NewMatDecoder returns a decoder that always fails
func NewMatDecoder() *MatDecoder {
	return &MatDecoder{}
}

// Decode always fails
func (d *MatDecoder) Decode(data []byte) (image.Image, error) {
	return nil, errNoOpenCV
}

// MatRenderer is unavailable in nogocv builds
type MatRenderer struct{}

// NewMatRenderer returns a renderer that always fails
func NewMatRenderer() *MatRenderer {
	return &MatRenderer{}
}

// Begin always fails
func (r *MatRenderer) Begin(src image.Image) (Canvas, error) {
	return nil, errNoOpenCV
}
