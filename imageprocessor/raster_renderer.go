package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// RasterRenderer crops and encodes tiles in pure Go
type RasterRenderer struct {
	encoder png.Encoder
}

// NewRasterRenderer creates a renderer that encodes with maximum compression
func NewRasterRenderer() *RasterRenderer {
	return &RasterRenderer{
		encoder: png.Encoder{CompressionLevel: png.BestCompression},
	}
}

// Begin wraps src; no conversion is needed
func (r *RasterRenderer) Begin(src image.Image) (Canvas, error) {
	return &rasterCanvas{src: src, encoder: &r.encoder}, nil
}

type rasterCanvas struct {
	src     image.Image
	encoder *png.Encoder
}

func (c *rasterCanvas) Crop(r image.Rectangle) ([]byte, error) {
	if r.Empty() {
		return nil, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Copy(dst, image.Point{}, c.src, r, draw.Src, nil)

	var buf bytes.Buffer
	if err := c.encoder.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("cannot encode tile %v: %w", r, err)
	}
	return buf.Bytes(), nil
}

func (c *rasterCanvas) Close() error {
	return nil
}
