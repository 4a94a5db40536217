//go:build !nogocv

package imageprocessor

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

// OpenCVAvailable reports whether the gocv backend is compiled in
const OpenCVAvailable = true

// MatRenderer crops and encodes tiles with OpenCV
type MatRenderer struct{}

// NewMatRenderer creates a renderer backed by gocv
func NewMatRenderer() *MatRenderer {
	return &MatRenderer{}
}

// Begin converts src into a BGRA Mat once for all nine crops
func (r *MatRenderer) Begin(src image.Image) (Canvas, error) {
	// ImageToMatRGBA keeps four channels only for straight-alpha NRGBA input
	nrgba, ok := src.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(src.Bounds())
		draw.Draw(nrgba, nrgba.Bounds(), src, src.Bounds().Min, draw.Src)
	}

	mat, err := gocv.ImageToMatRGBA(nrgba)
	if err != nil {
		return nil, fmt.Errorf("cannot convert source to mat: %w", err)
	}

	bgra, err := toBGRA8(mat)
	mat.Close()
	if err != nil {
		return nil, fmt.Errorf("cannot convert source to mat: %w", err)
	}

	return &matCanvas{mat: bgra, origin: src.Bounds().Min}, nil
}

type matCanvas struct {
	mat    gocv.Mat
	origin image.Point
}

func (c *matCanvas) Crop(r image.Rectangle) ([]byte, error) {
	if r.Empty() {
		return nil, nil
	}

	// Mat coordinates start at zero regardless of the source bounds
	region := c.mat.Region(r.Sub(c.origin))
	defer region.Close()

	// Region shares memory with the source; encode from an owned copy
	tile := region.Clone()
	defer tile.Close()

	buf, err := gocv.IMEncodeWithParams(gocv.PNGFileExt, tile, []int{int(gocv.IMWritePngCompression), 9})
	if err != nil {
		return nil, fmt.Errorf("cannot encode tile %v: %w", r, err)
	}
	defer buf.Close()

	src := buf.GetBytes()
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

func (c *matCanvas) Close() error {
	return c.mat.Close()
}
