//go:build !nogocv

package imageprocessor

import (
	"bytes"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// MatDecoder decodes with OpenCV
type MatDecoder struct{}

// NewMatDecoder creates a decoder backed by gocv
func NewMatDecoder() *MatDecoder {
	return &MatDecoder{}
}

// Decode decodes data with gocv.IMDecode and converts the result to an image.Image.
//
// PNG is read unchanged so alpha survives. JPEG has no alpha and is read as
// colour, which applies its EXIF orientation.
func (d *MatDecoder) Decode(data []byte) (image.Image, error) {
	flags := gocv.IMReadColor
	if bytes.HasPrefix(data, pngSignature) {
		flags = gocv.IMReadUnchanged
	}

	mat, err := gocv.IMDecode(data, flags)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("failed to decode image: empty result")
	}

	bgra, err := toBGRA8(mat)
	if err != nil {
		return nil, fmt.Errorf("failed to convert decoded image: %w", err)
	}
	defer bgra.Close()

	img, err := bgra.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert decoded image: %w", err)
	}
	return img, nil
}

// toBGRA8 returns an owned 8-bit, 4-channel BGRA copy of mat
func toBGRA8(mat gocv.Mat) (gocv.Mat, error) {
	src := mat.Clone()

	// 16-bit PNGs
	if mat.ElemSize()/mat.Channels() == 2 {
		u8 := gocv.NewMat()
		src.ConvertToWithParams(&u8, gocv.MatTypeCV8U, 1.0/257, 0)
		src.Close()
		if u8.Empty() {
			u8.Close()
			return gocv.NewMat(), fmt.Errorf("cannot convert 16-bit image to 8-bit")
		}
		src = u8
	}

	switch src.Channels() {
	case 4:
		return src, nil
	case 1, 3:
		code := gocv.ColorBGRToBGRA
		if src.Channels() == 1 {
			code = gocv.ColorGrayToBGRA
		}
		dst := gocv.NewMat()
		err := gocv.CvtColor(src, &dst, code)
		src.Close()
		if err != nil {
			dst.Close()
			return gocv.NewMat(), err
		}
		return dst, nil
	case 2:
		// Gray + alpha
		planes := gocv.Split(src)
		src.Close()
		defer func() {
			for _, p := range planes {
				p.Close()
			}
		}()
		dst := gocv.NewMat()
		gocv.Merge([]gocv.Mat{planes[0], planes[0], planes[0], planes[1]}, &dst)
		if dst.Empty() {
			dst.Close()
			return gocv.NewMat(), fmt.Errorf("cannot expand gray+alpha image")
		}
		return dst, nil
	default:
		n := src.Channels()
		src.Close()
		return gocv.NewMat(), fmt.Errorf("unsupported channel count %d", n)
	}
}
