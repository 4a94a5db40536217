package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"ninegrid/logging"

	"github.com/rwcarlsen/goexif/exif"
)

// RasterDecoder decodes PNG and JPEG without native dependencies
type RasterDecoder struct{}

// NewRasterDecoder creates a pure Go decoder
func NewRasterDecoder() *RasterDecoder {
	return &RasterDecoder{}
}

// Decode decodes data with the registered image codecs. JPEG EXIF orientation
// is applied so both decoders agree on tile geometry.
func (d *RasterDecoder) Decode(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	switch format {
	case "png":
		return img, nil
	case "jpeg":
		return applyOrientation(img, jpegOrientation(data)), nil
	default:
		return nil, fmt.Errorf("failed to decode image: unexpected format %s", format)
	}
}

// jpegOrientation reads the EXIF orientation tag, 1 when absent or unreadable
func jpegOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		logging.DebugLog("Ignoring invalid EXIF orientation %v", tag)
		return 1
	}
	return o
}

// applyOrientation returns img transformed to upright for an EXIF orientation
func applyOrientation(img image.Image, orientation int) image.Image {
	if orientation <= 1 || orientation > 8 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			var sx, sy int
			switch orientation {
			case 2:
				sx, sy = w-1-x, y
			case 3:
				sx, sy = w-1-x, h-1-y
			case 4:
				sx, sy = x, h-1-y
			case 5:
				sx, sy = y, x
			case 6:
				sx, sy = y, h-1-x
			case 7:
				sx, sy = w-1-y, h-1-x
			case 8:
				sx, sy = w-1-y, x
			}
			dst.Set(x, y, img.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return dst
}
