package imageprocessor

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

// corners marks the top-left red and top-right green on a 3x2 image
func corners() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(2, 0, color.NRGBA{G: 255, A: 255})
	return img
}

func TestApplyOrientation(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	green := color.NRGBA{G: 255, A: 255}

	tests := []struct {
		orientation int
		size        image.Point
		redAt       image.Point
		greenAt     image.Point
	}{
		{1, image.Pt(3, 2), image.Pt(0, 0), image.Pt(2, 0)},
		{2, image.Pt(3, 2), image.Pt(2, 0), image.Pt(0, 0)},
		{3, image.Pt(3, 2), image.Pt(2, 1), image.Pt(0, 1)},
		{4, image.Pt(3, 2), image.Pt(0, 1), image.Pt(2, 1)},
		{5, image.Pt(2, 3), image.Pt(0, 0), image.Pt(0, 2)},
		{6, image.Pt(2, 3), image.Pt(1, 0), image.Pt(1, 2)},
		{7, image.Pt(2, 3), image.Pt(1, 2), image.Pt(1, 0)},
		{8, image.Pt(2, 3), image.Pt(0, 2), image.Pt(0, 0)},
	}

	for _, tt := range tests {
		out := applyOrientation(corners(), tt.orientation)
		assert.Equal(t, tt.size, out.Bounds().Size(), "orientation %d", tt.orientation)
		assert.Equal(t, red, color.NRGBAModel.Convert(out.At(tt.redAt.X, tt.redAt.Y)), "orientation %d", tt.orientation)
		assert.Equal(t, green, color.NRGBAModel.Convert(out.At(tt.greenAt.X, tt.greenAt.Y)), "orientation %d", tt.orientation)
	}
}

func TestJPEGOrientation_MissingExif(t *testing.T) {
	assert.Equal(t, 1, jpegOrientation([]byte("\xff\xd8\xff\xd9")))
}
