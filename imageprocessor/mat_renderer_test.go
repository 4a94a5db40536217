//go:build !nogocv

package imageprocessor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// translucent is a 6x6 image with a red, a transparent and a half-alpha pixel
func translucent() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: uint8(40 * y), B: uint8(40 * x), A: 255})
		}
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(3, 2, color.NRGBA{A: 0})
	img.SetNRGBA(5, 5, color.NRGBA{R: 200, G: 30, B: 90, A: 128})
	return img
}

func TestMatPipeline_PreservesColourAndAlpha(t *testing.T) {
	src := translucent()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	decoded, err := NewMatDecoder().Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), decoded.Bounds())
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			assert.Equal(t, src.NRGBAAt(x, y), color.NRGBAModel.Convert(decoded.At(x, y)), "decoded %d,%d", x, y)
		}
	}

	tiles, err := NewPartitioner(NewMatRenderer(), "").Partition(context.Background(), decoded)
	require.NoError(t, err)

	for _, tile := range tiles {
		img := decodePNG(t, tile.Pixels)
		require.Equal(t, image.Pt(2, 2), img.Bounds().Size())
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				want := src.NRGBAAt(tile.Bounds.Min.X+x, tile.Bounds.Min.Y+y)
				assert.Equal(t, want, color.NRGBAModel.Convert(img.At(x, y)),
					"tile %s at %d,%d", tile.Position, x, y)
			}
		}
	}

	red := decodePNG(t, tiles[0].Pixels)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, color.NRGBAModel.Convert(red.At(0, 0)))
	clear := decodePNG(t, tiles[4].Pixels)
	assert.Zero(t, color.NRGBAModel.Convert(clear.At(1, 0)).(color.NRGBA).A)
}

func TestMatRenderer_AcceptsNonNRGBASources(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 9, 9))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i * 3)
	}

	tiles, err := NewPartitioner(NewMatRenderer(), "").Partition(context.Background(), gray)
	require.NoError(t, err)
	for _, tile := range tiles {
		img := decodePNG(t, tile.Pixels)
		want := color.NRGBAModel.Convert(gray.At(tile.Bounds.Min.X, tile.Bounds.Min.Y))
		assert.Equal(t, want, color.NRGBAModel.Convert(img.At(0, 0)), "tile %s", tile.Position)
	}
}

func TestRenderers_AgreeOnGradient(t *testing.T) {
	src := gradient(100, 100)

	matTiles, err := NewPartitioner(NewMatRenderer(), "").Partition(context.Background(), src)
	require.NoError(t, err)
	rasterTiles, err := NewPartitioner(NewRasterRenderer(), "").Partition(context.Background(), src)
	require.NoError(t, err)

	for i := range matTiles {
		a := decodePNG(t, matTiles[i].Pixels)
		b := decodePNG(t, rasterTiles[i].Pixels)
		require.Equal(t, b.Bounds(), a.Bounds(), "tile %d", i)
		for y := 0; y < 33; y++ {
			for x := 0; x < 33; x++ {
				if !assert.Equal(t, color.NRGBAModel.Convert(b.At(x, y)), color.NRGBAModel.Convert(a.At(x, y)),
					"tile %d at %d,%d", i, x, y) {
					return
				}
			}
		}
	}
}
