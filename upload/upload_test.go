package upload

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ninegrid/imageprocessor"
	"ninegrid/types"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	v := NewValidator(0)

	tests := []struct {
		name string
		file File
		want error
	}{
		{"15MB png", File{Name: "big.png", MIMEType: "image/png", Size: 15 * 1000 * 1000}, types.ErrTooLarge},
		{"gif", File{Name: "anim.gif", MIMEType: "image/gif", Size: 1024}, types.ErrUnsupportedFormat},
		{"8MB jpeg", File{Name: "photo.jpg", MIMEType: "image/jpeg", Size: 8 * 1024 * 1024}, nil},
		{"exactly cap", File{Name: "cap.png", MIMEType: "image/png", Size: DefaultMaxSize}, nil},
		{"one over cap", File{Name: "cap.png", MIMEType: "image/png", Size: DefaultMaxSize + 1}, types.ErrTooLarge},
		{"legacy jpg mime", File{Name: "a.jpg", MIMEType: "image/jpg", Size: 10}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.file)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestValidate_CustomCap(t *testing.T) {
	v := NewValidator(1024)
	assert.ErrorIs(t, v.Validate(File{MIMEType: "image/png", Size: 2048}), types.ErrTooLarge)
}

func TestInspect_SniffsContent(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "misnamed.gif")
	require.NoError(t, os.WriteFile(pngPath, encodePNG(t, 4, 4), 0644))
	f, err := Inspect(pngPath)
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.MIMEType)
	assert.Equal(t, "misnamed.gif", f.Name)
	assert.True(t, f.ExtensionMismatch)
	assert.Nil(t, f.Data)

	goodPath := filepath.Join(dir, "good.png")
	require.NoError(t, os.WriteFile(goodPath, encodePNG(t, 4, 4), 0644))
	f, err = Inspect(goodPath)
	require.NoError(t, err)
	assert.False(t, f.ExtensionMismatch)

	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black}), nil))
	gifPath := filepath.Join(dir, "real.png")
	require.NoError(t, os.WriteFile(gifPath, gifBuf.Bytes(), 0644))
	f, err = Inspect(gifPath)
	require.NoError(t, err)
	assert.ErrorIs(t, NewValidator(0).Validate(f), types.ErrUnsupportedFormat)

	_, err = Inspect(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestDecode_FromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 9, 6), 0644))

	f, err := Inspect(path)
	require.NoError(t, err)

	res := <-Decode(context.Background(), f, imageprocessor.NewRasterDecoder())
	require.NoError(t, res.Err)
	assert.Equal(t, 9, res.Source.Width)
	assert.Equal(t, 6, res.Source.Height)
	assert.Equal(t, "src.png", res.Source.Name)
	assert.NotNil(t, res.Source.Raster)
}

func TestDecode_Failure(t *testing.T) {
	f := File{Name: "broken.png", MIMEType: "image/png", Data: []byte("\x89PNG\r\n\x1a\ntruncated")}

	results := Decode(context.Background(), f, imageprocessor.NewRasterDecoder())
	res := <-results
	assert.ErrorIs(t, res.Err, types.ErrDecode)

	_, open := <-results
	assert.False(t, open, "channel closes after the single result")
}

func TestDecode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := <-Decode(ctx, FromBytes("a.png", encodePNG(t, 3, 3)), imageprocessor.NewRasterDecoder())
	assert.ErrorIs(t, res.Err, types.ErrDecode)
	assert.ErrorIs(t, res.Err, context.Canceled)
}
