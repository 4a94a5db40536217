// Package upload validates and decodes the single source image of a session.
package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"ninegrid/imageprocessor"
	"ninegrid/logging"
	"ninegrid/types"
)

// DefaultMaxSize is the upload size cap (10 MiB)
const DefaultMaxSize int64 = 10 * 1024 * 1024

// sniffLen is the number of leading bytes inspected for the content type
const sniffLen = 512

// File is an upload candidate; Data is filled in lazily by Decode
type File struct {
	Path     string
	Name     string
	MIMEType string
	Size     int64
	Data     []byte

	// ExtensionMismatch is set when the file name suggests another format
	ExtensionMismatch bool
}

// Inspect stats path and sniffs its content type without reading the whole file
func Inspect(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("cannot stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("path is a directory: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("cannot open file %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return File{}, fmt.Errorf("cannot read file %s: %w", path, err)
	}

	mimeType := http.DetectContentType(head[:n])
	mismatch := !imageprocessor.ExtensionMatches(path, mimeType)
	if mismatch {
		logging.LogWarning("%s has a %s extension but contains %s",
			path, imageprocessor.GetFileFormat(path), mimeType)
	}

	return File{
		Path:              path,
		Name:              filepath.Base(path),
		MIMEType:          mimeType,
		Size:              info.Size(),
		ExtensionMismatch: mismatch,
	}, nil
}

// FromBytes builds an upload candidate from in-memory contents
func FromBytes(name string, data []byte) File {
	return File{
		Name:     name,
		MIMEType: http.DetectContentType(data),
		Size:     int64(len(data)),
		Data:     data,
	}
}

// Validator enforces the format allow-list and size cap
type Validator struct {
	MaxSize int64
}

// NewValidator creates a validator; maxSize <= 0 uses DefaultMaxSize
func NewValidator(maxSize int64) *Validator {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Validator{MaxSize: maxSize}
}

// Validate rejects anything but PNG or JPEG up to MaxSize bytes
func (v *Validator) Validate(f File) error {
	if !imageprocessor.IsAllowedMIME(f.MIMEType) {
		return fmt.Errorf("%w: %s is %s, only PNG and JPEG are supported",
			types.ErrUnsupportedFormat, f.Name, f.MIMEType)
	}
	if f.Size > v.MaxSize {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d",
			types.ErrTooLarge, f.Name, f.Size, v.MaxSize)
	}
	return nil
}

// DecodeResult is the outcome of an asynchronous decode
type DecodeResult struct {
	Source types.SourceImage
	Err    error
}

// Decode reads and decodes f in the background. The returned channel yields
// exactly one result and is then closed.
func Decode(ctx context.Context, f File, dec imageprocessor.Decoder) <-chan DecodeResult {
	results := make(chan DecodeResult, 1)

	go func() {
		defer close(results)
		results <- decode(ctx, f, dec)
	}()

	return results
}

func decode(ctx context.Context, f File, dec imageprocessor.Decoder) DecodeResult {
	data := f.Data
	if data == nil {
		var err error
		data, err = os.ReadFile(f.Path)
		if err != nil {
			return DecodeResult{Err: fmt.Errorf("%w: cannot read %s: %w", types.ErrDecode, f.Name, err)}
		}
	}

	if err := ctx.Err(); err != nil {
		return DecodeResult{Err: fmt.Errorf("%w: %w", types.ErrDecode, err)}
	}

	img, err := dec.Decode(data)
	if err != nil {
		logging.LogError("Decode of %s failed: %v", f.Name, err)
		return DecodeResult{Err: fmt.Errorf("%w: %s: %w", types.ErrDecode, f.Name, err)}
	}

	b := img.Bounds()
	if b.Empty() {
		return DecodeResult{Err: fmt.Errorf("%w: %s has no pixels", types.ErrDecode, f.Name)}
	}

	return DecodeResult{Source: types.SourceImage{
		Name:     f.Name,
		MIMEType: f.MIMEType,
		Size:     f.Size,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Raster:   img,
	}}
}
