// Package imageprocessor decodes uploaded images and renders grid tiles.
package imageprocessor

import "image"

// Decoder turns an encoded upload into a raster
type Decoder interface {
	// Decode decodes the raw file contents
	Decode(data []byte) (image.Image, error)
}

// Renderer copies source regions onto fresh surfaces and encodes them
type Renderer interface {
	// Begin prepares src for a series of crops
	Begin(src image.Image) (Canvas, error)
}

// Canvas renders crops of a single source raster
type Canvas interface {
	// Crop copies r into a new surface and returns it PNG-encoded
	Crop(r image.Rectangle) ([]byte, error)

	// Close releases any native resources held for the source
	Close() error
}
