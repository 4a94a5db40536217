package types

import (
	"fmt"
	"image"
)

// GridSize is the number of rows and columns in the partition grid
const GridSize = 3

// TileCount is the number of tiles produced by a single partition
const TileCount = GridSize * GridSize

// DefaultNamePrefix is the file name prefix used for exported tiles
const DefaultNamePrefix = "ninegrid"

// Position holds the zero-based row and column of a tile
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Index returns the row-major index of the position
func (p Position) Index() int {
	return p.Row*GridSize + p.Col
}

// String renders the position 1-indexed, e.g. "2-3"
func (p Position) String() string {
	return fmt.Sprintf("%d-%d", p.Row+1, p.Col+1)
}

// Size is a real-valued extent; cells of a non-divisible image are fractional
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Region is a fractional half-open rectangle [X0,X1) x [Y0,Y1) in source pixels
type Region struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Area returns the fractional area of the region
func (r Region) Area() float64 {
	return (r.X1 - r.X0) * (r.Y1 - r.Y0)
}

// SourceImage holds the uploaded file and its decoded raster
type SourceImage struct {
	Name     string      `json:"name"`
	MIMEType string      `json:"mime_type"`
	Size     int64       `json:"size"`
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Raster   image.Image `json:"-"`
}

// Tile is one of the nine sub-images of a partition
type Tile struct {
	Index        int             `json:"index"`
	Position     Position        `json:"position"`
	Size         Size            `json:"size"`
	Region       Region          `json:"region"`
	Bounds       image.Rectangle `json:"bounds"`
	Pixels       []byte          `json:"-"`
	Handle       string          `json:"handle"`
	DownloadName string          `json:"download_name"`
}

// Empty reports whether the tile covers no pixels
func (t Tile) Empty() bool {
	return t.Bounds.Empty()
}

// DownloadName builds the export file name for a grid position
func DownloadName(prefix string, pos Position) string {
	if prefix == "" {
		prefix = DefaultNamePrefix
	}
	return fmt.Sprintf("%s_%s.png", prefix, pos)
}
