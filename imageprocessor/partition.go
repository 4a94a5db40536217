package imageprocessor

import (
	"context"
	"fmt"
	"image"

	"ninegrid/grid"
	"ninegrid/logging"
	"ninegrid/types"
)

// Partitioner splits a raster into the nine tiles of a 3x3 grid
type Partitioner struct {
	renderer Renderer
	prefix   string
}

// NewPartitioner creates a partitioner; an empty prefix uses types.DefaultNamePrefix
func NewPartitioner(renderer Renderer, prefix string) *Partitioner {
	if prefix == "" {
		prefix = types.DefaultNamePrefix
	}
	return &Partitioner{renderer: renderer, prefix: prefix}
}

// Partition renders and encodes the nine tiles of src in row-major order.
// The source is never modified; a failure returns no tiles at all.
func (p *Partitioner) Partition(ctx context.Context, src image.Image) ([]types.Tile, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: %w", types.ErrPartition, types.ErrNoImage)
	}

	canvas, err := p.renderer.Begin(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrPartition, err)
	}
	defer canvas.Close()

	cells := grid.Layout(src.Bounds())
	tiles := make([]types.Tile, 0, types.TileCount)

	for _, cell := range cells {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrPartition, err)
		}

		pixels, err := canvas.Crop(cell.Bounds)
		if err != nil {
			return nil, fmt.Errorf("%w: tile %s: %w", types.ErrPartition, cell.Position, err)
		}

		if cell.Bounds.Empty() {
			logging.DebugLog("Tile %s is zero-area", cell.Position)
		}

		tiles = append(tiles, types.Tile{
			Index:        cell.Index(),
			Position:     cell.Position,
			Size:         cell.Size,
			Region:       cell.Region,
			Bounds:       cell.Bounds,
			Pixels:       pixels,
			DownloadName: types.DownloadName(p.prefix, cell.Position),
		})
	}

	logging.DebugLog("Partitioned %dx%d source into %d tiles",
		src.Bounds().Dx(), src.Bounds().Dy(), len(tiles))

	return tiles, nil
}
