// Package grid computes the 3x3 partition geometry of a source raster.
package grid

import (
	"image"

	"ninegrid/types"
)

// Cell describes where one tile comes from in the source raster
type Cell struct {
	Position types.Position
	Size     types.Size
	Region   types.Region
	Bounds   image.Rectangle
}

// Index returns the row-major index of the cell
func (c Cell) Index() int {
	return c.Position.Index()
}

// Layout partitions bounds into a row-major 3x3 grid.
//
// Fractional regions are computed from absolute offsets (col*W/3), never by
// accumulating cell sizes, so the nine regions tile the bounds exactly.
// Pixel bounds are floored: origin floor(col*W/3), extent floor(W/3) for
// every cell, so bottom/right cells are not size-compensated and up to two
// trailing rows/columns of the source are not copied.
func Layout(bounds image.Rectangle) [types.TileCount]Cell {
	var cells [types.TileCount]Cell

	w, h := bounds.Dx(), bounds.Dy()
	cellW := float64(w) / types.GridSize
	cellH := float64(h) / types.GridSize
	pixW, pixH := w/types.GridSize, h/types.GridSize

	for row := 0; row < types.GridSize; row++ {
		for col := 0; col < types.GridSize; col++ {
			pos := types.Position{Row: row, Col: col}

			x0 := bounds.Min.X + col*w/types.GridSize
			y0 := bounds.Min.Y + row*h/types.GridSize
			pixel := image.Rect(x0, y0, x0+pixW, y0+pixH).Intersect(bounds)

			cells[pos.Index()] = Cell{
				Position: pos,
				Size:     types.Size{Width: cellW, Height: cellH},
				Region: types.Region{
					X0: float64(col) * float64(w) / types.GridSize,
					Y0: float64(row) * float64(h) / types.GridSize,
					X1: float64(col+1) * float64(w) / types.GridSize,
					Y1: float64(row+1) * float64(h) / types.GridSize,
				},
				Bounds: pixel,
			}
		}
	}

	return cells
}

// Covers reports whether the fractional regions of cells tile [0,w)x[0,h)
// exactly once: adjacent edges coincide and the outer edges match the bounds.
func Covers(cells [types.TileCount]Cell, w, h int) bool {
	for _, c := range cells {
		r := c.Region
		if c.Position.Col == 0 && r.X0 != 0 {
			return false
		}
		if c.Position.Row == 0 && r.Y0 != 0 {
			return false
		}
		if c.Position.Col == types.GridSize-1 && r.X1 != float64(w) {
			return false
		}
		if c.Position.Row == types.GridSize-1 && r.Y1 != float64(h) {
			return false
		}
		if c.Position.Col < types.GridSize-1 {
			right := cells[c.Index()+1].Region
			if right.X0 != r.X1 || right.Y0 != r.Y0 || right.Y1 != r.Y1 {
				return false
			}
		}
		if c.Position.Row < types.GridSize-1 {
			below := cells[c.Index()+types.GridSize].Region
			if below.Y0 != r.Y1 || below.X0 != r.X0 || below.X1 != r.X1 {
				return false
			}
		}
	}
	return true
}
