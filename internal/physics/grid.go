package physics

import "math"

// SpatialGrid is a uniform grid for broad-phase collision detection in a
// bounded field. Each item is stored in every cell its bounding box covers,
// so items of any size are found by a query over the same area. Boxes
// reaching outside the field are clamped to the border cells.
type SpatialGrid struct {
	invCellSize float64
	cols        int
	rows        int
	cells       [][]int // item indices per cell, reused between frames

	// seen[i] == stamp marks item i as already visited by the current query.
	seen  []uint32
	stamp uint32
}

// NewSpatialGrid creates a grid of cellSize squares covering a
// width-by-height field.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := max(int(math.Ceil(width/cellSize)), 1)
	rows := max(int(math.Ceil(height/cellSize)), 1)
	return &SpatialGrid{
		invCellSize: 1 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       make([][]int, cols*rows),
	}
}

// Clear removes all items without releasing cell memory.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds item index with the bounding box (x, y, w, h).
func (g *SpatialGrid) Insert(x, y, w, h float64, index int) {
	c0, r0, c1, r1 := g.span(x, y, w, h)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			i := r*g.cols + c
			g.cells[i] = append(g.cells[i], index)
		}
	}
	if index >= len(g.seen) {
		g.seen = append(g.seen, make([]uint32, index+1-len(g.seen))...)
	}
}

// Query calls fn once for every item sharing a cell with the box
// (x, y, w, h). Iteration stops when fn returns true.
func (g *SpatialGrid) Query(x, y, w, h float64, fn func(index int) bool) {
	g.stamp++
	if g.stamp == 0 {
		clear(g.seen)
		g.stamp = 1
	}
	c0, r0, c1, r1 := g.span(x, y, w, h)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			for _, item := range g.cells[r*g.cols+c] {
				if g.seen[item] == g.stamp {
					continue
				}
				g.seen[item] = g.stamp
				if fn(item) {
					return
				}
			}
		}
	}
}

// span returns the inclusive cell range covered by a box.
func (g *SpatialGrid) span(x, y, w, h float64) (c0, r0, c1, r1 int) {
	c0, r0 = g.cell(x, y)
	c1, r1 = g.cell(x+w, y+h)
	return c0, r0, c1, r1
}

func (g *SpatialGrid) cell(x, y float64) (col, row int) {
	col = min(max(int(math.Floor(x*g.invCellSize)), 0), g.cols-1)
	row = min(max(int(math.Floor(y*g.invCellSize)), 0), g.rows-1)
	return col, row
}
