// Package systems provides the per-tick behaviors of organisms and the spatial index
// they query.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
)

// SpatialGrid buckets entities into fixed-size sectors so proximity queries only visit
// the sectors around the query point.
type SpatialGrid struct {
	sectorSize float64
	cols       int
	rows       int
	cells      [][]ecs.Entity // flat grid of entity lists
	maxRadius  float64        // largest radius inserted since the last Clear
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, sectorSize float64) *SpatialGrid {
	cols := int(width/sectorSize) + 1
	rows := int(height/sectorSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		sectorSize: sectorSize,
		cols:       cols,
		rows:       rows,
		cells:      cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.maxRadius = 0
}

// Insert adds an entity with the given radius to the sector containing pos.
func (g *SpatialGrid) Insert(e ecs.Entity, pos r2.Vec, radius float64) {
	col, row := g.sector(pos)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], e)
	if radius > g.maxRadius {
		g.maxRadius = radius
	}
}

// QueryInto appends to dst every entity bucketed in the neighbourhood of pos and
// returns the extended slice. The neighbourhood is the 3×3 block of sectors around
// pos, clamped to the grid. It only widens when radius plus the largest indexed radius
// exceeds one sector, so results never miss a true overlap.
//
// Results are candidates: callers still run the exact collision test.
func (g *SpatialGrid) QueryInto(dst []ecs.Entity, pos r2.Vec, radius float64) []ecs.Entity {
	ring := 1
	if reach := radius + g.maxRadius; reach > g.sectorSize {
		ring = int(math.Ceil(reach / g.sectorSize))
	}

	col, row := g.sector(pos)
	minCol, maxCol := max(col-ring, 0), min(col+ring, g.cols-1)
	minRow, maxRow := max(row-ring, 0), min(row+ring, g.rows-1)

	for r := minRow; r <= maxRow; r++ {
		for c := minCol; c <= maxCol; c++ {
			dst = append(dst, g.cells[r*g.cols+c]...)
		}
	}
	return dst
}

// Query returns the neighbourhood candidates of pos in a new slice.
func (g *SpatialGrid) Query(pos r2.Vec, radius float64) []ecs.Entity {
	return g.QueryInto(nil, pos, radius)
}

// Sector returns the grid coordinates of pos.
func (g *SpatialGrid) Sector(pos r2.Vec) (col, row int) {
	return g.sector(pos)
}

// sector returns floor(pos / sectorSize), clamped to valid range.
func (g *SpatialGrid) sector(pos r2.Vec) (col, row int) {
	col = int(math.Floor(pos.X / g.sectorSize))
	row = int(math.Floor(pos.Y / g.sectorSize))

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return col, row
}
