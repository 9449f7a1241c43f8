package geometry

import "math"

type cellKey struct {
	x, y int
}

type spatialEntry[T any] struct {
	pos  Point
	item T
}

// SpatialHash buckets items into square cells of a fixed size. QueryNear only
// looks at the cell containing the query position and its eight neighbours,
// so callers must still check the exact distance of each candidate.
type SpatialHash[T any] struct {
	cellSize float64
	cells    map[cellKey][]spatialEntry[T]
	count    int
}

// NewSpatialHash creates an empty index. A non-positive cell size falls back
// to 1.
func NewSpatialHash[T any](cellSize float64) *SpatialHash[T] {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialHash[T]{
		cellSize: cellSize,
		cells:    make(map[cellKey][]spatialEntry[T]),
	}
}

func (h *SpatialHash[T]) key(p Point) cellKey {
	return cellKey{
		x: int(math.Floor(p.X / h.cellSize)),
		y: int(math.Floor(p.Y / h.cellSize)),
	}
}

// Insert adds item at pos.
func (h *SpatialHash[T]) Insert(pos Point, item T) {
	k := h.key(pos)
	h.cells[k] = append(h.cells[k], spatialEntry[T]{pos: pos, item: item})
	h.count++
}

// QueryNear returns every item stored in the cell of pos or an adjacent cell.
func (h *SpatialHash[T]) QueryNear(pos Point) []T {
	k := h.key(pos)
	var out []T
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, e := range h.cells[cellKey{x: k.x + dx, y: k.y + dy}] {
				out = append(out, e.item)
			}
		}
	}
	return out
}

// Len returns the number of inserted items.
func (h *SpatialHash[T]) Len() int {
	return h.count
}

// Clear removes all items.
func (h *SpatialHash[T]) Clear() {
	h.cells = make(map[cellKey][]spatialEntry[T])
	h.count = 0
}
