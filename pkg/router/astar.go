package router

import (
	"container/heap"
	"math"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
)

// routeMargin is the number of empty cells the search may stray beyond the
// bounding box of the endpoints and obstacles.
const routeMargin = 4

type cell struct {
	x, y int
}

func toCell(p geometry.Point, grid float64) cell {
	return cell{int(math.Round(p.X / grid)), int(math.Round(p.Y / grid))}
}

func manhattan(a, b cell) float64 {
	return math.Abs(float64(a.x-b.x)) + math.Abs(float64(a.y-b.y))
}

// RoutePath finds an orthogonal grid path from start to end that avoids the
// cells occupied by obstacles. Points are quantised to a grid of the given
// size; the returned path begins and ends at the exact start and end points
// and keeps only the corners of the grid route.
//
// The search gives up after maxExpansions node expansions and returns false.
func RoutePath(start, end geometry.Point, obstacles []geometry.Point, grid float64, maxExpansions int) ([]geometry.Point, bool) {
	if grid <= 0 {
		return nil, false
	}
	startCell := toCell(start, grid)
	endCell := toCell(end, grid)
	if startCell == endCell {
		return FreePath(start, end), true
	}

	minX, maxX := min(startCell.x, endCell.x), max(startCell.x, endCell.x)
	minY, maxY := min(startCell.y, endCell.y), max(startCell.y, endCell.y)
	blocked := make(map[cell]bool, len(obstacles))
	for _, o := range obstacles {
		c := toCell(o, grid)
		if c == startCell || c == endCell {
			continue
		}
		blocked[c] = true
		minX, maxX = min(minX, c.x), max(maxX, c.x)
		minY, maxY = min(minY, c.y), max(maxY, c.y)
	}
	minX, maxX = minX-routeMargin, maxX+routeMargin
	minY, maxY = minY-routeMargin, maxY+routeMargin

	gScore := map[cell]float64{startCell: 0}
	cameFrom := make(map[cell]cell)
	visited := make(map[cell]bool)

	pq := &pathQueue{}
	heap.Init(pq)
	heap.Push(pq, &pathItem{c: startCell, f: manhattan(startCell, endCell)})

	dx := [4]int{1, -1, 0, 0}
	dy := [4]int{0, 0, 1, -1}

	expansions := 0
	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pathItem)
		cur := item.c

		if cur == endCell {
			return cellsToPath(reconstruct(cameFrom, endCell), start, end, grid), true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true

		expansions++
		if maxExpansions > 0 && expansions > maxExpansions {
			return nil, false
		}

		curG := gScore[cur]
		for d := 0; d < 4; d++ {
			next := cell{cur.x + dx[d], cur.y + dy[d]}
			if next.x < minX || next.x > maxX || next.y < minY || next.y > maxY {
				continue
			}
			if blocked[next] || visited[next] {
				continue
			}
			tentativeG := curG + 1
			prevG, exists := gScore[next]
			if !exists || tentativeG < prevG {
				gScore[next] = tentativeG
				cameFrom[next] = cur
				heap.Push(pq, &pathItem{c: next, f: tentativeG + manhattan(next, endCell)})
			}
		}
	}
	return nil, false
}

func reconstruct(cameFrom map[cell]cell, end cell) []cell {
	var cells []cell
	c := end
	for {
		cells = append(cells, c)
		prev, ok := cameFrom[c]
		if !ok {
			break
		}
		c = prev
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}

// cellsToPath maps cells back to world coordinates, keeping only the cells
// where the direction changes, and pins the two ends to the true endpoints.
func cellsToPath(cells []cell, start, end geometry.Point, grid float64) []geometry.Point {
	path := []geometry.Point{start}
	for i := 1; i < len(cells)-1; i++ {
		a, b, c := cells[i-1], cells[i], cells[i+1]
		if (b.x-a.x) == (c.x-b.x) && (b.y-a.y) == (c.y-b.y) {
			continue
		}
		path = append(path, geometry.Pt(float64(b.x)*grid, float64(b.y)*grid))
	}
	return append(path, end)
}

// pathItem is a cell in the A* priority queue.
type pathItem struct {
	c     cell
	f     float64
	index int
}

type pathQueue []*pathItem

func (pq pathQueue) Len() int { return len(pq) }

func (pq pathQueue) Less(i, j int) bool { return pq[i].f < pq[j].f }

func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *pathQueue) Push(x any) {
	item := x.(*pathItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}
