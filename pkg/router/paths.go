package router

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/topology"
)

// Mode selects how a wire path is built between its start and end points.
type Mode uint8

const (
	// ModeFree draws a straight line.
	ModeFree Mode = iota
	// ModeSchematic draws one right-angle bend.
	ModeSchematic
	// ModeStar bends once, offset perpendicular to the straight line.
	ModeStar
	// ModeRouting searches a grid path around other nodes.
	ModeRouting
)

var modeNames = map[Mode]string{
	ModeFree:      "free",
	ModeSchematic: "schematic",
	ModeStar:      "star",
	ModeRouting:   "routing",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("router: unknown mode %q", s)
}

// FreePath returns the straight line from start to end.
func FreePath(start, end geometry.Point) []geometry.Point {
	return []geometry.Point{start, end}
}

// SchematicPath returns a path with one right-angle bend. The first leg runs
// along the axis with the larger delta unless invert is set. Axis-aligned
// input collapses to a straight line.
func SchematicPath(start, end geometry.Point, invert bool) []geometry.Point {
	dx := end.X - start.X
	dy := end.Y - start.Y
	if dx == 0 || dy == 0 {
		return FreePath(start, end)
	}

	horizontalFirst := math.Abs(dx) >= math.Abs(dy)
	if invert {
		horizontalFirst = !horizontalFirst
	}
	bend := geometry.Pt(start.X, end.Y)
	if horizontalFirst {
		bend = geometry.Pt(end.X, start.Y)
	}
	return []geometry.Point{start, bend, end}
}

// StarPath bends once at the midpoint, pushed sideways by ratio times the line
// length, never more than maxOffset.
func StarPath(start, end geometry.Point, ratio, maxOffset float64) []geometry.Point {
	length := geometry.Distance(start, end)
	if length == 0 {
		return FreePath(start, end)
	}
	offset := math.Min(length*ratio, maxOffset)
	if offset <= 0 {
		return FreePath(start, end)
	}
	d := end.Sub(start).Scale(1 / length)
	normal := geometry.Pt(-d.Y, d.X)
	mid := start.Add(end).Scale(0.5)
	return []geometry.Point{start, mid.Add(normal.Scale(offset)), end}
}

// buildPath applies the router's current mode. Routing falls back to the
// schematic policy when the grid search fails.
func (r *Router) buildPath(start, end geometry.Point) []geometry.Point {
	var path []geometry.Point
	switch r.mode {
	case ModeSchematic:
		path = SchematicPath(start, end, r.invert)
	case ModeStar:
		path = StarPath(start, end, r.opts.StarBendRatio, r.opts.StarBendCap)
	case ModeRouting:
		var ok bool
		path, ok = RoutePath(start, end, r.obstacles(), r.opts.GridSize, r.opts.MaxExpansions)
		if !ok {
			r.log.Debug("grid route failed, using schematic path", "start", start, "end", end)
			path = SchematicPath(start, end, r.invert)
		}
	default:
		path = FreePath(start, end)
	}
	return topology.RemoveDuplicatePoints(path)
}

// obstacles returns the positions of every node other than the draw
// endpoints.
func (r *Router) obstacles() []geometry.Point {
	var out []geometry.Point
	for _, n := range r.circuit.Nodes() {
		if r.startNode != nil && n.ID == r.startNode.ID {
			continue
		}
		if r.endNode != nil && n.ID == r.endNode.ID {
			continue
		}
		out = append(out, n.Position)
	}
	return out
}
