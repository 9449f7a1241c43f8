package topology

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
)

// EnsureResult reports where a point lives on a wire after EnsurePointOnWire.
// Index is -1 when the point is not on the wire.
type EnsureResult struct {
	Index    int
	Inserted bool
}

// EnsurePointOnWire makes sure the wire has a vertex at p.
//
// An existing vertex within tolerance is reused. Otherwise p is projected onto
// the nearest segment and, when the projection lies within tolerance, the
// projected point is spliced in. Calling it again with the same point finds
// the vertex added by the first call, so the wire never grows twice.
func EnsurePointOnWire(w *Wire, p geometry.Point, tolerance float64) EnsureResult {
	for i, q := range w.Points {
		if geometry.Distance(p, q) <= tolerance {
			return EnsureResult{Index: i}
		}
	}

	proj, seg, dist := geometry.ClosestPointOnPolyline(p, w.Points)
	if seg < 0 || dist > tolerance {
		return EnsureResult{Index: -1}
	}
	idx, err := InsertPointIntoWire(w, proj, seg)
	if err != nil {
		// seg comes from the wire itself, so this cannot happen.
		return EnsureResult{Index: -1}
	}
	return EnsureResult{Index: idx, Inserted: true}
}

// InsertPointIntoWire splices p between points[segIndex] and
// points[segIndex+1] and returns the index of p. If p coincides with either
// end of the segment nothing is inserted and that end's index is returned.
func InsertPointIntoWire(w *Wire, p geometry.Point, segIndex int) (int, error) {
	if segIndex < 0 || segIndex > len(w.Points)-2 {
		return -1, fmt.Errorf("%w: %d not in [0, %d]", ErrSegmentIndex, segIndex, len(w.Points)-2)
	}
	if w.Points[segIndex].Equal(p) {
		return segIndex, nil
	}
	if w.Points[segIndex+1].Equal(p) {
		return segIndex + 1, nil
	}

	pts := make([]geometry.Point, 0, len(w.Points)+1)
	pts = append(pts, w.Points[:segIndex+1]...)
	pts = append(pts, p)
	pts = append(pts, w.Points[segIndex+1:]...)
	w.Points = pts
	return segIndex + 1, nil
}

// ShouldMergeNodes reports whether two distinct nodes are within radius of
// each other. The test is symmetric and never true for a node and itself.
func ShouldMergeNodes(a, b *Node, radius float64) bool {
	if a == nil || b == nil || a == b || a.ID == b.ID {
		return false
	}
	return geometry.Distance(a.Position, b.Position) <= radius
}

// MergeNodes folds one node into the other. The node with the higher type
// priority (componentPin > junction > wireAnchor) survives and keeps its type
// and position; on a tie a survives. The survivor absorbs the attached wire
// ids of both nodes. It returns the survivor and the absorbed node.
func MergeNodes(a, b *Node) (survivor, absorbed *Node) {
	survivor, absorbed = a, b
	if b.Type.priority() > a.Type.priority() {
		survivor, absorbed = b, a
	}
	if survivor.AttachedWireIDs == nil {
		survivor.AttachedWireIDs = NewIDSet()
	}
	survivor.AttachedWireIDs.Union(absorbed.AttachedWireIDs)
	return survivor, absorbed
}

// FindClosestNode returns the node nearest to pos within maxDistance, or nil.
// Ties go to the node that appears first in nodes.
func FindClosestNode(pos geometry.Point, nodes []*Node, maxDistance float64) *Node {
	var best *Node
	bestDist := math.Inf(1)
	for _, n := range nodes {
		d := geometry.Distance(pos, n.Position)
		if d <= maxDistance && d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// WireHit describes the closest point on a wire to a query position.
type WireHit struct {
	Wire         *Wire
	Point        geometry.Point
	SegmentIndex int
	Distance     float64
}

// FindClosestPointOnWire returns the nearest point on any wire within
// maxDistance. Ties go to the wire that appears first.
func FindClosestPointOnWire(pos geometry.Point, wires []*Wire, maxDistance float64) (WireHit, bool) {
	best := WireHit{SegmentIndex: -1, Distance: math.Inf(1)}
	for _, w := range wires {
		p, seg, d := geometry.ClosestPointOnPolyline(pos, w.Points)
		if seg < 0 || d > maxDistance || d >= best.Distance {
			continue
		}
		best = WireHit{Wire: w, Point: p, SegmentIndex: seg, Distance: d}
	}
	if best.Wire == nil {
		return WireHit{SegmentIndex: -1}, false
	}
	return best, true
}
