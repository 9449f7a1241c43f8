package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ParallelEpsilon is the minimum absolute cross-product determinant for two
// segments to be considered non-parallel by SegmentIntersect.
const ParallelEpsilon = 1e-10

// ProjectPointOnSegment returns the point on segment a-b closest to p. The
// projection parameter is clamped to [0,1]. A degenerate segment (a == b)
// yields a.
func ProjectPointOnSegment(p, a, b Point) Point {
	p2, _ := projectParam(p, a, b)
	return p2
}

func projectParam(p, a, b Point) (Point, float64) {
	ab := r2.Sub(b.Vec(), a.Vec())
	lenSq := r2.Norm2(ab)
	if lenSq == 0 {
		return a, 0
	}
	t := r2.Dot(r2.Sub(p.Vec(), a.Vec()), ab) / lenSq
	t = math.Max(0, math.Min(1, t))
	return FromVec(r2.Add(a.Vec(), r2.Scale(t, ab))), t
}

// PointToSegmentDistance returns the distance from p to its clamped projection
// on segment a-b.
func PointToSegmentDistance(p, a, b Point) float64 {
	return Distance(p, ProjectPointOnSegment(p, a, b))
}

// SegmentIntersect returns the intersection point of segments a-b and c-d.
// The second return value is false when the segments are parallel (the
// determinant is within ParallelEpsilon) or when the crossing lies outside
// either segment.
func SegmentIntersect(a, b, c, d Point) (Point, bool) {
	r := r2.Sub(b.Vec(), a.Vec())
	s := r2.Sub(d.Vec(), c.Vec())
	det := r2.Cross(r, s)
	if math.Abs(det) <= ParallelEpsilon {
		return Point{}, false
	}

	ac := r2.Sub(c.Vec(), a.Vec())
	t := r2.Cross(ac, s) / det
	u := r2.Cross(ac, r) / det
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false
	}
	return FromVec(r2.Add(a.Vec(), r2.Scale(t, r))), true
}

// ClosestPointOnPolyline finds the point on the polyline nearest to p.
// It returns the point, the index of the segment holding it and the distance.
// The index is -1 when the polyline has fewer than two points.
func ClosestPointOnPolyline(p Point, points []Point) (Point, int, float64) {
	best := Point{}
	bestIdx := -1
	bestDist := math.Inf(1)
	for i := 0; i+1 < len(points); i++ {
		q := ProjectPointOnSegment(p, points[i], points[i+1])
		if d := Distance(p, q); d < bestDist {
			best, bestIdx, bestDist = q, i, d
		}
	}
	return best, bestIdx, bestDist
}
