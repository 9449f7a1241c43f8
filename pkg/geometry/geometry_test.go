package geometry

import (
	"math"
	"sort"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDistanceSymmetric(t *testing.T) {
	cases := []struct {
		a, b Point
		want float64
	}{
		{Pt(0, 0), Pt(3, 4), 5},
		{Pt(-1, -1), Pt(2, 3), 5},
		{Pt(7, 7), Pt(7, 7), 0},
	}
	for _, tc := range cases {
		if got := Distance(tc.a, tc.b); !approx(got, tc.want) {
			t.Errorf("Distance(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
		if Distance(tc.a, tc.b) != Distance(tc.b, tc.a) {
			t.Errorf("Distance not symmetric for %v, %v", tc.a, tc.b)
		}
	}
	if d := Distance(Pt(1.5, -2), Pt(1.5, -2)); d != 0 {
		t.Fatalf("Distance(a, a) = %v, want 0", d)
	}
}

func TestProjectPointOnSegment(t *testing.T) {
	cases := []struct {
		name    string
		p, a, b Point
		want    Point
	}{
		{"interior", Pt(5, 5), Pt(0, 0), Pt(10, 0), Pt(5, 0)},
		{"clamped start", Pt(-5, 3), Pt(0, 0), Pt(10, 0), Pt(0, 0)},
		{"clamped end", Pt(15, -3), Pt(0, 0), Pt(10, 0), Pt(10, 0)},
		{"degenerate", Pt(4, 4), Pt(2, 2), Pt(2, 2), Pt(2, 2)},
	}
	for _, tc := range cases {
		got := ProjectPointOnSegment(tc.p, tc.a, tc.b)
		if !approx(got.X, tc.want.X) || !approx(got.Y, tc.want.Y) {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPointToSegmentDistance(t *testing.T) {
	if d := PointToSegmentDistance(Pt(5, 3), Pt(0, 0), Pt(10, 0)); !approx(d, 3) {
		t.Fatalf("distance = %v, want 3", d)
	}
	if d := PointToSegmentDistance(Pt(13, 4), Pt(0, 0), Pt(10, 0)); !approx(d, 5) {
		t.Fatalf("distance past end = %v, want 5", d)
	}
}

func TestSegmentIntersect(t *testing.T) {
	p, ok := SegmentIntersect(Pt(0, 0), Pt(10, 10), Pt(0, 10), Pt(10, 0))
	if !ok {
		t.Fatalf("expected crossing segments to intersect")
	}
	if !approx(p.X, 5) || !approx(p.Y, 5) {
		t.Fatalf("intersection = %v, want (5,5)", p)
	}

	if _, ok := SegmentIntersect(Pt(0, 0), Pt(10, 0), Pt(0, 5), Pt(10, 5)); ok {
		t.Fatalf("parallel segments must not intersect")
	}
	if _, ok := SegmentIntersect(Pt(0, 0), Pt(10, 0), Pt(0, 0), Pt(10, 0)); ok {
		t.Fatalf("collinear segments must not intersect")
	}
	if _, ok := SegmentIntersect(Pt(0, 0), Pt(4, 4), Pt(0, 10), Pt(10, 0)); ok {
		t.Fatalf("segments that would cross beyond their ends must not intersect")
	}

	// Touching at an endpoint counts as an intersection.
	p, ok = SegmentIntersect(Pt(0, 0), Pt(10, 0), Pt(10, -5), Pt(10, 5))
	if !ok || !approx(p.X, 10) || !approx(p.Y, 0) {
		t.Fatalf("endpoint touch = %v, %v; want (10,0), true", p, ok)
	}
}

func TestClosestPointOnPolyline(t *testing.T) {
	pts := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10)}
	p, idx, d := ClosestPointOnPolyline(Pt(12, 6), pts)
	if idx != 1 {
		t.Fatalf("segment index = %d, want 1", idx)
	}
	if !approx(p.X, 10) || !approx(p.Y, 6) || !approx(d, 2) {
		t.Fatalf("closest = %v dist %v, want (10,6) dist 2", p, d)
	}
	if _, idx, _ := ClosestPointOnPolyline(Pt(1, 1), pts[:1]); idx != -1 {
		t.Fatalf("single point polyline index = %d, want -1", idx)
	}
}

func TestBoundingBoxAndLength(t *testing.T) {
	pts := []Point{Pt(1, 5), Pt(-2, 3), Pt(4, -1)}
	box := BoundingBox(pts)
	if box.Min != Pt(-2, -1) || box.Max != Pt(4, 5) {
		t.Fatalf("BoundingBox = %+v", box)
	}
	if !box.Contains(Pt(0, 0)) || box.Contains(Pt(5, 0)) {
		t.Fatalf("Contains gave wrong answer")
	}
	if l := PolylineLength([]Point{Pt(0, 0), Pt(3, 4), Pt(3, 10)}); !approx(l, 11) {
		t.Fatalf("PolylineLength = %v, want 11", l)
	}
}

func TestSpatialHashQueryNear(t *testing.T) {
	h := NewSpatialHash[string](10)
	h.Insert(Pt(1, 1), "a")
	h.Insert(Pt(12, 1), "b")  // adjacent cell
	h.Insert(Pt(35, 35), "c") // far away

	got := h.QueryNear(Pt(2, 2))
	sort.Strings(got)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("QueryNear = %v, want [a b]", got)
	}
	if h.Len() != 3 {
		t.Fatalf("Len = %d, want 3", h.Len())
	}

	h.Clear()
	if h.Len() != 0 || len(h.QueryNear(Pt(1, 1))) != 0 {
		t.Fatalf("Clear did not empty the index")
	}
}

func TestSpatialHashNegativeCoordinates(t *testing.T) {
	h := NewSpatialHash[int](5)
	h.Insert(Pt(-1, -1), 1)
	if got := h.QueryNear(Pt(1, 1)); len(got) != 1 {
		t.Fatalf("expected neighbour across the origin, got %v", got)
	}
}
