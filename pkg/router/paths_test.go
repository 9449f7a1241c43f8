package router

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
)

func samePath(got, want []geometry.Point) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !got[i].Equal(want[i]) {
			return false
		}
	}
	return true
}

func TestSchematicPath(t *testing.T) {
	start := geometry.Pt(0, 0)
	cases := []struct {
		name   string
		end    geometry.Point
		invert bool
		want   []geometry.Point
	}{
		{"horizontal major", geometry.Pt(100, 50), false, []geometry.Point{start, geometry.Pt(100, 0), geometry.Pt(100, 50)}},
		{"horizontal major inverted", geometry.Pt(100, 50), true, []geometry.Point{start, geometry.Pt(0, 50), geometry.Pt(100, 50)}},
		{"vertical major", geometry.Pt(30, 90), false, []geometry.Point{start, geometry.Pt(0, 90), geometry.Pt(30, 90)}},
		{"axis aligned", geometry.Pt(0, 80), false, []geometry.Point{start, geometry.Pt(0, 80)}},
	}
	for _, tc := range cases {
		if got := SchematicPath(start, tc.end, tc.invert); !samePath(got, tc.want) {
			t.Fatalf("%s: SchematicPath = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestStarPath(t *testing.T) {
	got := StarPath(geometry.Pt(0, 0), geometry.Pt(100, 0), 0.25, 60)
	want := []geometry.Point{geometry.Pt(0, 0), geometry.Pt(50, 25), geometry.Pt(100, 0)}
	if !samePath(got, want) {
		t.Fatalf("StarPath = %v, want %v", got, want)
	}

	got = StarPath(geometry.Pt(0, 0), geometry.Pt(1000, 0), 0.25, 60)
	if got[1].Y != 60 {
		t.Fatalf("capped bend offset = %v, want 60", got[1].Y)
	}

	if got := StarPath(geometry.Pt(5, 5), geometry.Pt(5, 5), 0.25, 60); len(got) != 2 {
		t.Fatalf("degenerate StarPath = %v, want straight line", got)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeFree, ModeSchematic, ModeStar, ModeRouting} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("diagonal"); err == nil {
		t.Fatalf("ParseMode(diagonal) succeeded, want error")
	}
}

func TestRoutePathStraight(t *testing.T) {
	got, ok := RoutePath(geometry.Pt(0, 0), geometry.Pt(100, 0), nil, 20, 1000)
	if !ok {
		t.Fatalf("RoutePath failed on an empty grid")
	}
	if !samePath(got, []geometry.Point{geometry.Pt(0, 0), geometry.Pt(100, 0)}) {
		t.Fatalf("RoutePath = %v, want straight line", got)
	}
}

func TestRoutePathKeepsTrueEndpoints(t *testing.T) {
	start, end := geometry.Pt(3, 2), geometry.Pt(97, 41)
	got, ok := RoutePath(start, end, nil, 20, 1000)
	if !ok {
		t.Fatalf("RoutePath failed")
	}
	if !got[0].Equal(start) || !got[len(got)-1].Equal(end) {
		t.Fatalf("RoutePath ends = %v, %v, want %v, %v", got[0], got[len(got)-1], start, end)
	}
}

func TestRoutePathDetours(t *testing.T) {
	obstacle := geometry.Pt(60, 0)
	got, ok := RoutePath(geometry.Pt(0, 0), geometry.Pt(120, 0), []geometry.Point{obstacle}, 20, 1000)
	if !ok {
		t.Fatalf("RoutePath failed")
	}
	for i := 0; i < len(got)-1; i++ {
		a, b := got[i], got[i+1]
		if a.X != b.X && a.Y != b.Y {
			t.Fatalf("segment %v-%v is not orthogonal", a, b)
		}
		if geometry.PointToSegmentDistance(obstacle, a, b) == 0 {
			t.Fatalf("segment %v-%v crosses the obstacle", a, b)
		}
	}
}

func TestRoutePathUnreachable(t *testing.T) {
	walls := []geometry.Point{
		geometry.Pt(80, 0), geometry.Pt(120, 0), geometry.Pt(100, 20), geometry.Pt(100, -20),
	}
	if _, ok := RoutePath(geometry.Pt(0, 0), geometry.Pt(100, 0), walls, 20, 100000); ok {
		t.Fatalf("RoutePath reached an enclosed cell")
	}
	if _, ok := RoutePath(geometry.Pt(0, 0), geometry.Pt(2000, 0), nil, 20, 5); ok {
		t.Fatalf("RoutePath ignored the expansion limit")
	}
}
