package topology

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
)

func TestCreateWireCopiesPoints(t *testing.T) {
	pts := []geometry.Point{geometry.Pt(0, 0), geometry.Pt(10, 0)}
	w, err := CreateWire(pts, "w1")
	if err != nil {
		t.Fatalf("CreateWire failed: %v", err)
	}
	pts[0] = geometry.Pt(99, 99)
	if w.Points[0] != geometry.Pt(0, 0) {
		t.Fatalf("wire geometry changed through caller slice: %v", w.Points[0])
	}
	if w.ID != "w1" {
		t.Fatalf("ID = %q, want w1", w.ID)
	}
}

func TestCreateWireRejectsDegenerate(t *testing.T) {
	_, err := CreateWire([]geometry.Point{geometry.Pt(1, 1), geometry.Pt(1, 1)}, "")
	if !errors.Is(err, ErrDegenerateWire) {
		t.Fatalf("err = %v, want ErrDegenerateWire", err)
	}
}

func TestCreateNodeGeneratesID(t *testing.T) {
	a := CreateNode(NodeJunction, geometry.Pt(1, 2), "")
	b := CreateNode(NodeJunction, geometry.Pt(1, 2), "")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct generated ids, got %q and %q", a.ID, b.ID)
	}
	if a.AttachedWireIDs == nil {
		t.Fatalf("attached wire set not initialised")
	}
}

func TestEnsurePointOnWireIdempotent(t *testing.T) {
	w, _ := CreateWire([]geometry.Point{geometry.Pt(0, 0), geometry.Pt(10, 0)}, "w")

	first := EnsurePointOnWire(w, geometry.Pt(5, 0.5), 1)
	if !first.Inserted || first.Index != 1 {
		t.Fatalf("first call = %+v, want inserted at 1", first)
	}
	if len(w.Points) != 3 {
		t.Fatalf("len(points) = %d, want 3", len(w.Points))
	}

	second := EnsurePointOnWire(w, geometry.Pt(5, 0.5), 1)
	if second.Inserted {
		t.Fatalf("second call inserted again")
	}
	if second.Index != 1 || len(w.Points) != 3 {
		t.Fatalf("second call = %+v with %d points", second, len(w.Points))
	}
}

func TestEnsurePointOnWireExistingAndMiss(t *testing.T) {
	w, _ := CreateWire([]geometry.Point{geometry.Pt(0, 0), geometry.Pt(10, 0), geometry.Pt(10, 10)}, "w")

	res := EnsurePointOnWire(w, geometry.Pt(10.2, 0.1), 0.5)
	if res.Inserted || res.Index != 1 {
		t.Fatalf("existing vertex: got %+v", res)
	}

	res = EnsurePointOnWire(w, geometry.Pt(5, 5), 1)
	if res.Index != -1 || res.Inserted {
		t.Fatalf("miss: got %+v", res)
	}
	if len(w.Points) != 3 {
		t.Fatalf("miss changed the wire")
	}
}

func TestInsertPointIntoWireRange(t *testing.T) {
	w, _ := CreateWire([]geometry.Point{geometry.Pt(0, 0), geometry.Pt(10, 0)}, "w")

	for _, seg := range []int{-1, 1, 5} {
		if _, err := InsertPointIntoWire(w, geometry.Pt(5, 0), seg); !errors.Is(err, ErrSegmentIndex) {
			t.Errorf("segIndex %d: err = %v, want ErrSegmentIndex", seg, err)
		}
	}

	idx, err := InsertPointIntoWire(w, geometry.Pt(5, 0), 0)
	if err != nil || idx != 1 {
		t.Fatalf("InsertPointIntoWire = %d, %v", idx, err)
	}
	want := []geometry.Point{geometry.Pt(0, 0), geometry.Pt(5, 0), geometry.Pt(10, 0)}
	for i := range want {
		if w.Points[i] != want[i] {
			t.Fatalf("points = %v, want %v", w.Points, want)
		}
	}

	// Inserting an existing segment end keeps points distinct.
	idx, err = InsertPointIntoWire(w, geometry.Pt(5, 0), 1)
	if err != nil || idx != 1 || len(w.Points) != 3 {
		t.Fatalf("duplicate insert = %d, %v, %d points", idx, err, len(w.Points))
	}
}

func TestShouldMergeNodes(t *testing.T) {
	a := CreateNode(NodeWireAnchor, geometry.Pt(0, 0), "a")
	b := CreateNode(NodeWireAnchor, geometry.Pt(3, 4), "b")

	if !ShouldMergeNodes(a, b, 5) || !ShouldMergeNodes(b, a, 5) {
		t.Fatalf("nodes 5 apart should merge at radius 5 in both orders")
	}
	if ShouldMergeNodes(a, b, 4.9) {
		t.Fatalf("nodes 5 apart should not merge at radius 4.9")
	}
	if ShouldMergeNodes(a, a, 100) {
		t.Fatalf("node must not merge with itself")
	}
}

func TestMergeNodesPriority(t *testing.T) {
	cases := []struct {
		name     string
		a, b     NodeType
		survivor string
	}{
		{"pin beats junction", NodeJunction, NodeComponentPin, "b"},
		{"pin beats anchor", NodeComponentPin, NodeWireAnchor, "a"},
		{"junction beats anchor", NodeWireAnchor, NodeJunction, "b"},
		{"tie keeps first", NodeWireAnchor, NodeWireAnchor, "a"},
	}
	for _, tc := range cases {
		a := CreateNode(tc.a, geometry.Pt(0, 0), "a")
		b := CreateNode(tc.b, geometry.Pt(1, 1), "b")
		a.AttachedWireIDs.Add("w1")
		b.AttachedWireIDs.Add("w2")

		survivor, absorbed := MergeNodes(a, b)
		if survivor.ID != tc.survivor {
			t.Errorf("%s: survivor = %s, want %s", tc.name, survivor.ID, tc.survivor)
			continue
		}
		if absorbed == survivor {
			t.Errorf("%s: absorbed equals survivor", tc.name)
		}
		if !survivor.AttachedWireIDs.Contains("w1") || !survivor.AttachedWireIDs.Contains("w2") {
			t.Errorf("%s: wire sets not unioned: %v", tc.name, survivor.AttachedWireIDs.Slice())
		}
		wantPos := geometry.Pt(0, 0)
		if tc.survivor == "b" {
			wantPos = geometry.Pt(1, 1)
		}
		if survivor.Position != wantPos {
			t.Errorf("%s: survivor moved to %v", tc.name, survivor.Position)
		}
	}
}

func TestFindClosestNodeStableTies(t *testing.T) {
	nodes := []*Node{
		CreateNode(NodeWireAnchor, geometry.Pt(2, 0), "first"),
		CreateNode(NodeWireAnchor, geometry.Pt(-2, 0), "second"),
		CreateNode(NodeWireAnchor, geometry.Pt(50, 0), "far"),
	}
	if got := FindClosestNode(geometry.Pt(0, 0), nodes, 5); got == nil || got.ID != "first" {
		t.Fatalf("FindClosestNode = %v, want first", got)
	}
	if got := FindClosestNode(geometry.Pt(0, 0), nodes, 1); got != nil {
		t.Fatalf("expected nil outside maxDistance, got %s", got.ID)
	}
}

func TestFindClosestPointOnWire(t *testing.T) {
	w1, _ := CreateWire([]geometry.Point{geometry.Pt(0, 0), geometry.Pt(10, 0)}, "w1")
	w2, _ := CreateWire([]geometry.Point{geometry.Pt(0, 5), geometry.Pt(10, 5)}, "w2")

	hit, ok := FindClosestPointOnWire(geometry.Pt(4, 4), []*Wire{w1, w2}, 3)
	if !ok || hit.Wire.ID != "w2" || hit.Point != geometry.Pt(4, 5) || hit.SegmentIndex != 0 {
		t.Fatalf("hit = %+v, %v", hit, ok)
	}
	if _, ok := FindClosestPointOnWire(geometry.Pt(4, 20), []*Wire{w1, w2}, 3); ok {
		t.Fatalf("expected no hit")
	}
}

func TestIDSetJSONIsArray(t *testing.T) {
	n := CreateNode(NodeJunction, geometry.Pt(1, 2), "n1")
	n.AttachedWireIDs.Add("b")
	n.AttachedWireIDs.Add("a")

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	ids, ok := raw["attachedWireIds"].([]any)
	if !ok || len(ids) != 2 || ids[0] != "a" {
		t.Fatalf("attachedWireIds = %#v, want sorted array", raw["attachedWireIds"])
	}
	if raw["type"] != "junction" {
		t.Fatalf("type = %v, want junction", raw["type"])
	}

	var back Node
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("decode node: %v", err)
	}
	if back.Type != NodeJunction || !back.AttachedWireIDs.Contains("b") {
		t.Fatalf("decoded node = %+v", back)
	}
}

func TestCircuitCloneIsIndependent(t *testing.T) {
	c := NewCircuit()
	n := CreateNode(NodeJunction, geometry.Pt(0, 0), "n")
	w, _ := CreateWire([]geometry.Point{geometry.Pt(0, 0), geometry.Pt(1, 0)}, "w")
	if err := c.AddNode(n); err != nil {
		t.Fatal(err)
	}
	if err := c.AddWire(w); err != nil {
		t.Fatal(err)
	}
	if err := c.AddNode(CreateNode(NodeJunction, geometry.Pt(0, 0), "n")); err == nil {
		t.Fatalf("duplicate node id accepted")
	}

	snap := c.Clone()
	w.Points[1] = geometry.Pt(5, 5)
	n.AttachedWireIDs.Add("w")
	if snap.Wire("w").Points[1] != geometry.Pt(1, 0) {
		t.Fatalf("clone shares wire points")
	}
	if snap.Node("n").AttachedWireIDs.Contains("w") {
		t.Fatalf("clone shares node sets")
	}

	c.RemoveNodes(NewIDSet("n"))
	if c.Node("n") != nil || c.NodeCount() != 0 {
		t.Fatalf("RemoveNodes did not drop n")
	}
	if !c.RemoveWire("w") || c.WireCount() != 0 {
		t.Fatalf("RemoveWire failed")
	}
}
