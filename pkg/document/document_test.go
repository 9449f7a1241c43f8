package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/topology"
)

func sampleCircuit(t *testing.T) *topology.Circuit {
	t.Helper()
	c := topology.NewCircuit()
	nodes := []*topology.Node{
		topology.CreateNode(topology.NodeWireAnchor, geometry.Pt(0, 0), "a"),
		topology.CreateNode(topology.NodeJunction, geometry.Pt(50, 0), "j"),
		topology.CreateNode(topology.NodeComponentPin, geometry.Pt(100, 0.5), "p"),
	}
	for _, n := range nodes {
		if err := c.AddNode(n); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	w, err := topology.CreateWire([]geometry.Point{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 100, Y: 0.5}}, "w")
	if err != nil {
		t.Fatalf("CreateWire: %v", err)
	}
	if err := c.AddWire(w); err != nil {
		t.Fatalf("AddWire: %v", err)
	}
	connectivity.RebuildAdjacencyForWires(c.Wires(), c.Nodes(), connectivity.DefaultOptions())
	return c
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".csx"} {
		path := filepath.Join(t.TempDir(), "circuit"+ext)
		want := FromCircuit(sampleCircuit(t))
		if err := Save(path, want); err != nil {
			t.Fatalf("%s: Save returned error: %v", ext, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("%s: Load returned error: %v", ext, err)
		}

		if got.Version != CurrentVersion {
			t.Fatalf("%s: version = %d, want %d", ext, got.Version, CurrentVersion)
		}
		if len(got.Nodes) != 3 || len(got.Wires) != 1 {
			t.Fatalf("%s: nodes=%d wires=%d, want 3 and 1", ext, len(got.Nodes), len(got.Wires))
		}
		for i, n := range got.Nodes {
			w := want.Nodes[i]
			if n.ID != w.ID || n.Type != w.Type || !n.Position.Equal(w.Position) {
				t.Fatalf("%s: node %d = %+v, want %+v", ext, i, n, w)
			}
			if strings.Join(n.AttachedWireIDs.Slice(), ",") != "w" {
				t.Fatalf("%s: node %s wires = %v, want [w]", ext, n.ID, n.AttachedWireIDs.Slice())
			}
		}
		wire := got.Wires[0]
		if len(wire.Points) != 3 || !wire.End().Equal(geometry.Pt(100, 0.5)) {
			t.Fatalf("%s: wire points = %v", ext, wire.Points)
		}
		if strings.Join(wire.AttachedNodeIDs.Slice(), ",") != "a,j,p" {
			t.Fatalf("%s: wire nodes = %v, want [a j p]", ext, wire.AttachedNodeIDs.Slice())
		}
	}
}

func TestJSONSetsAreArrays(t *testing.T) {
	var sb strings.Builder
	if err := Encode(&sb, FromCircuit(sampleCircuit(t)), FormatJSON); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	out := sb.String()
	for _, want := range []string{`"attachedWireIds": [`, `"attachedNodeIds": [`, `"type": "junction"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("encoded JSON missing %s:\n%s", want, out)
		}
	}
}

func TestLoadMigratesLegacy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	legacy := `{"wires":[
		[{"x":0,"y":0},{"x":100,"y":0}],
		[{"x":100,"y":0},{"x":100,"y":100}],
		[{"x":5,"y":5},{"x":5,"y":5}]
	]}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(d.Wires) != 2 {
		t.Fatalf("wires = %d, want 2 (degenerate polyline dropped)", len(d.Wires))
	}
	if len(d.Nodes) != 3 {
		t.Fatalf("anchors = %d, want 3 (shared corner)", len(d.Nodes))
	}
	for _, n := range d.Nodes {
		if n.Type != topology.NodeWireAnchor {
			t.Fatalf("node %s type = %s, want wireAnchor", n.ID, n.Type)
		}
		if n.Position.Equal(geometry.Pt(100, 0)) && n.AttachedWireIDs.Len() != 2 {
			t.Fatalf("corner anchor wires = %v, want 2", n.AttachedWireIDs.Slice())
		}
	}

	_, g, err := d.Circuit(connectivity.DefaultOptions())
	if err != nil {
		t.Fatalf("Circuit returned error: %v", err)
	}
	if g.EdgeCount() != 2 {
		t.Fatalf("edges = %d, want 2", g.EdgeCount())
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "circuit.txt")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("unknown extension error = %v, want ErrUnknownFormat", err)
	}

	future := filepath.Join(dir, "future.json")
	if err := os.WriteFile(future, []byte(`{"version":99,"nodes":[],"wires":[]}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(future); !errors.Is(err, ErrVersion) {
		t.Fatalf("future version error = %v, want ErrVersion", err)
	}

	for _, doc := range []string{
		`{"version":1,"nodes":[null],"wires":[]}`,
		`{"version":1,"nodes":[],"wires":[null]}`,
	} {
		nullEntry := filepath.Join(dir, "null.json")
		if err := os.WriteFile(nullEntry, []byte(doc), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := Load(nullEntry); err == nil || !strings.Contains(err.Error(), "is null") {
			t.Fatalf("Load(%s) error = %v, want null entry error", doc, err)
		}
	}

	badType := filepath.Join(dir, "bad.csx")
	if err := os.WriteFile(badType, []byte(`(circuit (node (id n) (type resistor) (at 0 0)))`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(badType); err == nil {
		t.Fatalf("unknown node type loaded, want error")
	}

	missingAt := filepath.Join(dir, "noat.csx")
	src := "(circuit\n  (version 1)\n  (node (id n1) (type junction)))"
	if err := os.WriteFile(missingAt, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(missingAt); err == nil || !strings.Contains(err.Error(), "line 3: node n1: missing (at") {
		t.Fatalf("missing position error = %v, want line 3 and node n1", err)
	}

	degenerate := filepath.Join(dir, "short.csx")
	if err := os.WriteFile(degenerate, []byte(`(circuit (wire (id w) (pts (xy 0 0))))`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(degenerate); !errors.Is(err, topology.ErrDegenerateWire) {
		t.Fatalf("degenerate wire error = %v, want ErrDegenerateWire", err)
	}
}
