package document

import (
	"fmt"
	"io"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/document/sexpr"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/topology"
)

// The S-expression layout is
//
//	(circuit
//	  (version 1)
//	  (node (id N) (type junction) (at X Y) (wires W...))
//	  (wire (id W) (pts (xy X Y) ...) (nodes N...)))

func encodeSexpr(w io.Writer, d *Document) error {
	root := sexpr.L("circuit", sexpr.L("version", sexpr.Int(d.Version)))
	for _, n := range d.Nodes {
		wires := sexpr.L("wires")
		for _, id := range n.AttachedWireIDs.Slice() {
			wires.Append(sexpr.Symbol(id))
		}
		root.Append(sexpr.L("node",
			sexpr.L("id", sexpr.Symbol(n.ID)),
			sexpr.L("type", sexpr.Symbol(n.Type.String())),
			sexpr.L("at", sexpr.Float(n.Position.X), sexpr.Float(n.Position.Y)),
			wires,
		))
	}
	for _, wire := range d.Wires {
		pts := sexpr.L("pts")
		for _, p := range wire.Points {
			pts.Append(sexpr.L("xy", sexpr.Float(p.X), sexpr.Float(p.Y)))
		}
		nodes := sexpr.L("nodes")
		for _, id := range wire.AttachedNodeIDs.Slice() {
			nodes.Append(sexpr.Symbol(id))
		}
		root.Append(sexpr.L("wire",
			sexpr.L("id", sexpr.Symbol(wire.ID)),
			pts,
			nodes,
		))
	}
	if err := sexpr.Write(w, root); err != nil {
		return fmt.Errorf("document: encode csx: %w", err)
	}
	return nil
}

func decodeSexpr(r io.Reader) (*Document, error) {
	dec := sexpr.NewDecoder(r)
	form, err := dec.Decode()
	if err == io.EOF {
		return nil, fmt.Errorf("document: csx: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("document: parse csx: %w", err)
	}
	root, ok := form.(*sexpr.List)
	if !ok || root.Key() != "circuit" {
		return nil, fmt.Errorf("document: csx: top-level form is not (circuit ...)")
	}
	if extra, err := dec.Decode(); err != io.EOF {
		if err != nil {
			return nil, fmt.Errorf("document: parse csx: %w", err)
		}
		if l, ok := extra.(*sexpr.List); ok {
			return nil, fmt.Errorf("document: csx: %w", l.Errorf("unexpected form after (circuit ...)"))
		}
		return nil, fmt.Errorf("document: csx: unexpected atom %s after (circuit ...)", extra)
	}

	d := &Document{Version: CurrentVersion}
	if v, ok := sexpr.FindNode(root, "version"); ok {
		if d.Version, err = sexpr.GetInt(v, 1); err != nil {
			return nil, fmt.Errorf("document: csx: %w", err)
		}
	}
	for _, l := range sexpr.FindAllNodes(root, "node") {
		n, err := decodeNode(l)
		if err != nil {
			return nil, fmt.Errorf("document: csx: %w", err)
		}
		d.Nodes = append(d.Nodes, n)
	}
	for _, l := range sexpr.FindAllNodes(root, "wire") {
		w, err := decodeWire(l)
		if err != nil {
			return nil, fmt.Errorf("document: csx: %w", err)
		}
		d.Wires = append(d.Wires, w)
	}
	return d, nil
}

// item is a (node ...) or (wire ...) form being decoded. Its errors carry the
// form's line and id.
type item struct {
	*sexpr.List
	id string
}

func newItem(l *sexpr.List) (item, error) {
	it := item{List: l, id: "?"}
	f, err := it.field("id")
	if err != nil {
		return it, err
	}
	if it.id, err = sexpr.GetString(f, 1); err != nil {
		return it, err
	}
	if it.id == "" {
		return it, f.Errorf("%s: empty id", l.Key())
	}
	return it, nil
}

func (it item) field(key string) (*sexpr.List, error) {
	f, ok := sexpr.FindNode(it.List, key)
	if !ok {
		return nil, it.Errorf("%s %s: missing (%s ...)", it.Key(), it.id, key)
	}
	return f, nil
}

func (it item) wrap(err error) error {
	return fmt.Errorf("%s %s: %w", it.Key(), it.id, err)
}

func (it item) ids(key string) (topology.IDSet, error) {
	f, ok := sexpr.FindNode(it.List, key)
	if !ok {
		return topology.NewIDSet(), nil
	}
	ids, err := sexpr.GetStrings(f)
	if err != nil {
		return nil, it.wrap(err)
	}
	return topology.NewIDSet(ids...), nil
}

func decodePoint(l *sexpr.List) (geometry.Point, error) {
	x, err := sexpr.GetFloat(l, 1)
	if err != nil {
		return geometry.Point{}, err
	}
	y, err := sexpr.GetFloat(l, 2)
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.Pt(x, y), nil
}

func decodeNode(l *sexpr.List) (*topology.Node, error) {
	it, err := newItem(l)
	if err != nil {
		return nil, err
	}
	typeField, err := it.field("type")
	if err != nil {
		return nil, err
	}
	typeName, err := sexpr.GetString(typeField, 1)
	if err != nil {
		return nil, it.wrap(err)
	}
	t, err := topology.ParseNodeType(typeName)
	if err != nil {
		return nil, it.wrap(typeField.Errorf("%w", err))
	}
	at, err := it.field("at")
	if err != nil {
		return nil, err
	}
	pos, err := decodePoint(at)
	if err != nil {
		return nil, it.wrap(err)
	}

	n := topology.CreateNode(t, pos, it.id)
	if n.AttachedWireIDs, err = it.ids("wires"); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeWire(l *sexpr.List) (*topology.Wire, error) {
	it, err := newItem(l)
	if err != nil {
		return nil, err
	}
	ptsField, err := it.field("pts")
	if err != nil {
		return nil, err
	}
	var pts []geometry.Point
	for _, xy := range sexpr.FindAllNodes(ptsField, "xy") {
		p, err := decodePoint(xy)
		if err != nil {
			return nil, it.wrap(err)
		}
		pts = append(pts, p)
	}

	w, err := topology.CreateWire(pts, it.id)
	if err != nil {
		return nil, it.wrap(ptsField.Errorf("%w", err))
	}
	if w.AttachedNodeIDs, err = it.ids("nodes"); err != nil {
		return nil, err
	}
	return w, nil
}
