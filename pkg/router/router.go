package router

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/OpenTraceLab/OpenTraceCircuit/internal/logging"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/topology"
)

// Options configures snapping, merging and path construction.
type Options struct {
	// SnapRadius is how close the pointer must be to a node to snap to it.
	SnapRadius float64
	// HitRadius is how close the pointer must be to a wire to start or end on
	// it. It is normally looser than SnapRadius.
	HitRadius float64
	// MergeRadius is the distance under which two nodes are folded together
	// after a commit.
	MergeRadius float64
	// IntersectionTolerance controls both crossing suppression near segment
	// ends and vertex reuse when splicing a crossing into a wire.
	IntersectionTolerance float64
	// GridSize is the cell size used by ModeRouting.
	GridSize float64
	// MaxExpansions bounds the ModeRouting search.
	MaxExpansions int
	// StarBendRatio and StarBendCap shape the ModeStar bend offset.
	StarBendRatio float64
	StarBendCap   float64
	// Connectivity is passed to every adjacency rebuild.
	Connectivity connectivity.Options
}

// DefaultOptions returns the stock editor settings.
func DefaultOptions() Options {
	return Options{
		SnapRadius:            10,
		HitRadius:             15,
		MergeRadius:           6,
		IntersectionTolerance: 1,
		GridSize:              20,
		MaxExpansions:         20000,
		StarBendRatio:         0.25,
		StarBendCap:           60,
		Connectivity:          connectivity.DefaultOptions(),
	}
}

// Hover describes what lies under an idle pointer. At most one of NodeID and
// WireID is set.
type Hover struct {
	NodeID string         `json:"nodeId,omitempty"`
	WireID string         `json:"wireId,omitempty"`
	Point  geometry.Point `json:"point"`
}

// CommitResult records the topology changes made by one finished draw.
type CommitResult struct {
	Aborted     bool     `json:"aborted"`
	WireID      string   `json:"wireId,omitempty"`
	StartNodeID string   `json:"startNodeId,omitempty"`
	EndNodeID   string   `json:"endNodeId,omitempty"`
	Junctions   []string `json:"junctions,omitempty"`
	Absorbed    []string `json:"absorbed,omitempty"`

	Graph *connectivity.AdjacencyGraph `json:"-"`
}

// Router turns pointer gestures into wires on a circuit.
type Router struct {
	circuit *topology.Circuit
	opts    Options
	log     *slog.Logger

	mode   Mode
	invert bool
	state  State

	start     geometry.Point
	startNode *topology.Node
	endNode   *topology.Node
	spliced   []string
	preview   []geometry.Point
	hover     Hover

	graph *connectivity.AdjacencyGraph
}

// New returns a router editing c. A nil circuit starts empty.
func New(c *topology.Circuit, opts Options) *Router {
	if c == nil {
		c = topology.NewCircuit()
	}
	r := &Router{
		circuit: c,
		opts:    opts,
		log:     logging.For("router"),
	}
	r.Rebuild()
	return r
}

// Circuit returns the circuit being edited.
func (r *Router) Circuit() *topology.Circuit { return r.circuit }

// Graph returns the adjacency graph from the last rebuild.
func (r *Router) Graph() *connectivity.AdjacencyGraph { return r.graph }

// State returns the current interaction state.
func (r *Router) State() State { return r.state }

// Mode returns the path policy.
func (r *Router) Mode() Mode { return r.mode }

// SetMode changes the path policy. The preview is recomputed while drawing.
func (r *Router) SetMode(m Mode) {
	r.mode = m
	r.refreshPreview()
}

// SetInvert flips which axis the schematic bend runs along first.
func (r *Router) SetInvert(invert bool) {
	r.invert = invert
	r.refreshPreview()
}

// Hover returns what lies under the pointer after the last idle move.
func (r *Router) Hover() Hover { return r.hover }

// Preview returns a copy of the path being drawn, or nil when idle.
func (r *Router) Preview() []geometry.Point {
	if r.preview == nil {
		return nil
	}
	out := make([]geometry.Point, len(r.preview))
	copy(out, r.preview)
	return out
}

// Rebuild recomputes adjacency for the whole circuit.
func (r *Router) Rebuild() *connectivity.AdjacencyGraph {
	r.graph = connectivity.RebuildAdjacencyForWires(r.circuit.Wires(), r.circuit.Nodes(), r.opts.Connectivity)
	return r.graph
}

// target is what a pointer position resolves to, without mutating anything.
type target struct {
	node  *topology.Node
	hit   topology.WireHit
	onHit bool
	point geometry.Point
}

func (r *Router) resolve(pos geometry.Point) target {
	if n := topology.FindClosestNode(pos, r.circuit.Nodes(), r.opts.SnapRadius); n != nil {
		return target{node: n, point: n.Position}
	}
	if hit, ok := topology.FindClosestPointOnWire(pos, r.circuit.Wires(), r.opts.HitRadius); ok {
		return target{hit: hit, onHit: true, point: hit.Point}
	}
	return target{point: pos}
}

// splice places a junction on the hit wire and returns it. The junction is
// positioned on the vertex the wire ends up with.
func (r *Router) splice(t target) (*topology.Node, error) {
	res := topology.EnsurePointOnWire(t.hit.Wire, t.hit.Point, r.opts.IntersectionTolerance)
	if res.Index < 0 {
		return nil, fmt.Errorf("router: cannot place junction on wire %s", t.hit.Wire.ID)
	}
	pos := t.hit.Wire.Points[res.Index]
	if n := topology.FindClosestNode(pos, r.circuit.Nodes(), r.opts.IntersectionTolerance); n != nil {
		return n, nil
	}
	j := topology.CreateNode(topology.NodeJunction, pos, "")
	if err := r.circuit.AddNode(j); err != nil {
		return nil, err
	}
	r.spliced = append(r.spliced, j.ID)
	r.log.Debug("junction spliced", "wire", t.hit.Wire.ID, "junction", j.ID, "x", pos.X, "y", pos.Y)
	return j, nil
}

// Start begins a draw at pos. It snaps to a node within SnapRadius; failing
// that, a wire within HitRadius is split by a new junction on the spot.
func (r *Router) Start(pos geometry.Point) error {
	next, err := NextState(r.state, EventPress)
	if err != nil {
		return err
	}

	r.spliced = nil
	t := r.resolve(pos)
	switch {
	case t.node != nil:
		r.startNode = t.node
	case t.onHit:
		j, err := r.splice(t)
		if err != nil {
			return err
		}
		r.startNode = j
		t.point = j.Position
		r.Rebuild()
	default:
		r.startNode = nil
	}

	r.start = t.point
	r.endNode = nil
	r.preview = []geometry.Point{r.start}
	r.hover = Hover{}
	r.state = next
	return nil
}

// Move updates the hover target when idle and the preview path when drawing.
func (r *Router) Move(pos geometry.Point) error {
	next, err := NextState(r.state, EventMove)
	if err != nil {
		return err
	}
	if r.state == StateIdle {
		r.updateHover(pos)
		return nil
	}

	t := r.resolve(pos)
	r.endNode = t.node
	r.preview = r.buildPath(r.start, t.point)
	r.state = next
	return nil
}

func (r *Router) updateHover(pos geometry.Point) {
	t := r.resolve(pos)
	switch {
	case t.node != nil:
		r.hover = Hover{NodeID: t.node.ID, Point: t.point}
	case t.onHit:
		r.hover = Hover{WireID: t.hit.Wire.ID, Point: t.point}
	default:
		r.hover = Hover{}
	}
}

func (r *Router) refreshPreview() {
	if r.state != StateDrawing || len(r.preview) == 0 {
		return
	}
	r.preview = r.buildPath(r.start, r.preview[len(r.preview)-1])
}

// Cancel abandons the current draw. The preview is discarded and no wire is
// created.
func (r *Router) Cancel() {
	if next, err := NextState(r.state, EventCancel); err == nil {
		r.state = next
	}
	r.reset()
}

func (r *Router) reset() {
	r.startNode = nil
	r.endNode = nil
	r.preview = nil
	r.spliced = nil
}

// Release finishes the draw at pos and commits the wire. A draw whose path
// has no length is aborted and reported with Aborted set.
//
// Committing creates wireAnchor nodes for endpoints that did not land on a
// node or wire, splits every crossing with an existing wire into a junction,
// folds nodes closer than MergeRadius together and rebuilds adjacency.
func (r *Router) Release(pos geometry.Point) (CommitResult, error) {
	next, err := NextState(r.state, EventRelease)
	if err != nil {
		return CommitResult{}, err
	}

	t := r.resolve(pos)
	path := r.buildPath(r.start, t.point)
	if len(path) < 2 || geometry.PolylineLength(path) == 0 {
		r.log.Debug("zero-length draw aborted", "x", pos.X, "y", pos.Y)
		r.state = StateIdle
		r.reset()
		return CommitResult{Aborted: true}, nil
	}
	r.state = next

	res, err := r.commit(path, t)
	if err != nil {
		r.Cancel()
		return CommitResult{}, err
	}
	r.state, _ = NextState(r.state, EventCommitted)
	r.reset()
	return res, nil
}

// Draw runs a complete press, move and release gesture.
func (r *Router) Draw(from, to geometry.Point) (CommitResult, error) {
	if err := r.Start(from); err != nil {
		return CommitResult{}, err
	}
	if err := r.Move(to); err != nil {
		r.Cancel()
		return CommitResult{}, err
	}
	return r.Release(to)
}

func (r *Router) commit(path []geometry.Point, end target) (CommitResult, error) {
	startNode := r.startNode
	if startNode == nil {
		startNode = topology.CreateNode(topology.NodeWireAnchor, path[0], "")
		if err := r.circuit.AddNode(startNode); err != nil {
			return CommitResult{}, err
		}
	}

	var endNode *topology.Node
	switch {
	case end.node != nil:
		endNode = end.node
	case end.onHit:
		j, err := r.splice(end)
		if err != nil {
			return CommitResult{}, err
		}
		endNode = j
		path[len(path)-1] = j.Position
	default:
		endNode = topology.CreateNode(topology.NodeWireAnchor, path[len(path)-1], "")
		if err := r.circuit.AddNode(endNode); err != nil {
			return CommitResult{}, err
		}
	}

	wire, err := topology.CreateWire(path, "")
	if err != nil {
		return CommitResult{}, fmt.Errorf("router: commit: %w", err)
	}
	if err := r.circuit.AddWire(wire); err != nil {
		return CommitResult{}, err
	}

	junctions := append(slices.Clone(r.spliced), r.splitCrossings(wire)...)
	absorbed := r.mergeNearbyNodes()
	junctions = slices.DeleteFunc(junctions, absorbed.Contains)
	g := r.Rebuild()

	res := CommitResult{
		WireID:      wire.ID,
		StartNodeID: survivorID(startNode, absorbed, r.circuit),
		EndNodeID:   survivorID(endNode, absorbed, r.circuit),
		Junctions:   junctions,
		Absorbed:    absorbed.Slice(),
		Graph:       g,
	}
	r.log.Debug("wire committed",
		"wire", wire.ID, "points", len(wire.Points), "junctions", len(junctions), "absorbed", absorbed.Len())
	return res, nil
}

// survivorID maps a node that may have been merged away to the node now at
// its position.
func survivorID(n *topology.Node, absorbed topology.IDSet, c *topology.Circuit) string {
	if !absorbed.Contains(n.ID) {
		return n.ID
	}
	if s := topology.FindClosestNode(n.Position, c.Nodes(), math.Inf(1)); s != nil {
		return s.ID
	}
	return ""
}

type crossing struct {
	wire  *topology.Wire
	point geometry.Point
	key   string
}

func crossingKey(p geometry.Point) string {
	return fmt.Sprintf("%.0f,%.0f", math.Round(p.X), math.Round(p.Y))
}

// splitCrossings finds every proper crossing between nw and the other wires,
// inserts the crossing point into both wires and places a junction there
// unless a node already exists.
//
// Crossings within IntersectionTolerance of a segment end of nw, and within
// MergeRadius of either end of nw, are left alone: those are joins already
// handled by snapping. Crossings are deduplicated by rounded position.
func (r *Router) splitCrossings(nw *topology.Wire) []string {
	tol := r.opts.IntersectionTolerance
	first, last := nw.Start(), nw.End()

	seen := make(map[string]bool)
	var found []crossing
	for _, ew := range r.circuit.Wires() {
		if ew.ID == nw.ID {
			continue
		}
		for i := 0; i < nw.SegmentCount(); i++ {
			a, b := nw.Points[i], nw.Points[i+1]
			for j := 0; j < ew.SegmentCount(); j++ {
				p, ok := geometry.SegmentIntersect(a, b, ew.Points[j], ew.Points[j+1])
				if !ok {
					continue
				}
				if geometry.Distance(p, a) <= tol || geometry.Distance(p, b) <= tol {
					continue
				}
				if geometry.Distance(p, first) <= r.opts.MergeRadius || geometry.Distance(p, last) <= r.opts.MergeRadius {
					continue
				}
				key := crossingKey(p)
				if seen[ew.ID+"@"+key] {
					continue
				}
				seen[ew.ID+"@"+key] = true
				found = append(found, crossing{wire: ew, point: p, key: key})
			}
		}
	}

	var created []string
	placed := make(map[string]bool)
	for _, c := range found {
		topology.EnsurePointOnWire(c.wire, c.point, tol)
		topology.EnsurePointOnWire(nw, c.point, tol)
		if placed[c.key] {
			continue
		}
		placed[c.key] = true
		if topology.FindClosestNode(c.point, r.circuit.Nodes(), tol) != nil {
			continue
		}
		j := topology.CreateNode(topology.NodeJunction, c.point, "")
		if err := r.circuit.AddNode(j); err != nil {
			continue
		}
		created = append(created, j.ID)
	}
	return created
}

// mergeNearbyNodes folds every pair of nodes closer than MergeRadius, greedily
// in circuit order, and removes the absorbed nodes from the circuit. Two
// component pins are never merged with each other.
func (r *Router) mergeNearbyNodes() topology.IDSet {
	nodes := r.circuit.Nodes()
	absorbed := topology.NewIDSet()
	for i := 0; i < len(nodes); i++ {
		if absorbed.Contains(nodes[i].ID) {
			continue
		}
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			if absorbed.Contains(b.ID) {
				continue
			}
			if a.Type == topology.NodeComponentPin && b.Type == topology.NodeComponentPin {
				continue
			}
			if !topology.ShouldMergeNodes(a, b, r.opts.MergeRadius) {
				continue
			}
			_, gone := topology.MergeNodes(a, b)
			absorbed.Add(gone.ID)
			if gone == a {
				break
			}
		}
	}
	r.circuit.RemoveNodes(absorbed)
	return absorbed
}
