package connectivity

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceCircuit/internal/logging"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/topology"
)

// DefaultConnectionTolerance is the distance within which a wire point is
// considered to touch a node. It is deliberately looser than the router's
// snap radius.
const DefaultConnectionTolerance = 12.0

// Options controls how wire points are matched against nodes.
type Options struct {
	// ConnectionTolerance is the maximum point-to-node distance for a match.
	ConnectionTolerance float64
	// EndpointsOnly restricts matching to the first and last point of each
	// wire. By default every point is matched.
	EndpointsOnly bool
}

// DefaultOptions returns all-points matching with DefaultConnectionTolerance.
func DefaultOptions() Options {
	return Options{ConnectionTolerance: DefaultConnectionTolerance}
}

// Edge connects two distinct nodes along one wire.
type Edge struct {
	WireID string `json:"wireId"`
	NodeA  string `json:"nodeA"`
	NodeB  string `json:"nodeB"`
}

// AdjacencyGraph is the node-to-neighbour projection of a set of wires and
// nodes. Nodes are stored in an arena; ids map to arena indices.
type AdjacencyGraph struct {
	ids       []string
	index     map[string]int
	neighbors [][]int
	edges     []Edge
}

func newAdjacencyGraph(capacity int) *AdjacencyGraph {
	return &AdjacencyGraph{
		ids:       make([]string, 0, capacity),
		index:     make(map[string]int, capacity),
		neighbors: make([][]int, 0, capacity),
	}
}

func (g *AdjacencyGraph) addNode(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := len(g.ids)
	g.ids = append(g.ids, id)
	g.index[id] = i
	g.neighbors = append(g.neighbors, nil)
	return i
}

func (g *AdjacencyGraph) link(a, b int) {
	for _, n := range g.neighbors[a] {
		if n == b {
			return
		}
	}
	g.neighbors[a] = append(g.neighbors[a], b)
}

func (g *AdjacencyGraph) addEdge(wireID string, a, b int) {
	g.link(a, b)
	g.link(b, a)
	g.edges = append(g.edges, Edge{WireID: wireID, NodeA: g.ids[a], NodeB: g.ids[b]})
}

// NodeIDs returns every node id in insertion order.
func (g *AdjacencyGraph) NodeIDs() []string {
	out := make([]string, len(g.ids))
	copy(out, g.ids)
	return out
}

// Edges returns a copy of the edge list.
func (g *AdjacencyGraph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Has reports whether id is a node of the graph.
func (g *AdjacencyGraph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Neighbors returns the distinct neighbours of id.
func (g *AdjacencyGraph) Neighbors(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	out := make([]string, len(g.neighbors[i]))
	for k, n := range g.neighbors[i] {
		out[k] = g.ids[n]
	}
	return out
}

// Degree returns the number of distinct neighbours of id.
func (g *AdjacencyGraph) Degree(id string) int {
	i, ok := g.index[id]
	if !ok {
		return 0
	}
	return len(g.neighbors[i])
}

// NodeCount returns the number of nodes.
func (g *AdjacencyGraph) NodeCount() int { return len(g.ids) }

// EdgeCount returns the number of edges, counting one per wire segment run.
func (g *AdjacencyGraph) EdgeCount() int { return len(g.edges) }

// RebuildAdjacencyForWires recomputes wire/node attachment and returns a new
// adjacency graph.
//
// Every node's attached-wire set and every wire's attached-node set is cleared
// first. Each wire's points are then matched, in order, to the closest node
// within opts.ConnectionTolerance. A point that maps to the same node as the
// previous matched point is skipped, so duplicate matches never produce
// self-loops. Consecutive distinct matches become an edge tagged with the
// wire id.
func RebuildAdjacencyForWires(wires []*topology.Wire, nodes []*topology.Node, opts Options) *AdjacencyGraph {
	g := newAdjacencyGraph(len(nodes))

	cell := opts.ConnectionTolerance
	if cell <= 0 {
		cell = 1
	}
	hash := geometry.NewSpatialHash[int](cell)
	for i, n := range nodes {
		if n.AttachedWireIDs == nil {
			n.AttachedWireIDs = topology.NewIDSet()
		}
		n.AttachedWireIDs.Clear()
		g.addNode(n.ID)
		hash.Insert(n.Position, i)
	}

	unmatched := 0
	for _, w := range wires {
		if w.AttachedNodeIDs == nil {
			w.AttachedNodeIDs = topology.NewIDSet()
		}
		w.AttachedNodeIDs.Clear()

		prev := -1
		for pi, p := range w.Points {
			if opts.EndpointsOnly && pi != 0 && pi != len(w.Points)-1 {
				continue
			}
			ni := matchNode(hash, nodes, p, opts.ConnectionTolerance)
			if ni < 0 {
				unmatched++
				continue
			}
			if ni == prev {
				continue
			}
			n := nodes[ni]
			n.AttachedWireIDs.Add(w.ID)
			w.AttachedNodeIDs.Add(n.ID)
			if prev >= 0 {
				g.addEdge(w.ID, g.index[nodes[prev].ID], g.index[n.ID])
			}
			prev = ni
		}
	}

	logging.For("connectivity").Debug("adjacency rebuilt",
		"nodes", g.NodeCount(), "edges", g.EdgeCount(), "wires", len(wires), "unmatched_points", unmatched)
	return g
}

// matchNode returns the index of the closest node within tolerance, the lowest
// index winning ties, or -1.
func matchNode(hash *geometry.SpatialHash[int], nodes []*topology.Node, p geometry.Point, tolerance float64) int {
	best := -1
	bestDist := math.Inf(1)
	for _, i := range hash.QueryNear(p) {
		d := geometry.Distance(p, nodes[i].Position)
		if d > tolerance {
			continue
		}
		if d < bestDist || (d == bestDist && i < best) {
			best, bestDist = i, d
		}
	}
	return best
}
