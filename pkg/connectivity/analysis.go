package connectivity

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/topology"
)

// FindConnectedComponents unions the endpoints of every edge and returns the
// resulting partition of all graph nodes. Isolated nodes form singleton
// components.
func FindConnectedComponents(g *AdjacencyGraph) [][]string {
	uf := NewUnionFind(g.ids...)
	for _, e := range g.edges {
		uf.Union(e.NodeA, e.NodeB)
	}
	return uf.GetComponents()
}

// GetReachableNodes returns every node reachable from start, start included,
// using an iterative breadth-first walk.
func GetReachableNodes(start string, g *AdjacencyGraph) topology.IDSet {
	visited := topology.NewIDSet(start)
	si, ok := g.index[start]
	if !ok {
		return visited
	}

	seen := make([]bool, len(g.ids))
	seen[si] = true
	queue := []int{si}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.neighbors[cur] {
			if seen[n] {
				continue
			}
			seen[n] = true
			visited.Add(g.ids[n])
			queue = append(queue, n)
		}
	}
	return visited
}

type stackFrame struct {
	node   int
	parent int
}

// DetectCycle reports whether the graph contains a cycle. It runs an
// iterative depth-first walk from every unvisited node and returns true as
// soon as a visited node is reached over an edge other than the one leading
// back to the parent.
//
// Parallel wires between the same two nodes collapse into one adjacency and do
// not count as a loop. CycleBasis gives the individual loops when they are
// needed.
func DetectCycle(g *AdjacencyGraph) bool {
	visited := make([]bool, len(g.ids))
	for root := range g.ids {
		if visited[root] {
			continue
		}
		stack := []stackFrame{{node: root, parent: -1}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[top.node] {
				continue
			}
			visited[top.node] = true
			for _, n := range g.neighbors[top.node] {
				if n == top.parent {
					continue
				}
				if visited[n] {
					return true
				}
				stack = append(stack, stackFrame{node: n, parent: top.node})
			}
		}
	}
	return false
}

// CycleBasis returns a set of independent loops of the graph, each as the
// ordered node ids around the loop. The number of loops is the cyclomatic
// number of the simple graph.
func CycleBasis(g *AdjacencyGraph) [][]string {
	ug := simple.NewUndirectedGraph()
	for i := range g.ids {
		ug.AddNode(simple.Node(int64(i)))
	}
	for i, ns := range g.neighbors {
		for _, n := range ns {
			if n > i {
				ug.SetEdge(ug.NewEdge(simple.Node(int64(i)), simple.Node(int64(n))))
			}
		}
	}

	var loops [][]string
	for _, cycle := range topo.UndirectedCyclesIn(ug) {
		if len(cycle) > 1 && cycle[0].ID() == cycle[len(cycle)-1].ID() {
			cycle = cycle[:len(cycle)-1]
		}
		loop := make([]string, len(cycle))
		for k, n := range cycle {
			loop[k] = g.ids[n.ID()]
		}
		loops = append(loops, loop)
	}
	return loops
}

// PowerSourcePair names the two terminal nodes of a power source.
type PowerSourcePair struct {
	Positive string `json:"positive" yaml:"positive"`
	Negative string `json:"negative" yaml:"negative"`
}

// Diagnostic messages reported by CheckCircuitCompletion.
const (
	MessageEmpty        = "No circuit elements present"
	MessageComplete     = "Circuit is complete and closed"
	MessageNoPower      = "Power source terminals not connected"
	MessageNoLoop       = "No closed loop detected in circuit"
	MessageIncomplete   = "Circuit is incomplete"
	messageOpenTemplate = "Open circuit: %d unconnected wire endpoint(s)"
)

// CircuitStatus summarises whether a drawing forms a complete powered loop.
type CircuitStatus struct {
	IsClosed             bool       `json:"isClosed"`
	HasLoop              bool       `json:"hasLoop"`
	PowerSourceConnected bool       `json:"powerSourceConnected"`
	OpenEndpoints        []string   `json:"openEndpoints"`
	Components           [][]string `json:"components"`
	Message              string     `json:"message"`
}

// CheckCircuitCompletion rebuilds adjacency and evaluates the circuit. A
// drawing without wires has no circuit elements to evaluate.
//
// An open endpoint is a wireAnchor node with exactly one neighbour; pins and
// junctions of degree one are treated as intentional terminals. With power
// source pairs, the source is connected when any pair's negative terminal is
// reachable from its positive one. Without pairs, any component of two or more
// nodes counts. The circuit is closed when the source is connected, a loop
// exists and there are no open endpoints.
func CheckCircuitCompletion(wires []*topology.Wire, nodes []*topology.Node, pairs []PowerSourcePair, opts Options) CircuitStatus {
	status := CircuitStatus{OpenEndpoints: []string{}}
	if len(wires) == 0 {
		status.Message = MessageEmpty
		return status
	}

	g := RebuildAdjacencyForWires(wires, nodes, opts)
	status.Components = FindConnectedComponents(g)
	status.HasLoop = DetectCycle(g)

	for _, n := range nodes {
		if n.Type == topology.NodeWireAnchor && g.Degree(n.ID) == 1 {
			status.OpenEndpoints = append(status.OpenEndpoints, n.ID)
		}
	}

	if len(pairs) > 0 {
		for _, p := range pairs {
			if GetReachableNodes(p.Positive, g).Contains(p.Negative) {
				status.PowerSourceConnected = true
				break
			}
		}
	} else {
		for _, c := range status.Components {
			if len(c) >= 2 {
				status.PowerSourceConnected = true
				break
			}
		}
	}

	status.IsClosed = status.PowerSourceConnected && status.HasLoop && len(status.OpenEndpoints) == 0

	switch {
	case status.IsClosed:
		status.Message = MessageComplete
	case !status.PowerSourceConnected:
		status.Message = MessageNoPower
	case !status.HasLoop:
		status.Message = MessageNoLoop
	case len(status.OpenEndpoints) > 0:
		status.Message = fmt.Sprintf(messageOpenTemplate, len(status.OpenEndpoints))
	default:
		status.Message = MessageIncomplete
	}
	return status
}

// AreNodesConnected rebuilds adjacency and reports whether b is reachable
// from a.
func AreNodesConnected(a, b string, wires []*topology.Wire, nodes []*topology.Node, opts Options) bool {
	g := RebuildAdjacencyForWires(wires, nodes, opts)
	return GetReachableNodes(a, g).Contains(b)
}
