// Package connectivity derives the electrical graph of a drawing from its
// wires and nodes and answers questions about it.
//
// # Overview
//
// The adjacency graph is never patched incrementally. Any edit to the
// topology is followed by a full RebuildAdjacencyForWires, which:
//  1. Clears every node's attached-wire set and every wire's attached-node set
//  2. Walks each wire's points in order and matches them to nodes within the
//     connection tolerance
//  3. Links each pair of consecutive distinct matches with an edge tagged by
//     the wire id
//
// The rebuilt graph feeds the queries in this package: connected components
// (union-find), reachability (breadth-first), cycle detection (depth-first)
// and the circuit completion check.
//
// # Matching Strategy
//
// Options.ConnectionTolerance is independent of, and normally looser than, the
// router's snap radius. All points of a wire are matched by default, so a
// junction placed mid-wire is connected; Options.EndpointsOnly restricts
// matching to the two wire ends.
//
// # Traversal
//
// Every traversal uses an explicit queue or stack. Large circuits cannot
// exhaust the goroutine stack.
//
// # Known Deviation
//
// DetectCycle treats any visited non-parent neighbour as a loop and merges
// parallel wires into one adjacency. CycleBasis computes independent loops on
// the simple graph for callers that need them.
package connectivity
