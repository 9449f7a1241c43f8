// Package topology defines the nodes and wires of a drawn circuit together with
// the primitives that edit them: construction, point insertion, proximity
// lookup and node merging.
package topology

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
)

// NodeType classifies a node.
type NodeType uint8

const (
	// NodeWireAnchor is a free wire endpoint not tied to any component.
	NodeWireAnchor NodeType = iota
	// NodeJunction marks a point where wires meet or cross.
	NodeJunction
	// NodeComponentPin is owned by the component placement layer and is never
	// moved by this package.
	NodeComponentPin
)

var nodeTypeNames = map[NodeType]string{
	NodeWireAnchor:   "wireAnchor",
	NodeJunction:     "junction",
	NodeComponentPin: "componentPin",
}

func (t NodeType) String() string {
	if name, ok := nodeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("NodeType(%d)", t)
}

// ParseNodeType converts the textual name back to a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	for t, name := range nodeTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("topology: unknown node type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t NodeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *NodeType) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// priority orders node types for merging: the higher value survives.
func (t NodeType) priority() int {
	return int(t)
}

// ErrSegmentIndex is returned when a segment index does not address a segment
// of the wire.
var ErrSegmentIndex = errors.New("topology: segment index out of range")

// ErrDegenerateWire is returned when a wire would have fewer than two distinct
// points.
var ErrDegenerateWire = errors.New("topology: wire needs at least two distinct points")

// Node is a point of electrical significance.
type Node struct {
	ID              string         `json:"id"`
	Type            NodeType       `json:"type"`
	Position        geometry.Point `json:"position"`
	AttachedWireIDs IDSet          `json:"attachedWireIds"`
}

// Wire is an ordered polyline. Consecutive points are always distinct.
type Wire struct {
	ID              string           `json:"id"`
	Points          []geometry.Point `json:"points"`
	AttachedNodeIDs IDSet            `json:"attachedNodeIds"`
}

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}

// CreateNode builds a node of the given type at pos. An empty id is replaced
// with a generated one.
func CreateNode(t NodeType, pos geometry.Point, id string) *Node {
	if id == "" {
		id = NewID()
	}
	return &Node{
		ID:              id,
		Type:            t,
		Position:        pos,
		AttachedWireIDs: NewIDSet(),
	}
}

// CreateWire builds a wire from a copy of points. Repeated consecutive points
// are collapsed; fewer than two remaining points is an error.
func CreateWire(points []geometry.Point, id string) (*Wire, error) {
	pts := RemoveDuplicatePoints(points)
	if len(pts) < 2 {
		return nil, ErrDegenerateWire
	}
	if id == "" {
		id = NewID()
	}
	return &Wire{
		ID:              id,
		Points:          pts,
		AttachedNodeIDs: NewIDSet(),
	}, nil
}

// RemoveDuplicatePoints returns a new slice without repeated consecutive
// points.
func RemoveDuplicatePoints(points []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].Equal(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Start returns the first point of the wire.
func (w *Wire) Start() geometry.Point { return w.Points[0] }

// End returns the last point of the wire.
func (w *Wire) End() geometry.Point { return w.Points[len(w.Points)-1] }

// SegmentCount returns the number of segments.
func (w *Wire) SegmentCount() int { return len(w.Points) - 1 }

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	c.AttachedWireIDs = n.AttachedWireIDs.Clone()
	return &c
}

// Clone returns a deep copy of the wire.
func (w *Wire) Clone() *Wire {
	c := *w
	c.Points = make([]geometry.Point, len(w.Points))
	copy(c.Points, w.Points)
	c.AttachedNodeIDs = w.AttachedNodeIDs.Clone()
	return &c
}
