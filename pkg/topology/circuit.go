package topology

import "fmt"

// Circuit owns the nodes and wires of one drawing. Iteration order is
// insertion order; lookups by id go through index tables.
//
// A Circuit has a single writer. Readers that need a stable view while edits
// continue should take a Clone.
type Circuit struct {
	nodes     []*Node
	wires     []*Wire
	nodeIndex map[string]int
	wireIndex map[string]int
}

// NewCircuit creates an empty circuit.
func NewCircuit() *Circuit {
	return &Circuit{
		nodeIndex: make(map[string]int),
		wireIndex: make(map[string]int),
	}
}

// NewCircuitFrom builds a circuit from existing nodes and wires. Duplicate ids
// are rejected.
func NewCircuitFrom(nodes []*Node, wires []*Wire) (*Circuit, error) {
	c := NewCircuit()
	for _, n := range nodes {
		if err := c.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, w := range wires {
		if err := c.AddWire(w); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddNode appends a node.
func (c *Circuit) AddNode(n *Node) error {
	if _, exists := c.nodeIndex[n.ID]; exists {
		return fmt.Errorf("topology: duplicate node id %q", n.ID)
	}
	if n.AttachedWireIDs == nil {
		n.AttachedWireIDs = NewIDSet()
	}
	c.nodeIndex[n.ID] = len(c.nodes)
	c.nodes = append(c.nodes, n)
	return nil
}

// AddWire appends a wire.
func (c *Circuit) AddWire(w *Wire) error {
	if _, exists := c.wireIndex[w.ID]; exists {
		return fmt.Errorf("topology: duplicate wire id %q", w.ID)
	}
	if w.AttachedNodeIDs == nil {
		w.AttachedNodeIDs = NewIDSet()
	}
	c.wireIndex[w.ID] = len(c.wires)
	c.wires = append(c.wires, w)
	return nil
}

// Node returns the node with the given id, or nil.
func (c *Circuit) Node(id string) *Node {
	if i, ok := c.nodeIndex[id]; ok {
		return c.nodes[i]
	}
	return nil
}

// Wire returns the wire with the given id, or nil.
func (c *Circuit) Wire(id string) *Wire {
	if i, ok := c.wireIndex[id]; ok {
		return c.wires[i]
	}
	return nil
}

// Nodes returns a copy of the node list.
func (c *Circuit) Nodes() []*Node {
	out := make([]*Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Wires returns a copy of the wire list.
func (c *Circuit) Wires() []*Wire {
	out := make([]*Wire, len(c.wires))
	copy(out, c.wires)
	return out
}

// NodeCount returns the number of nodes.
func (c *Circuit) NodeCount() int { return len(c.nodes) }

// WireCount returns the number of wires.
func (c *Circuit) WireCount() int { return len(c.wires) }

// RemoveNodes drops every node whose id is in ids, keeping the order of the
// rest.
func (c *Circuit) RemoveNodes(ids IDSet) {
	if ids.Len() == 0 {
		return
	}
	kept := c.nodes[:0]
	for _, n := range c.nodes {
		if !ids.Contains(n.ID) {
			kept = append(kept, n)
		}
	}
	c.nodes = kept
	c.reindexNodes()
}

// RemoveWire drops a wire by id. It reports whether the wire existed.
func (c *Circuit) RemoveWire(id string) bool {
	i, ok := c.wireIndex[id]
	if !ok {
		return false
	}
	c.wires = append(c.wires[:i], c.wires[i+1:]...)
	c.wireIndex = make(map[string]int, len(c.wires))
	for j, w := range c.wires {
		c.wireIndex[w.ID] = j
	}
	return true
}

func (c *Circuit) reindexNodes() {
	c.nodeIndex = make(map[string]int, len(c.nodes))
	for i, n := range c.nodes {
		c.nodeIndex[n.ID] = i
	}
}

// Clone creates a deep copy that shares nothing with c.
func (c *Circuit) Clone() *Circuit {
	clone := NewCircuit()
	for _, n := range c.nodes {
		clone.nodeIndex[n.ID] = len(clone.nodes)
		clone.nodes = append(clone.nodes, n.Clone())
	}
	for _, w := range c.wires {
		clone.wireIndex[w.ID] = len(clone.wires)
		clone.wires = append(clone.wires, w.Clone())
	}
	return clone
}
