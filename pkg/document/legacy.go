package document

import (
	"github.com/OpenTraceLab/OpenTraceCircuit/internal/logging"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/topology"
)

// LegacyDocument is the older file layout: bare polylines with no node list.
type LegacyDocument struct {
	Wires [][]geometry.Point `json:"wires"`
}

// Migrate converts a legacy document. Every polyline becomes a wire with a
// wireAnchor node at each end; polylines that share an end point share the
// anchor. Polylines with fewer than two distinct points are dropped.
// Attachment sets are filled in by a full adjacency rebuild.
func Migrate(l *LegacyDocument) *Document {
	log := logging.For("document")
	d := &Document{Version: CurrentVersion}
	anchors := make(map[geometry.Point]*topology.Node)

	anchorAt := func(p geometry.Point) {
		if _, ok := anchors[p]; ok {
			return
		}
		n := topology.CreateNode(topology.NodeWireAnchor, p, "")
		anchors[p] = n
		d.Nodes = append(d.Nodes, n)
	}

	dropped := 0
	for _, pts := range l.Wires {
		w, err := topology.CreateWire(pts, "")
		if err != nil {
			dropped++
			continue
		}
		anchorAt(w.Start())
		anchorAt(w.End())
		d.Wires = append(d.Wires, w)
	}

	connectivity.RebuildAdjacencyForWires(d.Wires, d.Nodes, connectivity.DefaultOptions())
	log.Info("legacy document migrated", "wires", len(d.Wires), "anchors", len(d.Nodes), "dropped", dropped)
	return d
}
