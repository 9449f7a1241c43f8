// Package document loads and saves circuits.
//
// Two formats are supported, chosen by file extension: JSON (.json) and a
// line-friendly S-expression form (.csx). Both carry the same Document. JSON
// files written by older editors, which held only bare polylines, are
// detected on load and migrated.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/topology"
)

// CurrentVersion is written into every saved document.
const CurrentVersion = 1

var (
	// ErrUnknownFormat is returned for unsupported file extensions.
	ErrUnknownFormat = errors.New("document: unknown format")
	// ErrVersion is returned for documents newer than CurrentVersion.
	ErrVersion = errors.New("document: unsupported version")
)

// Format identifies an on-disk encoding.
type Format uint8

const (
	FormatJSON Format = iota
	FormatSexpr
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatSexpr:
		return "csx"
	}
	return fmt.Sprintf("Format(%d)", f)
}

// FormatForPath picks a format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csx":
		return FormatSexpr, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Document is the persisted form of a circuit.
type Document struct {
	Version int              `json:"version"`
	Nodes   []*topology.Node `json:"nodes"`
	Wires   []*topology.Wire `json:"wires"`
}

// FromCircuit snapshots c into a document.
func FromCircuit(c *topology.Circuit) *Document {
	snap := c.Clone()
	return &Document{
		Version: CurrentVersion,
		Nodes:   snap.Nodes(),
		Wires:   snap.Wires(),
	}
}

// Circuit builds a circuit from the document and rebuilds adjacency so the
// attachment sets agree with the geometry.
func (d *Document) Circuit(opts connectivity.Options) (*topology.Circuit, *connectivity.AdjacencyGraph, error) {
	c, err := topology.NewCircuitFrom(d.Nodes, d.Wires)
	if err != nil {
		return nil, nil, fmt.Errorf("document: %w", err)
	}
	g := connectivity.RebuildAdjacencyForWires(c.Wires(), c.Nodes(), opts)
	return c, g, nil
}

func (d *Document) validate() error {
	if d.Version > CurrentVersion {
		return fmt.Errorf("%w: %d", ErrVersion, d.Version)
	}
	for i, n := range d.Nodes {
		if n == nil {
			return fmt.Errorf("document: node %d is null", i)
		}
		if n.ID == "" {
			return fmt.Errorf("document: node without id")
		}
	}
	for i, w := range d.Wires {
		if w == nil {
			return fmt.Errorf("document: wire %d is null", i)
		}
		if w.ID == "" {
			return fmt.Errorf("document: wire without id")
		}
		if len(topology.RemoveDuplicatePoints(w.Points)) < 2 {
			return fmt.Errorf("document: wire %s: %w", w.ID, topology.ErrDegenerateWire)
		}
	}
	return nil
}
