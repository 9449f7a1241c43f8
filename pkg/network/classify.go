package network

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/OpenTraceLab/OpenTraceCircuit/internal/logging"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
)

// Status is the outcome of classifying a network.
type Status string

const (
	StatusSolved            Status = "solved"
	StatusInvalidIdealShort Status = "invalid_ideal_short"
	StatusNoSource          Status = "no_source"
	StatusOpenCircuit       Status = "open_circuit"
	StatusSingular          Status = "singular"
)

// DefaultTolerance is the distance within which two terminals touch.
const DefaultTolerance = 1.0

// currentEpsilon is the magnitude below which a source current counts as zero.
const currentEpsilon = 1e-12

// Options controls terminal matching.
type Options struct {
	Tolerance float64
}

// DefaultOptions returns DefaultTolerance.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance}
}

// Solution is the DC operating point of a network. Node names are n0, n1, ...
// in order of first appearance; Terminals maps "ID.a" and "ID.b" to them.
type Solution struct {
	NodeVoltages    map[string]float64 `json:"nodeVoltages"`
	Terminals       map[string]string  `json:"terminals"`
	ElementCurrents map[string]float64 `json:"elementCurrents"`
	SourcePower     float64            `json:"sourcePower"`
}

// Result is the classification of a network. Solution is set for solved and
// open circuits.
type Result struct {
	Status   Status    `json:"status"`
	Reason   string    `json:"reason,omitempty"`
	Solution *Solution `json:"solution,omitempty"`
}

type terminal struct {
	id  string
	pos geometry.Point
}

func terminalID(e Element, end byte) string {
	return e.ID + "." + string(end)
}

// Classify groups element terminals into electrical nodes and solves the
// network.
//
// Terminals within opts.Tolerance share a node. Wires and closed switches
// then collapse their two nodes into one, and every ground is tied to every
// other. A battery whose terminals land in the same collapsed node is an
// ideal short. Otherwise the remaining resistors, lamps and batteries are
// solved by modified nodal analysis with one reference node per connected
// part, preferring a ground.
//
// Malformed elements are reported as an error wrapping ErrInvalidElement;
// every electrical outcome, including a short, is a Result.
func Classify(elements []Element, opts Options) (Result, error) {
	ids := make(map[string]bool, len(elements))
	for _, e := range elements {
		if err := e.Validate(); err != nil {
			return Result{}, err
		}
		if ids[e.ID] {
			return Result{}, fmt.Errorf("%w: duplicate id %s", ErrInvalidElement, e.ID)
		}
		ids[e.ID] = true
	}

	var terms []terminal
	for _, e := range elements {
		terms = append(terms, terminal{terminalID(e, 'a'), e.A})
		if e.terminals() == 2 {
			terms = append(terms, terminal{terminalID(e, 'b'), e.B})
		}
	}

	uf := connectivity.NewUnionFind()
	cell := opts.Tolerance
	if cell <= 0 {
		cell = 1
	}
	hash := geometry.NewSpatialHash[int](cell)
	for i, t := range terms {
		uf.Add(t.id)
		for _, j := range hash.QueryNear(t.pos) {
			if geometry.Distance(t.pos, terms[j].pos) <= opts.Tolerance {
				uf.Union(t.id, terms[j].id)
			}
		}
		hash.Insert(t.pos, i)
	}

	var firstGround string
	var sources []Element
	for _, e := range elements {
		switch {
		case e.conducts():
			uf.Union(terminalID(e, 'a'), terminalID(e, 'b'))
		case e.Kind == KindGround:
			if firstGround == "" {
				firstGround = terminalID(e, 'a')
			} else {
				uf.Union(firstGround, terminalID(e, 'a'))
			}
		case e.Kind == KindBattery:
			sources = append(sources, e)
		}
	}

	if len(sources) == 0 {
		return Result{Status: StatusNoSource, Reason: "no battery in circuit"}, nil
	}
	for _, s := range sources {
		if uf.Connected(terminalID(s, 'a'), terminalID(s, 'b')) {
			return Result{
				Status: StatusInvalidIdealShort,
				Reason: fmt.Sprintf("%s is shorted by a zero-resistance path", s.ID),
			}, nil
		}
	}

	res := solve(elements, sources, terms, uf, firstGround)
	logging.For("network").Debug("network classified",
		"elements", len(elements), "sources", len(sources), "status", string(res.Status))
	return res, nil
}

func solve(elements, sources []Element, terms []terminal, uf *connectivity.UnionFind, ground string) Result {
	labels := make(map[string]string)
	var order []string
	sol := &Solution{
		NodeVoltages:    make(map[string]float64),
		Terminals:       make(map[string]string, len(terms)),
		ElementCurrents: make(map[string]float64),
	}
	for _, t := range terms {
		root := uf.Find(t.id)
		label, ok := labels[root]
		if !ok {
			label = fmt.Sprintf("n%d", len(order))
			labels[root] = label
			order = append(order, label)
		}
		sol.Terminals[t.id] = label
	}
	node := func(e Element, end byte) string { return sol.Terminals[terminalID(e, end)] }

	// Each part of the network tied together by resistive or source branches
	// gets its own reference node.
	parts := connectivity.NewUnionFind(order...)
	for _, e := range elements {
		if e.resistive() || e.Kind == KindBattery {
			parts.Union(node(e, 'a'), node(e, 'b'))
		}
	}
	refs := make(map[string]string)
	if ground != "" {
		g := sol.Terminals[ground]
		refs[parts.Find(g)] = g
	}
	for _, s := range sources {
		if p := parts.Find(node(s, 'b')); refs[p] == "" {
			refs[p] = node(s, 'b')
		}
	}
	for _, label := range order {
		if p := parts.Find(label); refs[p] == "" {
			refs[p] = label
		}
	}
	isRef := make(map[string]bool, len(refs))
	for _, r := range refs {
		isRef[r] = true
	}

	index := make(map[string]int)
	for _, label := range order {
		if !isRef[label] {
			index[label] = len(index)
		}
	}
	nv := len(index)
	n := nv + len(sources)

	A := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	add := func(r, c string, v float64) {
		ri, rok := index[r]
		ci, cok := index[c]
		if rok && cok {
			A.Set(ri, ci, A.At(ri, ci)+v)
		}
	}
	for _, e := range elements {
		if !e.resistive() {
			continue
		}
		g := 1 / e.Value
		na, nb := node(e, 'a'), node(e, 'b')
		add(na, na, g)
		add(nb, nb, g)
		add(na, nb, -g)
		add(nb, na, -g)
	}
	for k, s := range sources {
		m := nv + k
		if i, ok := index[node(s, 'a')]; ok {
			A.Set(i, m, A.At(i, m)+1)
			A.Set(m, i, A.At(m, i)+1)
		}
		if i, ok := index[node(s, 'b')]; ok {
			A.Set(i, m, A.At(i, m)-1)
			A.Set(m, i, A.At(m, i)-1)
		}
		b.SetVec(m, s.Value)
	}

	var x mat.VecDense
	if err := x.SolveVec(A, b); err != nil {
		return Result{Status: StatusSingular, Reason: "node equations have no unique solution: " + err.Error()}
	}

	voltage := func(label string) float64 {
		if i, ok := index[label]; ok {
			return x.AtVec(i)
		}
		return 0
	}
	for _, label := range order {
		sol.NodeVoltages[label] = voltage(label)
	}
	for _, e := range elements {
		if e.resistive() {
			sol.ElementCurrents[e.ID] = (voltage(node(e, 'a')) - voltage(node(e, 'b'))) / e.Value
		}
	}
	flowing := false
	for k, s := range sources {
		i := -x.AtVec(nv + k)
		sol.ElementCurrents[s.ID] = i
		sol.SourcePower += s.Value * i
		if math.Abs(i) > currentEpsilon {
			flowing = true
		}
	}

	if !flowing {
		return Result{Status: StatusOpenCircuit, Reason: "no closed path through any source", Solution: sol}
	}
	return Result{Status: StatusSolved, Solution: sol}
}
