package network

import (
	"errors"
	"math"
	"testing"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// loop builds a battery from (0,0) to (0,100) closed through a resistor on
// the right-hand side and the given element on the top edge.
func loop(top Element) []Element {
	top.A, top.B = geometry.Pt(0, 0), geometry.Pt(100, 0)
	return []Element{
		{ID: "B1", Kind: KindBattery, A: geometry.Pt(0, 0), B: geometry.Pt(0, 100), Value: 9},
		top,
		{ID: "R1", Kind: KindResistor, A: geometry.Pt(100, 0), B: geometry.Pt(100, 100), Value: 100},
		{ID: "W2", Kind: KindWire, A: geometry.Pt(100, 100), B: geometry.Pt(0, 100)},
	}
}

func TestClassifySeriesLoop(t *testing.T) {
	res, err := Classify(loop(Element{ID: "W1", Kind: KindWire}), DefaultOptions())
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if res.Status != StatusSolved {
		t.Fatalf("status = %s (%s), want solved", res.Status, res.Reason)
	}
	sol := res.Solution
	if got := sol.ElementCurrents["R1"]; !near(got, 0.09) {
		t.Fatalf("R1 current = %v, want 0.09", got)
	}
	if got := sol.ElementCurrents["B1"]; !near(got, 0.09) {
		t.Fatalf("B1 current = %v, want 0.09", got)
	}
	if !near(sol.SourcePower, 0.81) {
		t.Fatalf("source power = %v, want 0.81", sol.SourcePower)
	}
	pos, neg := sol.Terminals["B1.a"], sol.Terminals["B1.b"]
	if got := sol.NodeVoltages[pos] - sol.NodeVoltages[neg]; !near(got, 9) {
		t.Fatalf("battery terminal difference = %v, want 9", got)
	}
}

func TestClassifyIdealShort(t *testing.T) {
	elems := []Element{
		{ID: "B1", Kind: KindBattery, A: geometry.Pt(0, 0), B: geometry.Pt(0, 100), Value: 9},
		{ID: "W1", Kind: KindWire, A: geometry.Pt(0, 100), B: geometry.Pt(50, 50)},
		{ID: "S1", Kind: KindSwitch, A: geometry.Pt(50, 50), B: geometry.Pt(0, 0), Closed: true},
	}
	res, err := Classify(elems, DefaultOptions())
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if res.Status != StatusInvalidIdealShort {
		t.Fatalf("status = %s, want invalid_ideal_short", res.Status)
	}
	if res.Reason == "" || res.Solution != nil {
		t.Fatalf("short result = %+v, want a reason and no solution", res)
	}
}

func TestClassifyGroundsAreTied(t *testing.T) {
	elems := []Element{
		{ID: "B1", Kind: KindBattery, A: geometry.Pt(0, 0), B: geometry.Pt(0, 100), Value: 5},
		{ID: "G1", Kind: KindGround, A: geometry.Pt(0, 0)},
		{ID: "G2", Kind: KindGround, A: geometry.Pt(0, 100)},
	}
	res, err := Classify(elems, DefaultOptions())
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if res.Status != StatusInvalidIdealShort {
		t.Fatalf("status = %s, want invalid_ideal_short", res.Status)
	}
}

func TestClassifyOpenSwitch(t *testing.T) {
	res, err := Classify(loop(Element{ID: "S1", Kind: KindSwitch}), DefaultOptions())
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if res.Status != StatusOpenCircuit {
		t.Fatalf("status = %s, want open_circuit", res.Status)
	}
	if got := res.Solution.ElementCurrents["R1"]; !near(got, 0) {
		t.Fatalf("R1 current = %v, want 0", got)
	}

	res, err = Classify(loop(Element{ID: "S1", Kind: KindSwitch, Closed: true}), DefaultOptions())
	if err != nil || res.Status != StatusSolved {
		t.Fatalf("closed switch: status = %s, err = %v, want solved", res.Status, err)
	}
}

func TestClassifySeriesLampAndResistor(t *testing.T) {
	res, err := Classify(loop(Element{ID: "L1", Kind: KindLamp, Value: 200}), DefaultOptions())
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if res.Status != StatusSolved {
		t.Fatalf("status = %s, want solved", res.Status)
	}
	if got := res.Solution.ElementCurrents["L1"]; !near(got, 0.03) {
		t.Fatalf("L1 current = %v, want 0.03", got)
	}
	if got := res.Solution.ElementCurrents["R1"]; !near(got, 0.03) {
		t.Fatalf("R1 current = %v, want 0.03", got)
	}
}

func TestClassifyGroundReference(t *testing.T) {
	elems := append(loop(Element{ID: "W1", Kind: KindWire}),
		Element{ID: "G1", Kind: KindGround, A: geometry.Pt(0, 100)})
	res, err := Classify(elems, DefaultOptions())
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	sol := res.Solution
	if got := sol.NodeVoltages[sol.Terminals["G1.a"]]; got != 0 {
		t.Fatalf("ground voltage = %v, want 0", got)
	}
	if got := sol.NodeVoltages[sol.Terminals["B1.a"]]; !near(got, 9) {
		t.Fatalf("positive terminal = %v, want 9", got)
	}
}

func TestClassifyNoSource(t *testing.T) {
	elems := []Element{{ID: "R1", Kind: KindResistor, A: geometry.Pt(0, 0), B: geometry.Pt(10, 0), Value: 10}}
	res, err := Classify(elems, DefaultOptions())
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if res.Status != StatusNoSource {
		t.Fatalf("status = %s, want no_source", res.Status)
	}
}

func TestClassifyParallelSourcesSingular(t *testing.T) {
	elems := []Element{
		{ID: "B1", Kind: KindBattery, A: geometry.Pt(0, 0), B: geometry.Pt(0, 100), Value: 9},
		{ID: "B2", Kind: KindBattery, A: geometry.Pt(0, 0), B: geometry.Pt(0, 100), Value: 6},
		{ID: "R1", Kind: KindResistor, A: geometry.Pt(0, 0), B: geometry.Pt(0, 100), Value: 10},
	}
	res, err := Classify(elems, DefaultOptions())
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if res.Status != StatusSingular {
		t.Fatalf("status = %s, want singular", res.Status)
	}
}

func TestClassifyRejectsBadElements(t *testing.T) {
	cases := [][]Element{
		{{ID: "R1", Kind: KindResistor, A: geometry.Pt(0, 0), B: geometry.Pt(1, 0), Value: 0}},
		{{ID: "", Kind: KindWire, A: geometry.Pt(0, 0), B: geometry.Pt(1, 0)}},
		{
			{ID: "W1", Kind: KindWire, A: geometry.Pt(0, 0), B: geometry.Pt(1, 0)},
			{ID: "W1", Kind: KindWire, A: geometry.Pt(1, 0), B: geometry.Pt(2, 0)},
		},
	}
	for i, elems := range cases {
		if _, err := Classify(elems, DefaultOptions()); !errors.Is(err, ErrInvalidElement) {
			t.Fatalf("case %d: error = %v, want ErrInvalidElement", i, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	for k := range kindNames {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("capacitor"); err == nil {
		t.Fatalf("ParseKind(capacitor) succeeded, want error")
	}
}
