package solver

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInsufficientConstraints is returned when the known quantities do
	// not determine all four DC metrics.
	ErrInsufficientConstraints = errors.New("solver: insufficient constraints")
	// ErrInvalidInput is returned for negative or non-finite inputs.
	ErrInvalidInput = errors.New("solver: invalid input")
	// ErrInconsistentConstraints is returned when the caller's values
	// contradict Ohm's law or the power law.
	ErrInconsistentConstraints = errors.New("solver: inconsistent constraints")
)

// Quantity names one of the four DC metrics.
type Quantity uint8

const (
	Voltage Quantity = iota
	Current
	Resistance
	Watts
	quantityCount
)

var quantityNames = map[Quantity]string{
	Voltage:    "voltage",
	Current:    "current",
	Resistance: "resistance",
	Watts:      "watts",
}

func (q Quantity) String() string {
	if name, ok := quantityNames[q]; ok {
		return name
	}
	return fmt.Sprintf("Quantity(%d)", q)
}

// MarshalText encodes the quantity by name.
func (q Quantity) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// Known holds the caller-supplied subset of DC metrics.
type Known map[Quantity]float64

// Derivation records how one value was computed.
type Derivation struct {
	Quantity Quantity   `json:"quantity"`
	Formula  string     `json:"formula"`
	Inputs   []Quantity `json:"inputs"`
	Value    float64    `json:"value"`
}

// WireMetrics is a fully determined set of DC metrics.
type WireMetrics struct {
	Voltage     float64      `json:"voltage"`
	Current     float64      `json:"current"`
	Resistance  float64      `json:"resistance"`
	Watts       float64      `json:"watts"`
	Derivations []Derivation `json:"derivations"`
	Iterations  int          `json:"iterations"`
}

// DCOptions bounds the fixed-point iteration.
type DCOptions struct {
	MaxIterations int
	Epsilon       float64
}

// DefaultDCOptions returns a ten pass cap and a relative epsilon of 1e-9.
func DefaultDCOptions() DCOptions {
	return DCOptions{MaxIterations: 10, Epsilon: 1e-9}
}

type rule struct {
	out     Quantity
	in      []Quantity
	formula string
	eval    func(v *[quantityCount]float64) float64
}

var rules = []rule{
	{Voltage, []Quantity{Current, Resistance}, "V = I * R", func(v *[quantityCount]float64) float64 { return v[Current] * v[Resistance] }},
	{Current, []Quantity{Voltage, Resistance}, "I = V / R", func(v *[quantityCount]float64) float64 { return v[Voltage] / v[Resistance] }},
	{Resistance, []Quantity{Voltage, Current}, "R = V / I", func(v *[quantityCount]float64) float64 { return v[Voltage] / v[Current] }},
	{Watts, []Quantity{Voltage, Current}, "P = V * I", func(v *[quantityCount]float64) float64 { return v[Voltage] * v[Current] }},
	{Watts, []Quantity{Current, Resistance}, "P = I^2 * R", func(v *[quantityCount]float64) float64 { return v[Current] * v[Current] * v[Resistance] }},
	{Watts, []Quantity{Voltage, Resistance}, "P = V^2 / R", func(v *[quantityCount]float64) float64 { return v[Voltage] * v[Voltage] / v[Resistance] }},
	{Voltage, []Quantity{Watts, Current}, "V = P / I", func(v *[quantityCount]float64) float64 { return v[Watts] / v[Current] }},
	{Voltage, []Quantity{Watts, Resistance}, "V = sqrt(P * R)", func(v *[quantityCount]float64) float64 { return math.Sqrt(v[Watts] * v[Resistance]) }},
	{Current, []Quantity{Watts, Voltage}, "I = P / V", func(v *[quantityCount]float64) float64 { return v[Watts] / v[Voltage] }},
	{Current, []Quantity{Watts, Resistance}, "I = sqrt(P / R)", func(v *[quantityCount]float64) float64 { return math.Sqrt(v[Watts] / v[Resistance]) }},
	{Resistance, []Quantity{Watts, Current}, "R = P / I^2", func(v *[quantityCount]float64) float64 { return v[Watts] / (v[Current] * v[Current]) }},
	{Resistance, []Quantity{Voltage, Watts}, "R = V^2 / P", func(v *[quantityCount]float64) float64 { return v[Voltage] * v[Voltage] / v[Watts] }},
}

// SolveWireMetrics derives the missing DC metrics from the known ones.
//
// Every Ohm's-law and power-law rule whose inputs are known is applied in
// turn. A rule fires when its output is unknown, or was itself derived and
// differs from the new value by more than the relative epsilon. Caller
// values are never overwritten. Passes repeat until nothing changes or
// MaxIterations is reached. Results that are not finite, such as a division
// by a zero resistance, are discarded.
//
// At least two independent quantities are needed. If any metric is still
// unknown the returned error wraps ErrInsufficientConstraints and names it.
// If the final values break V = I * R or P = V * I, for example because the
// caller gave all of V, I and R, the error wraps ErrInconsistentConstraints.
func SolveWireMetrics(known Known, opts DCOptions) (WireMetrics, error) {
	var (
		vals    [quantityCount]float64
		have    [quantityCount]bool
		given   [quantityCount]bool
		derived = make(map[Quantity]int)
		out     WireMetrics
	)
	for q, v := range known {
		if q >= quantityCount {
			return WireMetrics{}, fmt.Errorf("%w: unknown quantity %d", ErrInvalidInput, q)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return WireMetrics{}, fmt.Errorf("%w: %s = %v", ErrInvalidInput, q, v)
		}
		vals[q], have[q], given[q] = v, true, true
	}

	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultDCOptions().MaxIterations
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = DefaultDCOptions().Epsilon
	}

	for out.Iterations < maxIter {
		out.Iterations++
		changed := false
		for _, r := range rules {
			if given[r.out] || !allKnown(have, r.in) {
				continue
			}
			v := r.eval(&vals)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if have[r.out] && !differs(vals[r.out], v, opts.Epsilon) {
				continue
			}
			vals[r.out], have[r.out] = v, true
			d := Derivation{Quantity: r.out, Formula: r.formula, Inputs: r.in, Value: v}
			if i, ok := derived[r.out]; ok {
				out.Derivations[i] = d
			} else {
				derived[r.out] = len(out.Derivations)
				out.Derivations = append(out.Derivations, d)
			}
			changed = true
		}
		if !changed {
			break
		}
	}

	var missing []string
	for q := Quantity(0); q < quantityCount; q++ {
		if !have[q] {
			missing = append(missing, q.String())
		}
	}
	if len(missing) > 0 {
		return WireMetrics{}, fmt.Errorf("%w: cannot determine %s", ErrInsufficientConstraints, strings.Join(missing, ", "))
	}
	if v := vals[Current] * vals[Resistance]; differs(vals[Voltage], v, opts.Epsilon) {
		return WireMetrics{}, fmt.Errorf("%w: voltage %v but I * R = %v", ErrInconsistentConstraints, vals[Voltage], v)
	}
	if p := vals[Voltage] * vals[Current]; differs(vals[Watts], p, opts.Epsilon) {
		return WireMetrics{}, fmt.Errorf("%w: watts %v but V * I = %v", ErrInconsistentConstraints, vals[Watts], p)
	}

	out.Voltage = vals[Voltage]
	out.Current = vals[Current]
	out.Resistance = vals[Resistance]
	out.Watts = vals[Watts]
	return out, nil
}

func allKnown(have [quantityCount]bool, qs []Quantity) bool {
	for _, q := range qs {
		if !have[q] {
			return false
		}
	}
	return true
}

func differs(a, b, eps float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) > eps*scale
}
