package solver

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrZeroImpedance is returned when a circuit has neither resistance nor
// net reactance.
var ErrZeroImpedance = errors.New("solver: zero impedance")

// ACInput describes a series RLC load driven by a sinusoidal source.
// Inductance and capacitance of zero mean the component is absent.
type ACInput struct {
	Voltage     float64 `json:"voltage"`
	Frequency   float64 `json:"frequency"`
	Resistance  float64 `json:"resistance"`
	Inductance  float64 `json:"inductance"`
	Capacitance float64 `json:"capacitance"`
}

// ACResult holds the phasor solution of an ACInput.
type ACResult struct {
	InductiveReactance  float64 `json:"inductiveReactance"`
	CapacitiveReactance float64 `json:"capacitiveReactance"`
	Reactance           float64 `json:"reactance"`
	Impedance           float64 `json:"impedance"`
	PhaseAngle          float64 `json:"phaseAngle"`
	PhaseAngleDegrees   float64 `json:"phaseAngleDegrees"`
	Current             float64 `json:"current"`
	PowerFactor         float64 `json:"powerFactor"`
	RealPower           float64 `json:"realPower"`
	ReactivePower       float64 `json:"reactivePower"`
	ApparentPower       float64 `json:"apparentPower"`
}

// FieldError is one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every failed rule. It is nil when input is valid.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message
	}
	return "solver: invalid AC input: " + strings.Join(msgs, "; ")
}

// ValidateACInput checks every field independently and returns all
// violations.
func ValidateACInput(in ACInput) ValidationErrors {
	var errs ValidationErrors
	check := func(field string, v float64, ok bool, rule string) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, FieldError{Field: field, Message: field + " must be a finite number"})
			return
		}
		if !ok {
			errs = append(errs, FieldError{Field: field, Message: field + " must be " + rule})
		}
	}
	check("voltage", in.Voltage, in.Voltage >= 0, "non-negative")
	check("frequency", in.Frequency, in.Frequency > 0, "positive")
	check("resistance", in.Resistance, in.Resistance >= 0, "non-negative")
	check("inductance", in.Inductance, in.Inductance >= 0, "non-negative")
	check("capacitance", in.Capacitance, in.Capacitance >= 0, "non-negative")
	return errs
}

// SolveACCircuit validates in and computes its reactances, impedance, phase,
// current and power figures. Invalid input is returned as ValidationErrors.
func SolveACCircuit(in ACInput) (ACResult, error) {
	if errs := ValidateACInput(in); errs != nil {
		return ACResult{}, errs
	}

	omega := 2 * math.Pi * in.Frequency
	var r ACResult
	r.InductiveReactance = omega * in.Inductance
	if in.Capacitance > 0 {
		r.CapacitiveReactance = 1 / (omega * in.Capacitance)
	}
	r.Reactance = r.InductiveReactance - r.CapacitiveReactance
	r.Impedance = math.Hypot(in.Resistance, r.Reactance)
	if r.Impedance == 0 {
		return ACResult{}, fmt.Errorf("%w: resistance and net reactance are both 0", ErrZeroImpedance)
	}

	r.PhaseAngle = math.Atan2(r.Reactance, in.Resistance)
	r.PhaseAngleDegrees = r.PhaseAngle * 180 / math.Pi
	r.Current = in.Voltage / r.Impedance
	r.PowerFactor = math.Cos(r.PhaseAngle)
	r.ApparentPower = in.Voltage * r.Current
	r.RealPower = r.ApparentPower * r.PowerFactor
	r.ReactivePower = r.ApparentPower * math.Sin(r.PhaseAngle)
	return r, nil
}
