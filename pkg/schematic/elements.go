package schematic

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/network"
)

// ErrInvalidStatement is wrapped by every statement conversion failure.
var ErrInvalidStatement = errors.New("schematic: invalid statement")

var siScale = map[string]float64{
	"":  1,
	"p": 1e-12,
	"n": 1e-9,
	"u": 1e-6,
	"µ": 1e-6,
	"m": 1e-3,
	"k": 1e3,
	"K": 1e3,
	"M": 1e6,
	"G": 1e9,
}

// Units are matched longest first.
var units = []string{"ohms", "ohm", "Ω", "V", "A", "W"}

// Float returns the value with its SI prefix applied. A trailing unit is
// accepted and ignored.
func (v *Value) Float() (float64, error) {
	rest := v.Suffix
	for _, u := range units {
		if strings.HasSuffix(rest, u) {
			rest = strings.TrimSuffix(rest, u)
			break
		}
	}
	scale, ok := siScale[rest]
	if !ok {
		return 0, fmt.Errorf("unknown suffix %q", v.Suffix)
	}
	return v.Number * scale, nil
}

func (c *Coord) point() geometry.Point {
	return geometry.Pt(c.X, c.Y)
}

// Element converts the statement to a network element.
func (s *Statement) Element() (network.Element, error) {
	fail := func(format string, args ...any) (network.Element, error) {
		return network.Element{}, fmt.Errorf("%w: %s: %s", ErrInvalidStatement, s.Pos, fmt.Sprintf(format, args...))
	}

	kind, err := network.ParseKind(strings.ToLower(s.Kind))
	if err != nil {
		return fail("%v", err)
	}
	e := network.Element{ID: s.ID, Kind: kind, A: s.From.point()}

	if s.State != "" {
		if kind != network.KindSwitch {
			return fail("%s %s cannot be %s", kind, s.ID, strings.ToLower(s.State))
		}
		e.Closed = strings.EqualFold(s.State, "closed")
	}

	switch kind {
	case network.KindBattery, network.KindResistor, network.KindLamp:
		if s.Value == nil {
			return fail("%s %s needs a value", kind, s.ID)
		}
		v, err := s.Value.Float()
		if err != nil {
			return fail("%s: %v", s.ID, err)
		}
		if math.IsInf(v, 0) {
			return fail("%s: value out of range", s.ID)
		}
		e.Value = v
	default:
		if s.Value != nil {
			return fail("%s %s takes no value", kind, s.ID)
		}
	}

	if kind == network.KindGround {
		if s.To != nil {
			return fail("ground %s has a single terminal", s.ID)
		}
		return e, nil
	}
	if s.To == nil {
		return fail("%s %s needs two terminals", kind, s.ID)
	}
	e.B = s.To.point()
	return e, nil
}

// Elements converts every statement in order.
func (f *File) Elements() ([]network.Element, error) {
	out := make([]network.Element, 0, len(f.Statements))
	for _, s := range f.Statements {
		e, err := s.Element()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
