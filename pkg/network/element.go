package network

import (
	"errors"
	"fmt"
	"math"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
)

// ErrInvalidElement is wrapped by every element validation failure.
var ErrInvalidElement = errors.New("network: invalid element")

// Kind is the type of a schematic element.
type Kind uint8

const (
	KindBattery Kind = iota
	KindResistor
	KindWire
	KindSwitch
	KindGround
	KindLamp
)

var kindNames = map[Kind]string{
	KindBattery:  "battery",
	KindResistor: "resistor",
	KindWire:     "wire",
	KindSwitch:   "switch",
	KindGround:   "ground",
	KindLamp:     "lamp",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind converts a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("network: unknown element kind %q", s)
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Element is a two-terminal schematic part placed by its terminal positions.
// For a battery A is the positive terminal. A ground uses A only.
//
// Value is the EMF in volts for a battery and the resistance in ohms for a
// resistor or lamp. Closed applies to switches.
type Element struct {
	ID     string         `json:"id" yaml:"id"`
	Kind   Kind           `json:"kind" yaml:"kind"`
	A      geometry.Point `json:"a" yaml:"a"`
	B      geometry.Point `json:"b" yaml:"b"`
	Value  float64        `json:"value,omitempty" yaml:"value,omitempty"`
	Closed bool           `json:"closed,omitempty" yaml:"closed,omitempty"`
}

func (e Element) terminals() int {
	if e.Kind == KindGround {
		return 1
	}
	return 2
}

// conducts reports whether the element is an ideal zero-resistance path.
func (e Element) conducts() bool {
	return e.Kind == KindWire || (e.Kind == KindSwitch && e.Closed)
}

func (e Element) resistive() bool {
	return e.Kind == KindResistor || e.Kind == KindLamp
}

// Validate checks the element's value against its kind.
func (e Element) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidElement)
	}
	if _, ok := kindNames[e.Kind]; !ok {
		return fmt.Errorf("%w: %s: unknown kind %d", ErrInvalidElement, e.ID, e.Kind)
	}
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
		return fmt.Errorf("%w: %s: value is not finite", ErrInvalidElement, e.ID)
	}
	if e.resistive() && e.Value <= 0 {
		return fmt.Errorf("%w: %s: %s needs a positive resistance, got %v", ErrInvalidElement, e.ID, e.Kind, e.Value)
	}
	if e.terminals() == 2 && e.A.Equal(e.B) && e.Kind != KindWire {
		return fmt.Errorf("%w: %s: terminals coincide", ErrInvalidElement, e.ID)
	}
	return nil
}
