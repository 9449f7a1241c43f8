package schematic

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// File is a parsed schematic description.
type File struct {
	Statements []*Statement `parser:"@@*"`
}

// Statement places one element.
// Example: battery B1 9V (0,0) -> (0,100)
type Statement struct {
	Pos lexer.Position

	Kind  string `parser:"@( KwBattery | KwResistor | KwWire | KwSwitch | KwGround | KwLamp )"`
	ID    string `parser:"@Ident"`
	State string `parser:"@( KwOpen | KwClosed )?"`
	Value *Value `parser:"@@?"`
	From  *Coord `parser:"@@"`
	To    *Coord `parser:"( Arrow @@ )?"`
}

// Value is a number with an optional SI prefix and unit, such as 4.7k or 9V.
type Value struct {
	Number float64 `parser:"@Number"`
	Suffix string  `parser:"@Ident?"`
}

// Coord is a parenthesised point.
type Coord struct {
	X float64 `parser:"LParen @Number"`
	Y float64 `parser:"Comma @Number RParen"`
}
