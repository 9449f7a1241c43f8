package schematic

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenises the line-oriented schematic description language.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s]+`},

	// Element kinds
	{Name: "KwBattery", Pattern: `(?i)\bbattery\b`},
	{Name: "KwResistor", Pattern: `(?i)\bresistor\b`},
	{Name: "KwWire", Pattern: `(?i)\bwire\b`},
	{Name: "KwSwitch", Pattern: `(?i)\bswitch\b`},
	{Name: "KwGround", Pattern: `(?i)\bground\b`},
	{Name: "KwLamp", Pattern: `(?i)\blamp\b`},

	// Switch states
	{Name: "KwOpen", Pattern: `(?i)\bopen\b`},
	{Name: "KwClosed", Pattern: `(?i)\bclosed\b`},

	{Name: "Arrow", Pattern: `->`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Comma", Pattern: `,`},

	{Name: "Number", Pattern: `[-+]?[0-9]+(\.[0-9]+)?([eE][-+]?[0-9]+)?`},

	// Identifiers, also used for SI prefixes and unit suffixes after a value
	{Name: "Ident", Pattern: `[a-zA-Z_µΩ][a-zA-Z0-9_µΩ]*`},
})
