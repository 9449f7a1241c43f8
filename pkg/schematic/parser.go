package schematic

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/network"
)

// Parser parses schematic descriptions.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser creates a new schematic parser instance.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(Lexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("schematic: failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse parses a description from a reader.
func (p *Parser) Parse(r io.Reader) (*File, error) {
	f, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("schematic: parse error: %w", err)
	}
	return f, nil
}

// ParseString parses a description from a string.
func (p *Parser) ParseString(input string) (*File, error) {
	f, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("schematic: parse error: %w", err)
	}
	return f, nil
}

// ParseFile parses a description from a file path.
func (p *Parser) ParseFile(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("schematic: failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}

// LoadElements parses filename and converts it to network elements.
func LoadElements(filename string) ([]network.Element, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	f, err := p.ParseFile(filename)
	if err != nil {
		return nil, err
	}
	return f.Elements()
}
