package sexpr

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// SyntaxError reports malformed input at a 1-based line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Decoder reads top-level forms one at a time. Lists are built on an explicit
// stack so nesting depth is bounded only by memory. Comments run from # to
// the end of the line.
type Decoder struct {
	r    *bufio.Reader
	line int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r), line: 1}
}

// Decode returns the next top-level form, or io.EOF when the input is
// exhausted.
func (d *Decoder) Decode() (Sexp, error) {
	var open []*List
	for {
		ch, err := d.skipSpace()
		if err == io.EOF {
			if len(open) > 0 {
				return nil, &SyntaxError{Line: open[len(open)-1].line, Msg: "list is never closed"}
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}

		var done Sexp
		switch ch {
		case '(':
			open = append(open, &List{line: d.line})
			continue
		case ')':
			if len(open) == 0 {
				return nil, &SyntaxError{Line: d.line, Msg: "unexpected ')'"}
			}
			done = open[len(open)-1]
			open = open[:len(open)-1]
		case '"':
			s, err := d.quoted()
			if err != nil {
				return nil, err
			}
			done = Symbol(s)
		default:
			d.r.UnreadRune()
			done = Symbol(d.bare())
		}

		if len(open) == 0 {
			return done, nil
		}
		parent := open[len(open)-1]
		parent.elements = append(parent.elements, done)
	}
}

// skipSpace consumes whitespace and comments and returns the next rune.
func (d *Decoder) skipSpace() (rune, error) {
	for {
		ch, _, err := d.r.ReadRune()
		if err != nil {
			return 0, err
		}
		switch {
		case ch == '\n':
			d.line++
		case unicode.IsSpace(ch):
		case ch == '#':
			if _, err := d.r.ReadString('\n'); err != nil {
				return 0, err
			}
			d.line++
		default:
			return ch, nil
		}
	}
}

func (d *Decoder) quoted() (string, error) {
	start := d.line
	var sb strings.Builder
	for {
		ch, _, err := d.r.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", &SyntaxError{Line: start, Msg: "string is never closed"}
			}
			return "", err
		}
		switch ch {
		case '"':
			return sb.String(), nil
		case '\n':
			d.line++
		case '\\':
			esc, _, err := d.r.ReadRune()
			if err != nil {
				return "", &SyntaxError{Line: start, Msg: "string is never closed"}
			}
			switch esc {
			case 'n':
				ch = '\n'
			case 't':
				ch = '\t'
			case 'r':
				ch = '\r'
			default:
				ch = esc
			}
		}
		sb.WriteRune(ch)
	}
}

// bare reads an unquoted atom. The first rune is known not to be a delimiter.
func (d *Decoder) bare() string {
	var sb strings.Builder
	for {
		ch, _, err := d.r.ReadRune()
		if err != nil {
			return sb.String()
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' || ch == '#' {
			d.r.UnreadRune()
			return sb.String()
		}
		sb.WriteRune(ch)
	}
}

// Parse reads every top-level form from r.
func Parse(r io.Reader) ([]Sexp, error) {
	dec := NewDecoder(r)
	var forms []Sexp
	for {
		s, err := dec.Decode()
		if err == io.EOF {
			return forms, nil
		}
		if err != nil {
			return nil, err
		}
		forms = append(forms, s)
	}
}

// ParseString reads every top-level form from s.
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}
