// Package sexpr is a small streaming S-expression reader and writer used by
// the circuit document format.
package sexpr

import (
	"fmt"
	"strings"
)

// Sexp is an S-expression node: either an atom or a list.
type Sexp interface {
	// IsLeaf returns true if this is an atom (not a list)
	IsLeaf() bool

	// String returns the string representation
	String() string
}

// Symbol is an atom. Quoted strings and bare words both decode to Symbol.
type Symbol string

func (s Symbol) IsLeaf() bool { return true }

func (s Symbol) String() string {
	if needsQuote(string(s)) {
		return quote(string(s))
	}
	return string(s)
}

// List is a parenthesised sequence. Lists read by a Decoder remember the
// line their opening parenthesis was on; lists built in code have line 0.
type List struct {
	elements []Sexp
	line     int
}

// Line returns the source line of the list, or 0 if it was not decoded.
func (l *List) Line() int { return l.line }

// Errorf formats an error prefixed with the list's source line when known.
func (l *List) Errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	if l.line == 0 {
		return err
	}
	return fmt.Errorf("line %d: %w", l.line, err)
}

// NewList returns a list of the given elements.
func NewList(elements ...Sexp) *List {
	return &List{elements: elements}
}

// L builds a list headed by the symbol key.
func L(key string, rest ...Sexp) *List {
	return &List{elements: append([]Sexp{Symbol(key)}, rest...)}
}

func (l *List) IsLeaf() bool { return false }

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(elem.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Append adds elements to the end of the list.
func (l *List) Append(elements ...Sexp) {
	l.elements = append(l.elements, elements...)
}

// Get returns the element at the given index, or nil.
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len returns the number of elements in the list.
func (l *List) Len() int {
	return len(l.elements)
}

// Key returns the leading symbol of the list, or "".
func (l *List) Key() string {
	if len(l.elements) == 0 {
		return ""
	}
	if sym, ok := l.elements[0].(Symbol); ok {
		return string(sym)
	}
	return ""
}

// Items returns the elements after the key.
func (l *List) Items() []Sexp {
	if len(l.elements) <= 1 {
		return nil
	}
	return l.elements[1:]
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsAny(s, " \t\r\n()\"#\\")
}

func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
