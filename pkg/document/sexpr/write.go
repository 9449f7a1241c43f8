package sexpr

import (
	"bufio"
	"io"
	"strings"
)

// Write prints s to w. Lists whose children are all atoms or flat lists stay
// on one line; anything deeper is broken one child per line and indented.
func Write(w io.Writer, s Sexp) error {
	bw := bufio.NewWriter(w)
	writeIndented(bw, s, 0)
	bw.WriteByte('\n')
	return bw.Flush()
}

func writeIndented(w *bufio.Writer, s Sexp, depth int) {
	l, ok := s.(*List)
	if !ok || flat(l) {
		w.WriteString(s.String())
		return
	}

	w.WriteByte('(')
	for i, elem := range l.elements {
		if i == 0 {
			writeIndented(w, elem, depth+1)
			continue
		}
		if _, isList := elem.(*List); isList {
			w.WriteByte('\n')
			w.WriteString(strings.Repeat("  ", depth+1))
		} else {
			w.WriteByte(' ')
		}
		writeIndented(w, elem, depth+1)
	}
	w.WriteByte('\n')
	w.WriteString(strings.Repeat("  ", depth))
	w.WriteByte(')')
}

// flat reports whether l nests at most one level of lists with only atoms
// inside.
func flat(l *List) bool {
	for _, elem := range l.elements {
		sub, ok := elem.(*List)
		if !ok {
			continue
		}
		for _, inner := range sub.elements {
			if !inner.IsLeaf() {
				return false
			}
		}
	}
	return true
}
