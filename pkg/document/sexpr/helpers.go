package sexpr

import (
	"strconv"
)

// FindNode returns the first child list of s whose key is key.
// Example: FindNode(node, "at") finds (at 100 50).
func FindNode(s Sexp, key string) (*List, bool) {
	l, ok := s.(*List)
	if !ok {
		return nil, false
	}
	for _, item := range l.elements {
		if sub, ok := item.(*List); ok && sub.Key() == key {
			return sub, true
		}
	}
	return nil, false
}

// FindAllNodes returns every child list of s whose key is key.
func FindAllNodes(s Sexp, key string) []*List {
	l, ok := s.(*List)
	if !ok {
		return nil
	}
	var results []*List
	for _, item := range l.elements {
		if sub, ok := item.(*List); ok && sub.Key() == key {
			results = append(results, sub)
		}
	}
	return results
}

// GetString returns the atom at index.
func GetString(l *List, index int) (string, error) {
	item := l.Get(index)
	if item == nil {
		return "", l.Errorf("(%s): missing element %d", l.Key(), index)
	}
	sym, ok := item.(Symbol)
	if !ok {
		return "", l.Errorf("(%s): element %d is a list", l.Key(), index)
	}
	return string(sym), nil
}

// GetFloat parses the atom at index as a float.
func GetFloat(l *List, index int) (float64, error) {
	s, err := GetString(l, index)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, l.Errorf("(%s): element %d: %w", l.Key(), index, err)
	}
	return v, nil
}

// GetInt parses the atom at index as an integer.
func GetInt(l *List, index int) (int, error) {
	s, err := GetString(l, index)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, l.Errorf("(%s): element %d: %w", l.Key(), index, err)
	}
	return v, nil
}

// GetStrings returns every atom after the key.
func GetStrings(l *List) ([]string, error) {
	out := make([]string, 0, l.Len())
	for i := 1; i < l.Len(); i++ {
		s, err := GetString(l, i)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Float formats v as the shortest atom that parses back to v.
func Float(v float64) Symbol {
	return Symbol(strconv.FormatFloat(v, 'g', -1, 64))
}

// Int formats v as an atom.
func Int(v int) Symbol {
	return Symbol(strconv.Itoa(v))
}
