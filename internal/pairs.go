package internal

import (
	"strings"
)

// Pair is a single key/value constraint.
type Pair struct {
	Key   string
	Value string
}

// Pairs is an insertion ordered list of key/value constraints with
// unique keys.
type Pairs []Pair

// Index returns the position of key in p, or -1. Keys are compared
// case-insensitively when fold is true.
func (p Pairs) Index(key string, fold bool) int {
	for i, kv := range p {
		if Equal(kv.Key, key, fold) {
			return i
		}
	}
	return -1
}

// Map returns p as a map, mostly for diagnostics.
func (p Pairs) Map() map[string]string {
	if len(p) == 0 {
		return nil
	}
	m := make(map[string]string, len(p))
	for _, kv := range p {
		m[kv.Key] = kv.Value
	}
	return m
}

func (p Pairs) String() string {
	var sb strings.Builder
	for i, kv := range p {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(kv.Key)
		sb.WriteByte('=')
		sb.WriteString(kv.Value)
	}
	return sb.String()
}

// Equal compares a and b, case-insensitively when fold is true.
func Equal(a, b string, fold bool) bool {
	if fold {
		return strings.EqualFold(a, b)
	}
	return a == b
}
