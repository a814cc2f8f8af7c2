package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Tuple is a dotted numeric version split into its components. Tuples are
// ordered component by component, so 1.10.0 sorts after 1.9.9.
type Tuple []int

// ParseTuple parses a dotted numeric version such as "120.0.6099.109".
// A leading "v" is ignored.
func ParseTuple(s string) (Tuple, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if s == "" {
		return nil, fmt.Errorf("parse version: empty string")
	}

	parts := strings.Split(s, ".")
	t := make(Tuple, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("parse version %q: invalid component %q", s, p)
		}
		t = append(t, n)
	}
	return t, nil
}

// Compare returns -1, 0 or 1. Missing trailing components compare as
// smaller, so 1.2 < 1.2.0.
func (t Tuple) Compare(other Tuple) int {
	for i := 0; i < len(t) && i < len(other); i++ {
		switch {
		case t[i] < other[i]:
			return -1
		case t[i] > other[i]:
			return 1
		}
	}
	switch {
	case len(t) < len(other):
		return -1
	case len(t) > len(other):
		return 1
	}
	return 0
}

// Major returns the leading component, or 0 for an empty tuple.
func (t Tuple) Major() int {
	if len(t) == 0 {
		return 0
	}
	return t[0]
}

// String joins the components with dots.
func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, n := range t {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// Max returns the greatest tuple, or nil when tuples is empty.
func Max(tuples []Tuple) Tuple {
	var best Tuple
	for _, t := range tuples {
		if best == nil || t.Compare(best) > 0 {
			best = t
		}
	}
	return best
}

// MajorOf returns the leading numeric component of a version string.
func MajorOf(s string) (int, error) {
	t, err := ParseTuple(s)
	if err != nil {
		return 0, err
	}
	return t.Major(), nil
}
