package grid

import (
	"fmt"
	"sort"
)

// Axis is an ordered set of tabulated values, each paired with the identifier
// used to build resource locators.
type Axis struct {
	name   string
	values []float64
	ids    []string
}

// NewAxis validates and copies the given values and identifiers.
func NewAxis(name string, values []float64, ids []string) (Axis, error) {
	if len(values) == 0 {
		return Axis{}, fmt.Errorf("%w: %s axis is empty", ErrInvalidAxis, name)
	}
	if len(values) != len(ids) {
		return Axis{}, fmt.Errorf("%w: %s axis has %d values but %d identifiers", ErrInvalidAxis, name, len(values), len(ids))
	}
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return Axis{}, fmt.Errorf("%w: %s axis not strictly increasing at index %d (%g after %g)",
				ErrInvalidAxis, name, i, values[i], values[i-1])
		}
	}

	a := Axis{
		name:   name,
		values: make([]float64, len(values)),
		ids:    make([]string, len(ids)),
	}
	copy(a.values, values)
	copy(a.ids, ids)
	return a, nil
}

func mustAxis(name string, values []float64, ids []string) Axis {
	a, err := NewAxis(name, values, ids)
	if err != nil {
		panic(err)
	}
	return a
}

// Name returns the axis label used in error messages.
func (a Axis) Name() string { return a.name }

// Len returns the number of tabulated values.
func (a Axis) Len() int { return len(a.values) }

// Value returns the i-th tabulated value.
func (a Axis) Value(i int) float64 { return a.values[i] }

// ID returns the identifier of the i-th tabulated value.
func (a Axis) ID(i int) string { return a.ids[i] }

// Values returns a copy of the tabulated values.
func (a Axis) Values() []float64 {
	out := make([]float64, len(a.values))
	copy(out, a.values)
	return out
}

// Min returns the smallest tabulated value.
func (a Axis) Min() float64 { return a.values[0] }

// Max returns the largest tabulated value.
func (a Axis) Max() float64 { return a.values[len(a.values)-1] }

// Index returns the position of v on the axis. Only exact matches count.
func (a Axis) Index(v float64) (int, error) {
	i := sort.SearchFloat64s(a.values, v)
	if i < len(a.values) && a.values[i] == v {
		return i, nil
	}
	return -1, &UnknownGridPointError{Axis: a.name, Value: v}
}

// Bracket is a pair of adjacent axis indices around a target and the
// fractional position of the target between them.
type Bracket struct {
	Lo, Hi int
	T      float64
}

// Degenerate reports whether the target sits exactly on one of the two
// bracket values, in which case only that grid value is needed.
func (b Bracket) Degenerate() bool { return b.T == 0 || b.T == 1 }

// Bracket locates target with a left-biased search. The lower index is the
// largest value <= target and the upper index the next distinct value. A
// target equal to the last value clamps to the final pair with T = 1.
func (a Axis) Bracket(target float64) (Bracket, error) {
	n := len(a.values)
	if target < a.Min() || target > a.Max() || target != target {
		return Bracket{}, &OutOfGridRangeError{Axis: a.name, Value: target, Min: a.Min(), Max: a.Max()}
	}
	if n == 1 {
		return Bracket{Lo: 0, Hi: 0, T: 0}, nil
	}

	i := sort.SearchFloat64s(a.values, target)
	switch {
	case a.values[i] == target && i == n-1:
		return Bracket{Lo: n - 2, Hi: n - 1, T: 1}, nil
	case a.values[i] == target:
		return Bracket{Lo: i, Hi: i + 1, T: 0}, nil
	}

	lo, hi := i-1, i
	t := (target - a.values[lo]) / (a.values[hi] - a.values[lo])
	return Bracket{Lo: lo, Hi: hi, T: t}, nil
}
