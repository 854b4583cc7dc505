package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownGridPoint is returned when a value is not one of an axis' tabulated values.
	ErrUnknownGridPoint = errors.New("unknown grid point")
	// ErrOutOfGridRange is returned when a target lies outside an axis' [min, max].
	ErrOutOfGridRange = errors.New("outside model grid")
	// ErrInvalidAxis is returned when axis values are unordered or unpaired.
	ErrInvalidAxis = errors.New("invalid grid axis")
)

// UnknownGridPointError names the axis and the value that has no tabulated track.
type UnknownGridPointError struct {
	Axis  string
	Value float64
}

func (e *UnknownGridPointError) Error() string {
	return fmt.Sprintf("%s: %s %g is not a tabulated value", ErrUnknownGridPoint, e.Axis, e.Value)
}

func (e *UnknownGridPointError) Unwrap() error { return ErrUnknownGridPoint }

// OutOfGridRangeError reports a target outside the tabulated domain of an axis.
type OutOfGridRangeError struct {
	Axis  string
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfGridRangeError) Error() string {
	return fmt.Sprintf("%s: %s %g, must have %g <= %s <= %g", ErrOutOfGridRange, e.Axis, e.Value, e.Min, e.Axis, e.Max)
}

func (e *OutOfGridRangeError) Unwrap() error { return ErrOutOfGridRange }
