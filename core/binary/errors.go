package binary

import (
	"errors"
	"fmt"
)

var (
	// ErrInconsistentMetallicity is returned when the two stars are on different grids.
	ErrInconsistentMetallicity = errors.New("inconsistent metallicity")
	// ErrMismatchedTrackLength is returned when tracks do not share an age grid.
	ErrMismatchedTrackLength = errors.New("mismatched track length")
	// ErrNonMonotonicTrack is returned when a track cannot be inverted.
	ErrNonMonotonicTrack = errors.New("non-monotonic track")
)

// InconsistentMetallicityError carries both component metallicities.
type InconsistentMetallicityError struct {
	Primary   float64
	Secondary float64
}

func (e *InconsistentMetallicityError) Error() string {
	return fmt.Sprintf("%s: primary [Fe/H] = %g, secondary [Fe/H] = %g", ErrInconsistentMetallicity, e.Primary, e.Secondary)
}

func (e *InconsistentMetallicityError) Unwrap() error { return ErrInconsistentMetallicity }

// MismatchedTrackLengthError reports the lengths of two sequences that must agree.
type MismatchedTrackLengthError struct {
	What  string
	Left  int
	Right int
}

func (e *MismatchedTrackLengthError) Error() string {
	return fmt.Sprintf("%s: %s have %d and %d points", ErrMismatchedTrackLength, e.What, e.Left, e.Right)
}

func (e *MismatchedTrackLengthError) Unwrap() error { return ErrMismatchedTrackLength }

// NonMonotonicTrackError reports the first index where the track turns over.
type NonMonotonicTrackError struct {
	Index int
	Prev  float64
	Value float64
}

func (e *NonMonotonicTrackError) Error() string {
	return fmt.Sprintf("%s: k2 %.8g at index %d after %.8g at index %d", ErrNonMonotonicTrack, e.Value, e.Index, e.Prev, e.Index-1)
}

func (e *NonMonotonicTrackError) Unwrap() error { return ErrNonMonotonicTrack }
