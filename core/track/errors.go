package track

import (
	"errors"
	"fmt"
)

var (
	// ErrTrackNotFound is returned when a model track is missing or malformed.
	ErrTrackNotFound = errors.New("track not found")
	// ErrExtrapolation is returned when a track does not cover the requested ages.
	ErrExtrapolation = errors.New("extrapolation outside track")
)

// TrackNotFoundError carries the locator of the unusable track and the reason.
type TrackNotFoundError struct {
	Locator string
	Line    int
	Reason  string
	Err     error
}

func (e *TrackNotFoundError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrTrackNotFound, e.Locator)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s:%d", msg, e.Line)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TrackNotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTrackNotFound}
	}
	return []error{ErrTrackNotFound, e.Err}
}

// ExtrapolationError reports an evaluation point outside the covered range.
type ExtrapolationError struct {
	Locator string
	At      float64
	Min     float64
	Max     float64
}

func (e *ExtrapolationError) Error() string {
	where := ""
	if e.Locator != "" {
		where = " in " + e.Locator
	}
	return fmt.Sprintf("%s%s: %g not within [%g, %g]", ErrExtrapolation, where, e.At, e.Min, e.Max)
}

func (e *ExtrapolationError) Unwrap() error { return ErrExtrapolation }
