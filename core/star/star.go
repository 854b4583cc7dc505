// Package star models a single component of a binary system.
package star

import (
	"context"
	"errors"
	"fmt"
	"math"
)

const (
	solarMassGrams    = 1.989e33
	solarRadiusCentim = 6.956e10
)

var (
	// ErrMissingField is returned when a required parameter was not supplied.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidField is returned when a parameter is outside its physical range.
	ErrInvalidField = errors.New("invalid field")
)

// MissingFieldError names the required parameter that was absent.
type MissingFieldError struct {
	Object string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrMissingField, e.Object, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// InvalidFieldError reports a supplied parameter with an unusable value.
type InvalidFieldError struct {
	Object string
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("%s: %s %s = %g: %s", ErrInvalidField, e.Object, e.Field, e.Value, e.Reason)
}

func (e *InvalidFieldError) Unwrap() error { return ErrInvalidField }

// Float returns a pointer to v, for filling optional parameters.
func Float(v float64) *float64 { return &v }

// Params are the observed properties of a star. Nil means not supplied.
type Params struct {
	Mass            *float64 // Msun
	Radius          *float64 // Rsun
	Metallicity     *float64 // [Fe/H], dex
	AngularVelocity *float64 // optional
}

// Star is a validated single star and, once synthesized, its k2 track.
type Star struct {
	Mass            float64
	Radius          float64
	Metallicity     float64
	AngularVelocity *float64
	// AverageDensity is mass over cubed radius in g cm^-3, without the 4π/3
	// volume factor.
	AverageDensity float64

	track []float64
}

// New validates p and returns the star it describes.
func New(p Params) (*Star, error) {
	switch {
	case p.Mass == nil:
		return nil, &MissingFieldError{Object: "star", Field: "mass"}
	case p.Radius == nil:
		return nil, &MissingFieldError{Object: "star", Field: "radius"}
	case p.Metallicity == nil:
		return nil, &MissingFieldError{Object: "star", Field: "metallicity"}
	}
	if err := positive("mass", *p.Mass); err != nil {
		return nil, err
	}
	if err := positive("radius", *p.Radius); err != nil {
		return nil, err
	}
	if math.IsNaN(*p.Metallicity) || math.IsInf(*p.Metallicity, 0) {
		return nil, &InvalidFieldError{Object: "star", Field: "metallicity", Value: *p.Metallicity, Reason: "must be finite"}
	}

	s := &Star{
		Mass:        *p.Mass,
		Radius:      *p.Radius,
		Metallicity: *p.Metallicity,
	}
	if p.AngularVelocity != nil {
		w := *p.AngularVelocity
		s.AngularVelocity = &w
	}
	s.AverageDensity = s.Mass * solarMassGrams / math.Pow(s.Radius*solarRadiusCentim, 3)
	return s, nil
}

func positive(field string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return &InvalidFieldError{Object: "star", Field: field, Value: v, Reason: "must be positive and finite"}
	}
	return nil
}

// Interpolator synthesizes a k2 track for a (mass, metallicity) point.
type Interpolator interface {
	Interpolate(ctx context.Context, mass, metallicity float64) ([]float64, error)
}

// SynthesizeTrack interpolates the model grid at the star's mass and
// metallicity and keeps the result on the star.
func (s *Star) SynthesizeTrack(ctx context.Context, in Interpolator) ([]float64, error) {
	if in == nil {
		return nil, &MissingFieldError{Object: "star", Field: "model grid"}
	}
	t, err := in.Interpolate(ctx, s.Mass, s.Metallicity)
	if err != nil {
		return nil, fmt.Errorf("synthesize track for M=%g [Fe/H]=%g: %w", s.Mass, s.Metallicity, err)
	}
	s.track = t
	return t, nil
}

// Track returns the synthesized track, or nil before SynthesizeTrack.
func (s *Star) Track() []float64 { return s.track }
