// Package estimate runs the whole age estimate for one eclipsing binary:
// it synthesizes both component tracks, weights them into the system's
// apsidal motion constant and, when an observed value is given, inverts the
// result to an age.
package estimate

import (
	"context"
	"fmt"
	"time"

	"k2age/core/binary"
	"k2age/core/grid"
	"k2age/core/star"

	"go.uber.org/zap"
)

// Request holds the observed properties of a binary. Nil means not supplied.
type Request struct {
	PrimaryMass     *float64 `json:"primaryMass"`
	SecondaryMass   *float64 `json:"secondaryMass"`
	PrimaryRadius   *float64 `json:"primaryRadius"`
	SecondaryRadius *float64 `json:"secondaryRadius"`
	Metallicity     *float64 `json:"metallicity"`
	Eccentricity    *float64 `json:"eccentricity"`
	SemiMajorAxis   *float64 `json:"semiMajorAxis"`

	PrimaryOmega   *float64 `json:"primaryOmega,omitempty"`
	SecondaryOmega *float64 `json:"secondaryOmega,omitempty"`
	OrbitOmega     *float64 `json:"orbitOmega,omitempty"`

	// ObservedK2 is the measured log10 k2 of the system.
	ObservedK2 *float64 `json:"observedK2,omitempty"`
}

// Result is the outcome of Run.
type Result struct {
	Ages           []float64          `json:"ages"`
	Track          []float64          `json:"track"`
	PrimaryTrack   []float64          `json:"primaryTrack"`
	SecondaryTrack []float64          `json:"secondaryTrack"`
	C21            binary.Coefficient `json:"c21"`
	C22            binary.Coefficient `json:"c22"`
	// Age is set when the request carried an observed k2.
	Age     *float64      `json:"age,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// Interpolator is the track synthesis the estimator needs.
type Interpolator interface {
	star.Interpolator
	Catalog() grid.Catalog
}

// Estimator runs requests against one model grid.
type Estimator struct {
	interp Interpolator
	logger *zap.Logger
}

// New returns an Estimator. A nil logger discards output.
func New(interp Interpolator, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{interp: interp, logger: logger}
}

// Catalog returns the model grid the estimator interpolates.
func (e *Estimator) Catalog() grid.Catalog { return e.interp.Catalog() }

// Run validates req and computes the binary track.
func (e *Estimator) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	primary, err := star.New(star.Params{
		Mass:            req.PrimaryMass,
		Radius:          req.PrimaryRadius,
		Metallicity:     req.Metallicity,
		AngularVelocity: req.PrimaryOmega,
	})
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}
	secondary, err := star.New(star.Params{
		Mass:            req.SecondaryMass,
		Radius:          req.SecondaryRadius,
		Metallicity:     req.Metallicity,
		AngularVelocity: req.SecondaryOmega,
	})
	if err != nil {
		return nil, fmt.Errorf("secondary: %w", err)
	}

	sys, err := binary.New(primary, secondary, binary.Orbit{
		Eccentricity:    req.Eccentricity,
		SemiMajorAxis:   req.SemiMajorAxis,
		AngularVelocity: req.OrbitOmega,
	})
	if err != nil {
		return nil, err
	}

	pt, err := primary.SynthesizeTrack(ctx, e.interp)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}
	st, err := secondary.SynthesizeTrack(ctx, e.interp)
	if err != nil {
		return nil, fmt.Errorf("secondary: %w", err)
	}
	combined, err := sys.ConvolveTracks(pt, st)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Ages:           e.interp.Catalog().Ages(),
		Track:          combined,
		PrimaryTrack:   pt,
		SecondaryTrack: st,
		C21:            sys.C21,
		C22:            sys.C22,
	}
	if req.ObservedK2 != nil {
		age, err := binary.AgeFromObservedValue(combined, res.Ages, *req.ObservedK2)
		if err != nil {
			return nil, fmt.Errorf("age for k2=%g: %w", *req.ObservedK2, err)
		}
		res.Age = &age
	}
	res.Elapsed = time.Since(start)

	fields := []zap.Field{
		zap.Float64("c21", sys.C21.Value),
		zap.Float64("c22", sys.C22.Value),
		zap.String("rotation1", string(sys.C21.Rotation)),
		zap.String("rotation2", string(sys.C22.Rotation)),
		zap.Duration("elapsed", res.Elapsed),
	}
	if res.Age != nil {
		fields = append(fields, zap.Float64("age", *res.Age))
	}
	e.logger.Info("binary track computed", fields...)
	return res, nil
}
