package track

import (
	"context"
	"slices"

	"k2age/core/grid"

	"go.uber.org/zap"
)

// RawLoader reads the raw track stored at a locator.
type RawLoader interface {
	Load(ctx context.Context, locator string) (*RawTrack, error)
}

// Cache stores resampled grid-point tracks keyed by locator. Implementations
// report a miss as (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, locator string) ([]float64, bool, error)
	Set(ctx context.Context, locator string, values []float64) error
}

// Interpolator synthesizes k2 tracks at arbitrary (mass, metallicity) points
// inside a Catalog.
type Interpolator struct {
	catalog grid.Catalog
	loader  RawLoader
	cache   Cache
	logger  *zap.Logger
}

// Option configures an Interpolator.
type Option func(*Interpolator)

// WithCache makes the interpolator reuse resampled grid-point tracks.
func WithCache(c Cache) Option {
	return func(i *Interpolator) { i.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(i *Interpolator) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewInterpolator returns an Interpolator over catalog reading tracks through loader.
func NewInterpolator(catalog grid.Catalog, loader RawLoader, opts ...Option) *Interpolator {
	i := &Interpolator{catalog: catalog, loader: loader, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Catalog returns the grid the interpolator works on.
func (in *Interpolator) Catalog() grid.Catalog { return in.catalog }

// Interpolate returns the k2 track on the catalog age grid for the given
// mass (Msun) and metallicity ([Fe/H]), interpolating first in mass at the
// two bracketing metallicities and then in metallicity.
func (in *Interpolator) Interpolate(ctx context.Context, mass, metallicity float64) ([]float64, error) {
	massAxis := in.catalog.MassAxis()
	fehAxis := in.catalog.MetallicityAxis()

	mb, err := massAxis.Bracket(mass)
	if err != nil {
		return nil, err
	}
	fb, err := fehAxis.Bracket(metallicity)
	if err != nil {
		return nil, err
	}

	in.logger.Debug("interpolating track",
		zap.Float64("mass", mass),
		zap.Float64("metallicity", metallicity),
		zap.Float64s("massBracket", []float64{massAxis.Value(mb.Lo), massAxis.Value(mb.Hi)}),
		zap.Float64s("fehBracket", []float64{fehAxis.Value(fb.Lo), fehAxis.Value(fb.Hi)}))

	atFeh := func(fi int) ([]float64, error) {
		feh := fehAxis.Value(fi)
		return in.blend(ctx, mb, massAxis, mass, func(mi int) ([]float64, error) {
			return in.GridTrack(ctx, massAxis.Value(mi), feh)
		})
	}
	return in.blend(ctx, fb, fehAxis, metallicity, atFeh)
}

// blend linearly interpolates between the tracks at the two bracket indices.
// A degenerate bracket fetches only the grid value it sits on.
func (in *Interpolator) blend(ctx context.Context, b grid.Bracket, axis grid.Axis, x float64, fetch func(int) ([]float64, error)) ([]float64, error) {
	if b.Degenerate() {
		if b.T == 0 {
			return fetch(b.Lo)
		}
		return fetch(b.Hi)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lo, err := fetch(b.Lo)
	if err != nil {
		return nil, err
	}
	hi, err := fetch(b.Hi)
	if err != nil {
		return nil, err
	}
	x1, x2 := axis.Value(b.Lo), axis.Value(b.Hi)
	out := make([]float64, len(lo))
	for t := range lo {
		out[t] = Lerp(x1, x2, lo[t], hi[t], x)
	}
	return out, nil
}

// GridTrack returns the resampled track of a tabulated grid point. The
// returned slice is owned by the caller and never shared with the cache.
func (in *Interpolator) GridTrack(ctx context.Context, mass, metallicity float64) ([]float64, error) {
	locator, err := in.catalog.Locator(mass, metallicity)
	if err != nil {
		return nil, err
	}

	if in.cache != nil {
		values, ok, err := in.cache.Get(ctx, locator)
		switch {
		case err != nil:
			in.logger.Warn("track cache read failed", zap.String("locator", locator), zap.Error(err))
		case ok && len(values) == len(in.catalog.Ages()):
			return slices.Clone(values), nil
		}
	}

	raw, err := in.loader.Load(ctx, locator)
	if err != nil {
		return nil, err
	}
	values, err := Resample(raw, in.catalog.Ages())
	if err != nil {
		return nil, err
	}

	if in.cache != nil {
		if err := in.cache.Set(ctx, locator, slices.Clone(values)); err != nil {
			in.logger.Warn("track cache write failed", zap.String("locator", locator), zap.Error(err))
		}
	}
	return values, nil
}
