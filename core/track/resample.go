package track

import (
	"fmt"
	"sort"
)

// Resample evaluates the raw k2 track at every age in ages by linear
// interpolation in age. The raw ages must be strictly increasing and must
// span ages entirely; nothing is extrapolated.
func Resample(raw *RawTrack, ages []float64) ([]float64, error) {
	x := raw.Ages()
	y := raw.K2()

	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return nil, &TrackNotFoundError{
				Locator: raw.Locator,
				Reason:  fmt.Sprintf("ages not strictly increasing at row %d (%g after %g)", i, x[i], x[i-1]),
			}
		}
	}

	out := make([]float64, len(ages))
	for i, age := range ages {
		v, err := Linear(x, y, age)
		if err != nil {
			if ext, ok := err.(*ExtrapolationError); ok {
				ext.Locator = raw.Locator
			}
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Linear evaluates the piecewise-linear interpolant through (x, y) at at.
// x must be strictly increasing. Evaluating exactly at a knot returns the
// knot value unchanged.
func Linear(x, y []float64, at float64) (float64, error) {
	n := len(x)
	if n == 0 || at < x[0] || at > x[n-1] || at != at {
		lo, hi := 0.0, 0.0
		if n > 0 {
			lo, hi = x[0], x[n-1]
		}
		return 0, &ExtrapolationError{At: at, Min: lo, Max: hi}
	}

	i := sort.SearchFloat64s(x, at)
	if x[i] == at {
		return y[i], nil
	}
	return Lerp(x[i-1], x[i], y[i-1], y[i], at), nil
}

// Lerp linearly interpolates between (x1, y1) and (x2, y2) at x using the
// slope between the two points. The endpoints are returned exactly.
func Lerp(x1, x2, y1, y2, x float64) float64 {
	switch x {
	case x1:
		return y1
	case x2:
		return y2
	}
	slope := (y1 - y2) / (x1 - x2)
	return y1 + slope*(x-x1)
}
