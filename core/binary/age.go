package binary

import (
	"sort"

	"k2age/core/track"
)

// AgeFromObservedValue inverts a k2 track: it interpolates linearly in the
// (k2, age) pairs and returns the age at which the track equals observed.
// The track must be strictly monotonic, increasing or decreasing.
func AgeFromObservedValue(k2 []float64, ages []float64, observed float64) (float64, error) {
	if len(k2) != len(ages) {
		return 0, &MismatchedTrackLengthError{What: "track and age grid", Left: len(k2), Right: len(ages)}
	}
	n := len(k2)
	if n == 0 {
		return 0, &track.ExtrapolationError{At: observed}
	}

	increasing := n == 1 || k2[1] > k2[0]
	for i := 1; i < n; i++ {
		if (increasing && !(k2[i] > k2[i-1])) || (!increasing && !(k2[i] < k2[i-1])) {
			return 0, &NonMonotonicTrackError{Index: i, Prev: k2[i-1], Value: k2[i]}
		}
	}

	lo, hi := k2[0], k2[n-1]
	if !increasing {
		lo, hi = hi, lo
	}
	if observed < lo || observed > hi || observed != observed {
		return 0, &track.ExtrapolationError{At: observed, Min: lo, Max: hi}
	}

	var i int
	if increasing {
		i = sort.Search(n, func(j int) bool { return k2[j] >= observed })
	} else {
		i = sort.Search(n, func(j int) bool { return k2[j] <= observed })
	}
	if k2[i] == observed {
		return ages[i], nil
	}
	return track.Lerp(k2[i-1], k2[i], ages[i-1], ages[i], observed), nil
}
