package track

import (
	"errors"
	"testing"
)

func rawFrom(rows [][2]float64) *RawTrack {
	raw := &RawTrack{Locator: "mem"}
	for _, r := range rows {
		row := make([]float64, len(Columns))
		row[AgeField] = r[0]
		row[K2Field] = r[1]
		raw.Rows = append(raw.Rows, row)
	}
	return raw
}

func TestResample(t *testing.T) {
	raw := rawFrom([][2]float64{{0, 1}, {10, 2}, {30, 0}})

	got, err := Resample(raw, []float64{0, 5, 10, 20, 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, "resampled", []float64{1, 1.5, 2, 1, 0}, got, 1e-15)
}

func TestResample_Extrapolation(t *testing.T) {
	raw := rawFrom([][2]float64{{10, 1}, {20, 2}})

	tests := []struct {
		name string
		ages []float64
	}{
		{name: "before first model", ages: []float64{5, 10}},
		{name: "after last model", ages: []float64{15, 25}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resample(raw, tc.ages)
			var ext *ExtrapolationError
			if !errors.As(err, &ext) {
				t.Fatalf("expected ExtrapolationError, got %v", err)
			}
			if ext.Locator != "mem" || ext.Min != 10 || ext.Max != 20 {
				t.Fatalf("unexpected error fields %+v", ext)
			}
		})
	}
}

func TestResample_UnorderedAges(t *testing.T) {
	raw := rawFrom([][2]float64{{10, 1}, {10, 2}, {20, 3}})

	if _, err := Resample(raw, []float64{10, 20}); !errors.Is(err, ErrTrackNotFound) {
		t.Fatalf("expected ErrTrackNotFound, got %v", err)
	}
}

func TestLerp_Endpoints(t *testing.T) {
	x1, x2 := 0.15, 0.17
	y1, y2 := 0.1234567, 0.7654321

	if got := Lerp(x1, x2, y1, y2, x1); got != y1 {
		t.Fatalf("lower endpoint: want %g, got %g", y1, got)
	}
	if got := Lerp(x1, x2, y1, y2, x2); got != y2 {
		t.Fatalf("upper endpoint: want %g, got %g", y2, got)
	}
}
