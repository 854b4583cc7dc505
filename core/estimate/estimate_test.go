package estimate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"k2age/core/binary"
	"k2age/core/grid"
	"k2age/core/star"
	"k2age/core/track"
)

// writeModel writes a DSEP-layout track whose log k2 falls linearly in log age.
func writeModel(t *testing.T, root string, c grid.Catalog, mass, feh, k2At6, slope float64) {
	t.Helper()
	loc, err := c.Locator(mass, feh)
	if err != nil {
		t.Fatalf("locator: %v", err)
	}
	var b strings.Builder
	for x := 5.9; x < 10.15; x += 0.037 {
		fmt.Fprintf(&b, "%.8e 0 0 0 0 0 0 0 0 0 0 0 %.10f\n", math.Pow(10, x), k2At6-slope*(x-6))
	}
	p := filepath.Join(root, filepath.FromSlash(loc))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newEstimator(t *testing.T) *Estimator {
	t.Helper()
	c := grid.NewDSEP()
	root := t.TempDir()
	writeModel(t, root, c, 0.55, 0.0, -1.50, 0.20)
	writeModel(t, root, c, 0.25, 0.0, -1.20, 0.10)
	return New(track.NewInterpolator(c, track.NewLoader(track.NewDirSource(root), nil)), nil)
}

func baseRequest() Request {
	return Request{
		PrimaryMass:     star.Float(0.55),
		SecondaryMass:   star.Float(0.25),
		PrimaryRadius:   star.Float(0.62),
		SecondaryRadius: star.Float(0.41),
		Metallicity:     star.Float(0.0),
		Eccentricity:    star.Float(0.2),
		SemiMajorAxis:   star.Float(3.0),
	}
}

func TestRun(t *testing.T) {
	e := newEstimator(t)
	res, err := e.Run(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Track) != 81 || len(res.Ages) != 81 {
		t.Fatalf("track/ages length = %d/%d, want 81", len(res.Track), len(res.Ages))
	}
	if res.Age != nil {
		t.Error("Age should be nil without an observed value")
	}
	if res.C21.Rotation != binary.PseudoSynchronous || res.C22.Rotation != binary.PseudoSynchronous {
		t.Errorf("rotation = %s/%s", res.C21.Rotation, res.C22.Rotation)
	}
	for i := range res.Track {
		lo := math.Min(res.PrimaryTrack[i], res.SecondaryTrack[i])
		hi := math.Max(res.PrimaryTrack[i], res.SecondaryTrack[i])
		if res.Track[i] < lo-1e-12 || res.Track[i] > hi+1e-12 {
			t.Fatalf("track[%d] = %g outside component range [%g, %g]", i, res.Track[i], lo, hi)
		}
	}
}

func TestRun_ObservedAge(t *testing.T) {
	e := newEstimator(t)
	first, err := e.Run(context.Background(), baseRequest())
	if err != nil {
		t.Fatal(err)
	}

	req := baseRequest()
	req.ObservedK2 = star.Float(first.Track[20])
	res, err := e.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Age == nil || *res.Age != first.Ages[20] {
		t.Errorf("Age = %v, want %g", res.Age, first.Ages[20])
	}

	req.ObservedK2 = star.Float(10)
	if _, err := e.Run(context.Background(), req); !errors.Is(err, track.ErrExtrapolation) {
		t.Errorf("Run() with unreachable k2 error = %v, want ErrExtrapolation", err)
	}
}

func TestRun_MeasuredRotation(t *testing.T) {
	e := newEstimator(t)
	req := baseRequest()
	req.PrimaryOmega = star.Float(2)
	req.OrbitOmega = star.Float(1)
	res, err := e.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.C21.Rotation != binary.Measured || res.C21.SpinRatio != 4 {
		t.Errorf("C21 = %+v, want measured with spin ratio 4", res.C21)
	}
	if res.C22.Rotation != binary.PseudoSynchronous {
		t.Errorf("C22 rotation = %s", res.C22.Rotation)
	}
}

func TestRun_Errors(t *testing.T) {
	e := newEstimator(t)
	tests := []struct {
		name   string
		mutate func(*Request)
		want   error
	}{
		{"missing mass", func(r *Request) { r.PrimaryMass = nil }, star.ErrMissingField},
		{"missing eccentricity", func(r *Request) { r.Eccentricity = nil }, star.ErrMissingField},
		{"bad eccentricity", func(r *Request) { r.Eccentricity = star.Float(1) }, star.ErrInvalidField},
		{"off the grid", func(r *Request) { r.PrimaryMass = star.Float(0.9) }, grid.ErrOutOfGridRange},
		{"missing model file", func(r *Request) { r.Metallicity = star.Float(0.1) }, track.ErrTrackNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mutate(&req)
			if _, err := e.Run(context.Background(), req); !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}
