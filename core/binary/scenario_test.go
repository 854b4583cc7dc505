package binary

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"k2age/core/grid"
	"k2age/core/star"
	"k2age/core/track"
)

// writeModel writes a DSEP-layout track whose k2 falls linearly in log age.
func writeModel(t *testing.T, root string, c grid.Catalog, mass, feh, k2At6, slope float64) {
	t.Helper()
	loc, err := c.Locator(mass, feh)
	if err != nil {
		t.Fatalf("locator: %v", err)
	}
	var b strings.Builder
	b.WriteString("# age logL logT logg logR x x x x x x x k2\n")
	for x := 5.9; x < 10.15; x += 0.037 {
		age := math.Pow(10, x)
		k2 := k2At6 - slope*(x-6)
		fmt.Fprintf(&b, "%.8e 0 0 0 0 0 0 0 0 0 0 0 %.10f\n", age, k2)
	}
	p := filepath.Join(root, filepath.FromSlash(loc))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestScenario_FeidenDotterFigure3(t *testing.T) {
	c := grid.NewDSEP()
	root := t.TempDir()
	writeModel(t, root, c, 0.55, 0.0, 0.150, 0.020)
	writeModel(t, root, c, 0.25, 0.0, 0.154, 0.010)

	in := track.NewInterpolator(c, track.NewLoader(track.NewDirSource(root), nil))
	ctx := context.Background()

	primary, err := star.New(star.Params{Mass: star.Float(0.55), Radius: star.Float(0.62), Metallicity: star.Float(0.0)})
	if err != nil {
		t.Fatalf("primary: %v", err)
	}
	secondary, err := star.New(star.Params{Mass: star.Float(0.25), Radius: star.Float(0.41), Metallicity: star.Float(0.0)})
	if err != nil {
		t.Fatalf("secondary: %v", err)
	}

	pt, err := primary.SynthesizeTrack(ctx, in)
	if err != nil {
		t.Fatalf("primary track: %v", err)
	}
	st, err := secondary.SynthesizeTrack(ctx, in)
	if err != nil {
		t.Fatalf("secondary track: %v", err)
	}

	b, err := New(primary, secondary, Orbit{Eccentricity: star.Float(0.2), SemiMajorAxis: star.Float(3.0)})
	if err != nil {
		t.Fatalf("binary: %v", err)
	}
	if b.C21.Rotation != PseudoSynchronous || b.C22.Rotation != PseudoSynchronous {
		t.Fatalf("expected pseudo-synchronous rotation for both stars, got %s and %s", b.C21.Rotation, b.C22.Rotation)
	}

	combined, err := b.ConvolveTracks(pt, st)
	if err != nil {
		t.Fatalf("convolve: %v", err)
	}
	if len(combined) != 81 {
		t.Fatalf("expected 81 points, got %d", len(combined))
	}

	var buf bytes.Buffer
	if err := WriteTable(&buf, c.Ages(), combined); err != nil {
		t.Fatalf("write table: %v", err)
	}
	rows := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(rows) != 81 {
		t.Fatalf("expected 81 rows, got %d", len(rows))
	}
	if first := strings.Fields(rows[0]); first[0] != "1000000.00" {
		t.Fatalf("first row age: want 1000000.00, got %s", first[0])
	}

	ages := c.Ages()
	age, err := AgeFromObservedValue(combined, ages, combined[40])
	if err != nil {
		t.Fatalf("age lookup: %v", err)
	}
	if age != ages[40] {
		t.Fatalf("age lookup: want %g, got %g", ages[40], age)
	}
}
