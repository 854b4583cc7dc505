package track

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"k2age/core/grid"
)

// testK2 is bilinear in mass and metallicity and linear in age, so every
// interpolation stage reproduces it up to rounding.
func testK2(mass, feh, age float64) float64 {
	return 0.1 + 0.2*mass + 0.05*feh - 0.3*mass*feh + 1e-9*age*(1+mass)
}

func testCatalog(t *testing.T) *grid.Table {
	t.Helper()
	mass, err := grid.NewAxis("mass", []float64{0.15, 0.17, 0.19}, []string{"m0150", "m0170", "m0190"})
	if err != nil {
		t.Fatalf("mass axis: %v", err)
	}
	feh, err := grid.NewAxis("metallicity", []float64{-0.1, 0.0}, []string{"m10", "p0"})
	if err != nil {
		t.Fatalf("metallicity axis: %v", err)
	}
	c, err := grid.NewTable(mass, feh, []float64{6.0, 6.25, 6.5, 6.75, 7.0}, grid.DSEPLocator)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

// formatTrack renders rows of (age, k2) in the 13+ column model layout.
func formatTrack(rows [][2]float64) string {
	var b strings.Builder
	b.WriteString("# synthetic model track\n")
	b.WriteString("#  age  logL  logTeff  logg  logR  c5 c6 c7 c8 c9 c10 c11  k2\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%.10e -1.0 3.5 5.0 -0.5 0 0 0 0 0 0 0 %.12e 1.0\n", r[0], r[1])
	}
	return b.String()
}

func writeFile(t *testing.T, root, locator, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(locator))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}

// writeGrid writes a track for every catalog grid point, with irregular age
// spacing wider than the age grid.
func writeGrid(t *testing.T, c grid.Catalog) string {
	t.Helper()
	root := t.TempDir()
	rawAges := []float64{5e5, 9e5, 1.3e6, 2.2e6, 4e6, 7.1e6, 1.05e7, 1.2e7}

	for i := 0; i < c.MassAxis().Len(); i++ {
		for j := 0; j < c.MetallicityAxis().Len(); j++ {
			m, f := c.MassAxis().Value(i), c.MetallicityAxis().Value(j)
			rows := make([][2]float64, len(rawAges))
			for k, age := range rawAges {
				rows[k] = [2]float64{age, testK2(m, f, age)}
			}
			loc, err := c.Locator(m, f)
			if err != nil {
				t.Fatalf("locator: %v", err)
			}
			writeFile(t, root, loc, formatTrack(rows))
		}
	}
	return root
}

type countingLoader struct {
	inner RawLoader
	calls map[string]int
}

func (c *countingLoader) Load(ctx context.Context, locator string) (*RawTrack, error) {
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[locator]++
	return c.inner.Load(ctx, locator)
}

func (c *countingLoader) total() int {
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func assertClose(t *testing.T, label string, want, got []float64, tol float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("%s: length mismatch: want %d, got %d", label, len(want), len(got))
	}
	for i := range want {
		if math.Abs(want[i]-got[i]) > tol {
			t.Fatalf("%s[%d]: want %.15g, got %.15g", label, i, want[i], got[i])
		}
	}
}
