package grid

import (
	"errors"
	"math"
	"testing"
)

func TestNewDSEP_Tables(t *testing.T) {
	c := NewDSEP()

	if got := c.MassAxis().Len(); got != 31 {
		t.Fatalf("expected 31 masses, got %d", got)
	}
	if got := c.MetallicityAxis().Len(); got != 8 {
		t.Fatalf("expected 8 metallicities, got %d", got)
	}
	if c.MassAxis().Min() != 0.15 || c.MassAxis().Max() != 0.75 {
		t.Fatalf("unexpected mass range [%g, %g]", c.MassAxis().Min(), c.MassAxis().Max())
	}

	ages := c.Ages()
	if len(ages) != 81 {
		t.Fatalf("expected 81 ages, got %d", len(ages))
	}
	if ages[0] != 1e6 {
		t.Fatalf("first age: want 1e6, got %g", ages[0])
	}
	if math.Abs(ages[80]-1e10)/1e10 > 1e-12 {
		t.Fatalf("last age: want 1e10, got %g", ages[80])
	}
}

func TestTable_Locator(t *testing.T) {
	c := NewDSEP()

	tests := []struct {
		name    string
		mass    float64
		feh     float64
		want    string
		wantErr error
	}{
		{name: "solar metallicity", mass: 0.55, feh: 0.0, want: "fehp0/m0550_GS98_p0_T60.iso"},
		{name: "metal poor edge", mass: 0.15, feh: -1.0, want: "fehm100/m0150_GS98_m100_T60.iso"},
		{name: "metal rich edge", mass: 0.75, feh: 0.3, want: "fehp30/m0750_GS98_p30_T60.iso"},
		{name: "off-grid mass", mass: 0.56, feh: 0.0, wantErr: ErrUnknownGridPoint},
		{name: "off-grid metallicity", mass: 0.55, feh: 0.05, wantErr: ErrUnknownGridPoint},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Locator(tc.mass, tc.feh)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected error %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("locator mismatch: want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNewTable_RejectsUnorderedAges(t *testing.T) {
	mass := mustAxis("mass", []float64{0.1, 0.2}, []string{"a", "b"})
	feh := mustAxis("metallicity", []float64{0}, []string{"p0"})

	if _, err := NewTable(mass, feh, []float64{6, 6}, nil); !errors.Is(err, ErrInvalidAxis) {
		t.Fatalf("expected ErrInvalidAxis, got %v", err)
	}
}
