// Package grid holds the tabulated mass and metallicity axes of a stellar
// model family, the common age grid every track is resampled onto, and the
// mapping from a grid point to the resource holding its evolutionary track.
package grid

import (
	"fmt"
	"math"
	"path"
)

// Catalog describes one family of precomputed evolutionary tracks.
type Catalog interface {
	MassAxis() Axis
	MetallicityAxis() Axis
	// Ages returns the common age grid in years.
	Ages() []float64
	// LogAges returns log10 of Ages.
	LogAges() []float64
	// Locator returns the resource path of the track computed at the given
	// tabulated mass and metallicity.
	Locator(mass, metallicity float64) (string, error)
}

// LocatorFunc builds a resource path from a mass and metallicity identifier.
type LocatorFunc func(massID, fehID string) string

// Table is a Catalog backed by fixed in-memory axes.
type Table struct {
	mass    Axis
	feh     Axis
	logAges []float64
	ages    []float64
	locate  LocatorFunc
}

// NewTable builds a catalog from explicit axes and log10 ages.
func NewTable(mass, feh Axis, logAges []float64, locate LocatorFunc) (*Table, error) {
	if len(logAges) == 0 {
		return nil, fmt.Errorf("%w: empty age grid", ErrInvalidAxis)
	}
	ages := make([]float64, len(logAges))
	for i, x := range logAges {
		if i > 0 && x <= logAges[i-1] {
			return nil, fmt.Errorf("%w: age grid not strictly increasing at index %d", ErrInvalidAxis, i)
		}
		ages[i] = math.Pow(10, x)
	}
	la := make([]float64, len(logAges))
	copy(la, logAges)

	if locate == nil {
		locate = DSEPLocator
	}
	return &Table{mass: mass, feh: feh, logAges: la, ages: ages, locate: locate}, nil
}

func (t *Table) MassAxis() Axis        { return t.mass }
func (t *Table) MetallicityAxis() Axis { return t.feh }

func (t *Table) Ages() []float64 {
	out := make([]float64, len(t.ages))
	copy(out, t.ages)
	return out
}

func (t *Table) LogAges() []float64 {
	out := make([]float64, len(t.logAges))
	copy(out, t.logAges)
	return out
}

func (t *Table) Locator(mass, metallicity float64) (string, error) {
	mi, err := t.mass.Index(mass)
	if err != nil {
		return "", err
	}
	fi, err := t.feh.Index(metallicity)
	if err != nil {
		return "", err
	}
	return t.locate(t.mass.ID(mi), t.feh.ID(fi)), nil
}

// DSEPLocator is the Dartmouth track layout: one directory per metallicity,
// e.g. fehp0/m0550_GS98_p0_T60.iso.
func DSEPLocator(massID, fehID string) string {
	return path.Join("feh"+fehID, massID+"_GS98_"+fehID+"_T60.iso")
}

const (
	dsepMassCount = 31
	dsepAgeCount  = 81
	dsepLogAge0   = 6.0
	dsepLogAgeDx  = 0.05
)

// NewDSEP returns the Dartmouth low-mass grid: 0.15 to 0.75 Msun in 0.02
// steps, [Fe/H] from -1.0 to +0.3, and 81 ages from 10^6 to 10^10 yr.
func NewDSEP() *Table {
	masses := make([]float64, dsepMassCount)
	massIDs := make([]string, dsepMassCount)
	for i := range masses {
		centi := 15 + 2*i
		masses[i] = float64(centi) / 100
		massIDs[i] = fmt.Sprintf("m%04d", centi*10)
	}
	fehs := []float64{-1.0, -0.5, -0.3, -0.1, 0.0, 0.1, 0.2, 0.3}
	fehIDs := []string{"m100", "m50", "m30", "m10", "p0", "p10", "p20", "p30"}

	logAges := make([]float64, dsepAgeCount)
	for i := range logAges {
		logAges[i] = dsepLogAge0 + float64(i)*dsepLogAgeDx
	}

	t, err := NewTable(mustAxis("mass", masses, massIDs), mustAxis("metallicity", fehs, fehIDs), logAges, DSEPLocator)
	if err != nil {
		panic(err)
	}
	return t
}
