// Package binary combines the k2 tracks of two stars into the weighted
// apsidal motion constant of the system and maps an observed value back to
// an age, following Feiden & Dotter (2013), equations 2 to 5.
package binary

import (
	"fmt"
	"math"

	"k2age/core/star"
)

// Rotation names how a component's spin ratio was obtained.
type Rotation string

const (
	// Measured means both the stellar and orbital angular velocities were known.
	Measured Rotation = "measured"
	// PseudoSynchronous means ω = (1+e)/(1-e)^3 was assumed.
	PseudoSynchronous Rotation = "pseudo-synchronous"
)

// Orbit holds the orbital elements. Nil means not supplied.
type Orbit struct {
	Eccentricity    *float64
	SemiMajorAxis   *float64 // Rsun
	AngularVelocity *float64 // optional mean orbital angular velocity
}

// Coefficient is the weight c2,i of one component.
type Coefficient struct {
	Value     float64  `json:"value"`
	SpinRatio float64  `json:"spinRatio"`
	Rotation  Rotation `json:"rotation"`
}

// Binary is a validated two-star system with its weighting coefficients.
type Binary struct {
	PrimaryMass     float64
	SecondaryMass   float64
	PrimaryRadius   float64
	SecondaryRadius float64
	Metallicity     float64
	Eccentricity    float64
	SemiMajorAxis   float64

	primaryOmega   *float64
	secondaryOmega *float64
	orbitOmega     *float64

	C21 Coefficient
	C22 Coefficient

	track []float64
}

// New builds the system from its two components and orbit and computes the
// weighting coefficients.
func New(primary, secondary *star.Star, orbit Orbit) (*Binary, error) {
	switch {
	case primary == nil:
		return nil, &star.MissingFieldError{Object: "binary", Field: "primary"}
	case secondary == nil:
		return nil, &star.MissingFieldError{Object: "binary", Field: "secondary"}
	case orbit.Eccentricity == nil:
		return nil, &star.MissingFieldError{Object: "binary", Field: "eccentricity"}
	case orbit.SemiMajorAxis == nil:
		return nil, &star.MissingFieldError{Object: "binary", Field: "semi-major axis"}
	}
	if primary.Metallicity != secondary.Metallicity {
		return nil, &InconsistentMetallicityError{Primary: primary.Metallicity, Secondary: secondary.Metallicity}
	}

	e, a := *orbit.Eccentricity, *orbit.SemiMajorAxis
	if !(e >= 0 && e < 1) {
		return nil, &star.InvalidFieldError{Object: "binary", Field: "eccentricity", Value: e, Reason: "must satisfy 0 <= e < 1"}
	}
	if !(a > 0) || math.IsInf(a, 0) {
		return nil, &star.InvalidFieldError{Object: "binary", Field: "semi-major axis", Value: a, Reason: "must be positive and finite"}
	}
	if w := orbit.AngularVelocity; w != nil && !(*w > 0) {
		return nil, &star.InvalidFieldError{Object: "binary", Field: "orbital angular velocity", Value: *w, Reason: "must be positive"}
	}

	b := &Binary{
		PrimaryMass:     primary.Mass,
		SecondaryMass:   secondary.Mass,
		PrimaryRadius:   primary.Radius,
		SecondaryRadius: secondary.Radius,
		Metallicity:     primary.Metallicity,
		Eccentricity:    e,
		SemiMajorAxis:   a,
		primaryOmega:    primary.AngularVelocity,
		secondaryOmega:  secondary.AngularVelocity,
		orbitOmega:      orbit.AngularVelocity,
	}
	b.C21, b.C22 = b.coefficients()
	return b, nil
}

// F is f(e) = (1 - e^2)^-2.
func F(e float64) float64 {
	return math.Pow(1-e*e, -2)
}

// G is g(e) = (8 + 12e^2 + e^4) f(e)^(5/2) / 8.
func G(e float64) float64 {
	e2 := e * e
	return (8 + 12*e2 + e2*e2) * math.Pow(F(e), 2.5) / 8
}

// SpinRatio returns (Ω_star/Ω_orbit)^2 when both are known and the
// pseudo-synchronous value (1+e)/(1-e)^3 otherwise.
func SpinRatio(e float64, starOmega, orbitOmega *float64) (float64, Rotation) {
	if starOmega != nil && orbitOmega != nil {
		r := *starOmega / *orbitOmega
		return r * r, Measured
	}
	return (1 + e) / math.Pow(1-e, 3), PseudoSynchronous
}

// Weight is c2,i = [ω (1+q) f(e) + 15 q g(e)] (R/A)^5 with q = m_other/m_i.
func Weight(omega, q, e, radius, a float64) float64 {
	return (omega*(1+q)*F(e) + 15*q*G(e)) * math.Pow(radius/a, 5)
}

func (b *Binary) coefficients() (Coefficient, Coefficient) {
	w1, r1 := SpinRatio(b.Eccentricity, b.primaryOmega, b.orbitOmega)
	w2, r2 := SpinRatio(b.Eccentricity, b.secondaryOmega, b.orbitOmega)

	c1 := Weight(w1, b.SecondaryMass/b.PrimaryMass, b.Eccentricity, b.PrimaryRadius, b.SemiMajorAxis)
	c2 := Weight(w2, b.PrimaryMass/b.SecondaryMass, b.Eccentricity, b.SecondaryRadius, b.SemiMajorAxis)

	return Coefficient{Value: c1, SpinRatio: w1, Rotation: r1},
		Coefficient{Value: c2, SpinRatio: w2, Rotation: r2}
}

// ConvolveTracks returns the weighted mean (c21 k2,1 + c22 k2,2)/(c21 + c22)
// at every age index and keeps it on the binary.
func (b *Binary) ConvolveTracks(primary, secondary []float64) ([]float64, error) {
	if len(primary) != len(secondary) {
		return nil, &MismatchedTrackLengthError{What: "primary and secondary tracks", Left: len(primary), Right: len(secondary)}
	}
	if len(primary) == 0 {
		return nil, fmt.Errorf("%w: empty tracks", ErrMismatchedTrackLength)
	}

	c1, c2 := b.C21.Value, b.C22.Value
	sum := c1 + c2
	out := make([]float64, len(primary))
	for i := range primary {
		out[i] = (c1*primary[i] + c2*secondary[i]) / sum
	}
	b.track = out
	return out, nil
}

// Track returns the convolved track, or nil before ConvolveTracks.
func (b *Binary) Track() []float64 { return b.track }
