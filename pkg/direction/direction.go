// Package direction turns an anatomical (alpha, theta) angle pair into a ray
// direction. Alpha is the polar angle from the forward axis of a Basis and
// theta the azimuth in its up/left plane, both in degrees.
package direction

import (
	"fmt"
	"math"
	"strings"

	"github.com/deadsy/sdfx/sdf"

	"github.com/df07/go-surface-projector/pkg/core"
)

// normEpsilon is the smallest raw norm that is normalized; below it the
// combination is returned as-is.
const normEpsilon = 1e-9

// AnglePair is a tilt/azimuth pair in degrees. Values are not range checked.
type AnglePair struct {
	AlphaDeg float64 `json:"alpha_deg"`
	ThetaDeg float64 `json:"theta_deg"`
}

// NormalizedTheta returns theta reduced to [0, 360)
func (a AnglePair) NormalizedTheta() float64 {
	theta := math.Mod(a.ThetaDeg, 360)
	if theta < 0 {
		theta += 360
	}
	// -0 and values that round up to 360 after the shift
	if theta == 0 || theta >= 360 {
		return 0
	}
	return theta
}

// Basis is the anatomical frame: Base is the forward axis (the direction at
// alpha = 0), Up and Left span the azimuth plane.
type Basis struct {
	Base core.Vec3
	Up   core.Vec3
	Left core.Vec3
}

// Convention names one of the supported anatomical frames
type Convention string

const (
	// ConventionFrontal enters from the front along +Z with +Y toward the head
	// and -X to the patient's left.
	ConventionFrontal Convention = "frontal"
	// ConventionLegacy enters along -Y with +Z toward the head; Left is Base x Up.
	ConventionLegacy Convention = "legacy"
)

// DefaultConvention is used when a run does not choose one
const DefaultConvention = ConventionFrontal

// ParseConvention resolves a convention name (case-insensitive)
func ParseConvention(name string) (Convention, error) {
	switch Convention(strings.ToLower(strings.TrimSpace(name))) {
	case "", ConventionFrontal:
		return ConventionFrontal, nil
	case ConventionLegacy:
		return ConventionLegacy, nil
	default:
		return "", fmt.Errorf("unknown axis convention %q (want %q or %q)", name, ConventionFrontal, ConventionLegacy)
	}
}

// Basis returns the fixed frame for the convention
func (c Convention) Basis() Basis {
	switch c {
	case ConventionLegacy:
		base := core.NewVec3(0, -1, 0)
		up := core.NewVec3(0, 0, 1)
		return Basis{Base: base, Up: up, Left: base.Cross(up)}
	default:
		return Basis{
			Base: core.NewVec3(0, 0, 1),
			Up:   core.NewVec3(0, 1, 0),
			Left: core.NewVec3(-1, 0, 0),
		}
	}
}

// Solver computes directions in one fixed basis
type Solver struct {
	basis Basis
}

// NewSolver creates a solver bound to basis
func NewSolver(basis Basis) *Solver {
	return &Solver{basis: basis}
}

// Basis returns the frame the solver was created with
func (s *Solver) Basis() Basis {
	return s.basis
}

// Direction returns the unit vector for the angle pair. Every call recomputes
// from the basis; nothing is cached.
func (s *Solver) Direction(alphaDeg, thetaDeg float64) core.Vec3 {
	alpha := sdf.DtoR(alphaDeg)
	theta := sdf.DtoR(thetaDeg)

	compBase := math.Cos(alpha)
	perp := math.Sin(alpha)
	compUp := perp * math.Cos(theta)
	compLeft := perp * math.Sin(theta)

	d := s.basis.Base.Multiply(compBase).
		Add(s.basis.Up.Multiply(compUp)).
		Add(s.basis.Left.Multiply(compLeft))

	if norm := d.Length(); norm > normEpsilon {
		d = d.Multiply(1 / norm)
	}
	return d
}

// DirectionFor is Direction for an AnglePair
func (s *Solver) DirectionFor(angles AnglePair) core.Vec3 {
	return s.Direction(angles.AlphaDeg, angles.ThetaDeg)
}
