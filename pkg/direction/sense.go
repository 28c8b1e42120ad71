package direction

import (
	"fmt"
	"strings"

	"github.com/df07/go-surface-projector/pkg/core"
)

// RaySense states what the solved direction means and therefore which way
// the ray is cast from each source point.
type RaySense int

const (
	// OutwardFromSource: the angle pair is the emission direction of the
	// source; rays are cast along the solved direction.
	OutwardFromSource RaySense = iota
	// InwardFromSurface: the angle pair is an incidence direction arriving at
	// the body from outside; rays are cast back along its negation.
	InwardFromSurface
)

// String returns the name used in flags and result files
func (r RaySense) String() string {
	switch r {
	case OutwardFromSource:
		return "outward-from-source"
	case InwardFromSurface:
		return "inward-from-surface"
	default:
		return fmt.Sprintf("RaySense(%d)", int(r))
	}
}

// ParseRaySense resolves a sense name as produced by String
func ParseRaySense(name string) (RaySense, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "outward-from-source", "outward":
		return OutwardFromSource, nil
	case "inward-from-surface", "inward":
		return InwardFromSurface, nil
	default:
		return 0, fmt.Errorf("unknown ray sense %q", name)
	}
}

// Apply converts a solved direction into the direction rays are cast in
func (r RaySense) Apply(d core.Vec3) core.Vec3 {
	if r == InwardFromSurface {
		return d.Negate()
	}
	return d
}
