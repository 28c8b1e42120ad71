package geometry

import (
	"github.com/df07/go-surface-projector/pkg/core"
)

// containmentDirection is deliberately off-axis so the parity ray rarely grazes
// edges or vertices of axis-aligned meshes.
var containmentDirection = core.NewVec3(-0.40475415, 0.86174632, -0.30588783)

// Contains reports whether p lies inside the closed mesh, using the parity of
// ray crossings. Crossings closer together than a small fraction of the mesh
// diagonal are counted once, so rays through shared edges or duplicated faces
// do not flip the result.
func (tm *TriangleMesh) Contains(p core.Vec3) bool {
	if tm.IsEmpty() || !tm.bbox.Contains(p) {
		return false
	}

	hits := tm.IntersectAll(core.NewRay(p, containmentDirection))
	if len(hits) == 0 {
		return false
	}

	epsilon := tm.bbox.Size().Length() * 1e-9
	numUnique := 0
	lastT := -1.0
	for _, h := range hits {
		if numUnique == 0 || h.T-lastT > epsilon {
			numUnique++
		}
		lastT = h.T
	}

	return numUnique%2 == 1
}

// CountContained returns how many points lie inside the mesh
func (tm *TriangleMesh) CountContained(points []core.Vec3) int {
	count := 0
	for _, p := range points {
		if tm.Contains(p) {
			count++
		}
	}
	return count
}
