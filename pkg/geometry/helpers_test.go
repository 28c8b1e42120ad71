package geometry

import "github.com/df07/go-surface-projector/pkg/core"

// newCubeMesh returns an axis-aligned closed cube with 12 triangles
func newCubeMesh(center core.Vec3, half float64) *TriangleMesh {
	corners := []core.Vec3{
		core.NewVec3(-half, -half, -half), // 0
		core.NewVec3(half, -half, -half),  // 1
		core.NewVec3(half, half, -half),   // 2
		core.NewVec3(-half, half, -half),  // 3
		core.NewVec3(-half, -half, half),  // 4
		core.NewVec3(half, -half, half),   // 5
		core.NewVec3(half, half, half),    // 6
		core.NewVec3(-half, half, half),   // 7
	}
	for i := range corners {
		corners[i] = corners[i].Add(center)
	}

	faces := []int{
		0, 2, 1, 0, 3, 2, // -Z
		4, 5, 6, 4, 6, 7, // +Z
		0, 1, 5, 0, 5, 4, // -Y
		3, 7, 6, 3, 6, 2, // +Y
		0, 4, 7, 0, 7, 3, // -X
		1, 2, 6, 1, 6, 5, // +X
	}

	return NewTriangleMesh(corners, faces)
}

// newPlaneMesh returns a square in the plane z = zPlane made of two triangles
func newPlaneMesh(zPlane, half float64) *TriangleMesh {
	vertices := []core.Vec3{
		core.NewVec3(-half, -half, zPlane),
		core.NewVec3(half, -half, zPlane),
		core.NewVec3(half, half, zPlane),
		core.NewVec3(-half, half, zPlane),
	}
	return NewTriangleMesh(vertices, []int{0, 1, 2, 0, 2, 3})
}
