package projection

import (
	"context"

	"github.com/df07/go-surface-projector/pkg/core"
	"github.com/df07/go-surface-projector/pkg/geometry"
)

// newPlaneMesh returns a square of half-size half in the plane z = zPlane
func newPlaneMesh(zPlane, half float64) *geometry.TriangleMesh {
	vertices := []core.Vec3{
		core.NewVec3(-half, -half, zPlane),
		core.NewVec3(half, -half, zPlane),
		core.NewVec3(half, half, zPlane),
		core.NewVec3(-half, half, zPlane),
	}
	return geometry.NewTriangleMesh(vertices, []int{0, 1, 2, 0, 2, 3})
}

// newBoxMesh returns a closed axis-aligned box between min and max
func newBoxMesh(min, max core.Vec3) *geometry.TriangleMesh {
	vertices := []core.Vec3{
		core.NewVec3(min.X, min.Y, min.Z),
		core.NewVec3(max.X, min.Y, min.Z),
		core.NewVec3(max.X, max.Y, min.Z),
		core.NewVec3(min.X, max.Y, min.Z),
		core.NewVec3(min.X, min.Y, max.Z),
		core.NewVec3(max.X, min.Y, max.Z),
		core.NewVec3(max.X, max.Y, max.Z),
		core.NewVec3(min.X, max.Y, max.Z),
	}
	faces := []int{
		0, 2, 1, 0, 3, 2,
		4, 5, 6, 4, 6, 7,
		0, 1, 5, 0, 5, 4,
		3, 7, 6, 3, 6, 2,
		0, 4, 7, 0, 7, 3,
		1, 2, 6, 1, 6, 5,
	}
	return geometry.NewTriangleMesh(vertices, faces)
}

// scriptedCaster returns fixed candidates, letting tests control their order
type scriptedCaster struct {
	hits  []geometry.RayHit
	err   error
	empty bool
}

func (s *scriptedCaster) IntersectBatch(ctx context.Context, origins []core.Vec3, direction core.Vec3, numWorkers int) ([]geometry.RayHit, error) {
	return s.hits, s.err
}

func (s *scriptedCaster) IsEmpty() bool {
	return s.empty
}
