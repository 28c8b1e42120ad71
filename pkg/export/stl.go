package export

import (
	"fmt"
	"path/filepath"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/df07/go-surface-projector/pkg/core"
	"github.com/df07/go-surface-projector/pkg/geometry"
)

// ToTriangles converts a mesh to sdfx triangles in face order
func ToTriangles(mesh *geometry.TriangleMesh) []*sdf.Triangle3 {
	vertices := mesh.Vertices()
	faces := mesh.Faces()

	triangles := make([]*sdf.Triangle3, 0, len(faces)/3)
	for i := 0; i+2 < len(faces); i += 3 {
		triangles = append(triangles, &sdf.Triangle3{
			toV3(vertices[faces[i]]),
			toV3(vertices[faces[i+1]]),
			toV3(vertices[faces[i+2]]),
		})
	}
	return triangles
}

// WriteSurfaceSTL saves the mesh as a binary STL in dir and returns its path
func WriteSurfaceSTL(dir string, mesh *geometry.TriangleMesh) (string, error) {
	if mesh.IsEmpty() {
		return "", fmt.Errorf("cannot write an empty surface")
	}

	path := filepath.Join(dir, SurfaceFileName)
	if err := render.SaveSTL(path, ToTriangles(mesh)); err != nil {
		return "", fmt.Errorf("failed to write STL: %w", err)
	}
	return path, nil
}

func toV3(v core.Vec3) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}
