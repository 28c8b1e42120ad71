package geometry

import "github.com/df07/go-surface-projector/pkg/core"

// determinantEpsilon rejects rays lying in the plane of a triangle
const determinantEpsilon = 1e-12

// Triangle represents a single mesh face defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3 // The three vertices
	FaceID     int       // Face index within the owning mesh
	bbox       core.AABB // Cached bounding box
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3, faceID int) *Triangle {
	t := &Triangle{
		V0:     v0,
		V1:     v1,
		V2:     v2,
		FaceID: faceID,
	}

	t.bbox = core.NewAABBFromPoints(v0, v1, v2)

	return t
}

// Hit tests if a ray intersects with the triangle using the Moller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in the plane of the triangle (or has zero length)
	if a > -determinantEpsilon && a < determinantEpsilon {
		return Hit{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return Hit{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return Hit{}, false
	}

	tParam := f * edge2.Dot(q)
	if tParam < tMin || tParam > tMax {
		return Hit{}, false
	}

	return Hit{
		T:      tParam,
		Point:  ray.At(tParam),
		FaceID: t.FaceID,
	}, true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}
