package geometry

import "github.com/df07/go-surface-projector/pkg/core"

// Hit describes one ray-surface intersection candidate
type Hit struct {
	T      float64   // Parameter t along the ray
	Point  core.Vec3 // Point of intersection
	FaceID int       // Index of the triangle in the source mesh
}

// Shape interface for objects that can be hit by rays
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (Hit, bool)
	BoundingBox() core.AABB
}
