package geometry

import (
	"math"
	"sort"

	"github.com/df07/go-surface-projector/pkg/core"
)

// TriangleMesh represents a closed target surface with an internal BVH for
// ray queries. The mesh keeps its source vertex and face arrays so it can be
// translated or exported without losing face numbering.
type TriangleMesh struct {
	vertices  []core.Vec3
	faces     []int
	triangles []Shape
	bvh       *BVH
	bbox      core.AABB
}

// NewTriangleMesh creates a new triangle mesh from vertices and face indices
// vertices: array of 3D points
// faces: array of triangle indices (each group of 3 indices forms a triangle)
// Face i of the mesh is the triangle faces[3i:3i+3] and reports FaceID i.
func NewTriangleMesh(vertices []core.Vec3, faces []int) *TriangleMesh {
	if len(faces)%3 != 0 {
		panic("Face indices must be a multiple of 3")
	}

	numTriangles := len(faces) / 3
	triangles := make([]Shape, numTriangles)

	for i := 0; i < numTriangles; i++ {
		i0 := faces[i*3]
		i1 := faces[i*3+1]
		i2 := faces[i*3+2]

		if i0 >= len(vertices) || i1 >= len(vertices) || i2 >= len(vertices) ||
			i0 < 0 || i1 < 0 || i2 < 0 {
			panic("Face index out of bounds")
		}

		triangles[i] = NewTriangle(vertices[i0], vertices[i1], vertices[i2], i)
	}

	bvh := NewBVH(triangles)

	ownVertices := make([]core.Vec3, len(vertices))
	copy(ownVertices, vertices)
	ownFaces := make([]int, len(faces))
	copy(ownFaces, faces)

	return &TriangleMesh{
		vertices:  ownVertices,
		faces:     ownFaces,
		triangles: triangles,
		bvh:       bvh,
		bbox:      bvh.BoundingBox(),
	}
}

// IntersectAll returns every intersection of the ray with the mesh at t >= 0,
// ordered by ray parameter and then face index.
func (tm *TriangleMesh) IntersectAll(ray core.Ray) []Hit {
	var hits []Hit
	tm.bvh.VisitAll(ray, 0, math.Inf(1), func(h Hit) {
		hits = append(hits, h)
	})

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].T != hits[j].T {
			return hits[i].T < hits[j].T
		}
		return hits[i].FaceID < hits[j].FaceID
	})

	return hits
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() core.AABB {
	return tm.bbox
}

// Center returns the center of the mesh bounding box
func (tm *TriangleMesh) Center() core.Vec3 {
	return tm.bbox.Center()
}

// GetTriangleCount returns the number of triangles in this mesh
func (tm *TriangleMesh) GetTriangleCount() int {
	return len(tm.triangles)
}

// IsEmpty reports whether the mesh has no faces to intersect
func (tm *TriangleMesh) IsEmpty() bool {
	return tm == nil || len(tm.triangles) == 0
}

// Vertices returns a copy of the mesh vertices
func (tm *TriangleMesh) Vertices() []core.Vec3 {
	out := make([]core.Vec3, len(tm.vertices))
	copy(out, tm.vertices)
	return out
}

// Faces returns a copy of the flat face index array
func (tm *TriangleMesh) Faces() []int {
	out := make([]int, len(tm.faces))
	copy(out, tm.faces)
	return out
}

// Translate returns a new mesh with every vertex shifted by offset.
// Face numbering is unchanged.
func (tm *TriangleMesh) Translate(offset core.Vec3) *TriangleMesh {
	moved := make([]core.Vec3, len(tm.vertices))
	for i, v := range tm.vertices {
		moved[i] = v.Add(offset)
	}
	return NewTriangleMesh(moved, tm.faces)
}
