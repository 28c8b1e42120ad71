package projection

import (
	"github.com/df07/go-surface-projector/pkg/core"
	"github.com/df07/go-surface-projector/pkg/geometry"
)

// Normalize moves the target surface and the source points into a frame
// centered on the target's bounding box. Both are shifted by the same vector,
// which is returned; the inputs are left untouched.
func Normalize(target *geometry.TriangleMesh, points []SourcePoint) (*geometry.TriangleMesh, []SourcePoint, core.Vec3) {
	offset := target.Center().Negate()

	moved := make([]SourcePoint, len(points))
	for i, p := range points {
		moved[i] = SourcePoint{Index: p.Index, Name: p.Name, Coord: p.Coord.Add(offset)}
	}

	return target.Translate(offset), moved, offset
}
