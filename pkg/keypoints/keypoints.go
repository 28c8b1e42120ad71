// Package keypoints reduces an organ mesh to a small set of named landmark
// points: its centroid and the vertices at the extremes of each axis.
package keypoints

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"

	"github.com/df07/go-surface-projector/pkg/core"
	"github.com/df07/go-surface-projector/pkg/loaders"
)

// Names lists the keypoints in extraction order
var Names = []string{"Centroid", "X_min", "X_max", "Y_min", "Y_max", "Z_min", "Z_max"}

// MappingFileName is written next to the keypoint OBJ
const MappingFileName = "keypoints_mapping.json"

// Keypoint is one named landmark
type Keypoint struct {
	Name  string
	Coord core.Vec3
}

// Extract returns the centroid followed by the minimum and maximum vertex on
// X, Y and Z. Ties keep the first vertex.
func Extract(mesh *loaders.MeshData) ([]Keypoint, error) {
	if mesh == nil || len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("mesh has no vertices")
	}
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mesh: %w", err)
	}

	points := []Keypoint{{Name: Names[0], Coord: Centroid(mesh)}}
	for axis := 0; axis < 3; axis++ {
		lo, hi := 0, 0
		for i, v := range mesh.Vertices {
			if v.Axis(axis) < mesh.Vertices[lo].Axis(axis) {
				lo = i
			}
			if v.Axis(axis) > mesh.Vertices[hi].Axis(axis) {
				hi = i
			}
		}
		points = append(points,
			Keypoint{Name: Names[1+2*axis], Coord: mesh.Vertices[lo]},
			Keypoint{Name: Names[2+2*axis], Coord: mesh.Vertices[hi]},
		)
	}
	return points, nil
}

// Centroid returns the area-weighted centroid of the mesh surface. Meshes
// without area fall back to the mean vertex.
func Centroid(mesh *loaders.MeshData) core.Vec3 {
	var weighted r3.Vector
	total := 0.0
	for i := 0; i+2 < len(mesh.Faces); i += 3 {
		a := toR3(mesh.Vertices[mesh.Faces[i]])
		b := toR3(mesh.Vertices[mesh.Faces[i+1]])
		c := toR3(mesh.Vertices[mesh.Faces[i+2]])

		area := b.Sub(a).Cross(c.Sub(a)).Norm() / 2
		center := a.Add(b).Add(c).Mul(1.0 / 3.0)
		weighted = weighted.Add(center.Mul(area))
		total += area
	}
	if total > 0 {
		return fromR3(weighted.Mul(1 / total))
	}

	var sum r3.Vector
	for _, v := range mesh.Vertices {
		sum = sum.Add(toR3(v))
	}
	return fromR3(sum.Mul(1 / float64(len(mesh.Vertices))))
}

// WriteOBJ saves the keypoints as a vertex-only OBJ, one named vertex per line
func WriteOBJ(path, sourceMesh string, points []Keypoint) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	names := make([]string, len(points))
	for i, p := range points {
		names[i] = p.Name
	}

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "# Keypoints\n")
	fmt.Fprintf(w, "# Extracted from: %s\n", sourceMesh)
	fmt.Fprintf(w, "# Point count: %d\n", len(points))
	fmt.Fprintf(w, "# Order: %s\n\n", strings.Join(names, ", "))
	for _, p := range points {
		fmt.Fprintf(w, "v %.6f %.6f %.6f  # %s\n", p.Coord.X, p.Coord.Y, p.Coord.Z, p.Name)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteMapping saves a JSON object whose keys are the keypoint names in order
// and whose values are their 1-based vertex numbers.
func WriteMapping(path string, points []Keypoint) error {
	var sb strings.Builder
	sb.WriteString("{\n")
	for i, p := range points {
		key, err := json.Marshal(p.Name)
		if err != nil {
			return fmt.Errorf("failed to encode name %q: %w", p.Name, err)
		}
		sep := ","
		if i == len(points)-1 {
			sep = ""
		}
		fmt.Fprintf(&sb, "    %s: %d%s\n", key, i+1, sep)
	}
	sb.WriteString("}\n")

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// MappingPath returns the mapping file that belongs to a keypoint OBJ
func MappingPath(objPath string) string {
	return filepath.Join(filepath.Dir(objPath), MappingFileName)
}

func toR3(v core.Vec3) r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

func fromR3(v r3.Vector) core.Vec3 {
	return core.NewVec3(v.X, v.Y, v.Z)
}
