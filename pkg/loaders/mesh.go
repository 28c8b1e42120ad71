package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-surface-projector/pkg/core"
	"github.com/df07/go-surface-projector/pkg/geometry"
)

// MeshData contains the raw data loaded from a mesh or point file
type MeshData struct {
	Vertices []core.Vec3 // Vertex positions (x, y, z)
	Faces    []int       // Triangle indices (3 per triangle)
}

// TriangleCount returns the number of triangles described by Faces
func (m *MeshData) TriangleCount() int {
	return len(m.Faces) / 3
}

// Validate checks that every face index refers to an existing vertex
func (m *MeshData) Validate() error {
	if len(m.Faces)%3 != 0 {
		return fmt.Errorf("face index count %d is not a multiple of 3", len(m.Faces))
	}
	for i, index := range m.Faces {
		if index < 0 || index >= len(m.Vertices) {
			return fmt.Errorf("face %d references vertex %d of %d", i/3, index, len(m.Vertices))
		}
	}
	return nil
}

// LoadMesh loads a mesh file, choosing the reader from the file extension
func LoadMesh(filename string) (*MeshData, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".obj":
		return LoadOBJ(filename)
	case ".ply":
		return LoadPLY(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", filepath.Ext(filename))
	}
}

// LoadSurface loads a target surface and builds its ray-query structure
func LoadSurface(filename string) (*geometry.TriangleMesh, error) {
	data, err := LoadMesh(filename)
	if err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid surface %s: %w", filename, err)
	}
	return geometry.NewTriangleMesh(data.Vertices, data.Faces), nil
}

// LoadPoints loads an ordered point set. OBJ files contribute their "v " lines;
// PLY files contribute their vertex element.
func LoadPoints(filename string) ([]core.Vec3, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".obj":
		return LoadOBJPoints(filename)
	case ".ply":
		data, err := LoadPLY(filename)
		if err != nil {
			return nil, err
		}
		return data.Vertices, nil
	default:
		return nil, fmt.Errorf("unsupported point format: %s", filepath.Ext(filename))
	}
}
