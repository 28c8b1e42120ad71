package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-surface-projector/pkg/core"
)

// LoadOBJ loads vertices and faces from a Wavefront OBJ file. Polygons are
// fan-triangulated; "v/vt/vn" corner syntax and negative (relative) indices
// are accepted. Everything except "v" and "f" records is ignored.
func LoadOBJ(filename string) (*MeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer file.Close()

	data, err := parseOBJ(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OBJ file %s: %w", filename, err)
	}
	return data, nil
}

func parseOBJ(r io.Reader) (*MeshData, error) {
	data := &MeshData{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := stripComment(scanner.Text())
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "v":
			vertex, err := parseVertex(parts)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNumber, err)
			}
			data.Vertices = append(data.Vertices, vertex)
		case "f":
			if len(parts) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNumber)
			}
			corners := make([]int, 0, len(parts)-1)
			for _, token := range parts[1:] {
				index, err := parseFaceIndex(token, len(data.Vertices))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNumber, err)
				}
				corners = append(corners, index)
			}
			for k := 1; k+1 < len(corners); k++ {
				data.Faces = append(data.Faces, corners[0], corners[k], corners[k+1])
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// LoadOBJPoints reads an ordered point set from a vertex-only OBJ file. Only
// lines starting with the literal prefix "v " contribute a point; every other
// line, including faces and normals, is treated as a comment.
func LoadOBJPoints(filename string) ([]core.Vec3, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open point file: %w", err)
	}
	defer file.Close()

	points, err := parseOBJPoints(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse point file %s: %w", filename, err)
	}
	return points, nil
}

func parseOBJPoints(r io.Reader) ([]core.Vec3, error) {
	var points []core.Vec3
	scanner := bufio.NewScanner(r)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if !strings.HasPrefix(line, "v ") {
			continue
		}
		vertex, err := parseVertex(strings.Fields(stripComment(line)))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		points = append(points, vertex)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

// parseVertex parses "v x y z [w]" fields
func parseVertex(parts []string) (core.Vec3, error) {
	if len(parts) < 4 {
		return core.Vec3{}, fmt.Errorf("vertex needs 3 coordinates, got %d", len(parts)-1)
	}
	var coords [3]float64
	for i := 0; i < 3; i++ {
		value, err := strconv.ParseFloat(parts[i+1], 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid vertex coordinate %q", parts[i+1])
		}
		coords[i] = value
	}
	return core.NewVec3(coords[0], coords[1], coords[2]), nil
}

// parseFaceIndex converts a 1-based (or negative relative) OBJ index to a 0-based one
func parseFaceIndex(token string, vertexCount int) (int, error) {
	if slash := strings.IndexByte(token, '/'); slash >= 0 {
		token = token[:slash]
	}
	index, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("invalid face index %q", token)
	}

	switch {
	case index > 0:
		index--
	case index < 0:
		index += vertexCount
	default:
		return 0, fmt.Errorf("face index 0 is not valid in OBJ")
	}

	if index < 0 || index >= vertexCount {
		return 0, fmt.Errorf("face index %s out of range (%d vertices)", token, vertexCount)
	}
	return index, nil
}

func stripComment(line string) string {
	if hash := strings.IndexByte(line, '#'); hash >= 0 {
		return line[:hash]
	}
	return line
}
