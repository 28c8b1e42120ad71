package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-surface-projector/pkg/core"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version     string // Usually "1.0"
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// LoadPLY loads a PLY file and returns its vertex positions and triangulated faces.
// Binary little-endian and ASCII encodings are supported; other vertex
// properties (normals, colors) are skipped.
func LoadPLY(filename string) (*MeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReaderSize(file, 1024*1024)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var data *MeshData
	switch header.Format {
	case "binary_little_endian":
		data, err = readPLYBody(newBinaryFieldReader(reader, binary.LittleEndian), header)
	case "binary_big_endian":
		data, err = readPLYBody(newBinaryFieldReader(reader, binary.BigEndian), header)
	case "ascii":
		data, err = readPLYBody(newASCIIFieldReader(reader), header)
	default:
		return nil, fmt.Errorf("unsupported PLY format: %s", header.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read PLY data: %w", err)
	}

	return data, nil
}

// parsePLYHeader reads header lines up to and including end_header
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var currentElement string
	sawMagic := false

	for {
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return nil, fmt.Errorf("error reading header: %w", err)
		}
		line = strings.TrimSpace(line)

		if !sawMagic {
			if line != "ply" {
				return nil, fmt.Errorf("missing ply magic number")
			}
			sawMagic = true
			continue
		}

		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) >= 3 {
				header.Format = parts[1]
				header.Version = parts[2]
			}
		case "comment", "obj_info":
			// Ignore comments
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element definition: %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to parse property: %w", err)
			}
			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		}

		if err == io.EOF {
			return nil, fmt.Errorf("unexpected end of file before end_header")
		}
	}

	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition")
	}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition")
		}
		return PLYProperty{IsList: true, ListType: parts[1], DataType: parts[2], Name: parts[3]}, nil
	}

	return PLYProperty{Type: parts[0], Name: parts[1]}, nil
}

// fieldReader decodes one scalar of a PLY type from the element stream
type fieldReader interface {
	ReadScalar(dataType string) (float64, error)
}

// readPLYBody reads the vertex and face elements described by the header
func readPLYBody(fields fieldReader, header *PLYHeader) (*MeshData, error) {
	vertices := make([]core.Vec3, 0, header.VertexCount)
	faces := make([]int, 0, header.FaceCount*3)

	for i := 0; i < header.VertexCount; i++ {
		var x, y, z float64
		for _, prop := range header.VertexProps {
			if prop.IsList {
				if _, err := readPLYList(fields, prop); err != nil {
					return nil, fmt.Errorf("failed to skip vertex list %s at vertex %d: %w", prop.Name, i, err)
				}
				continue
			}
			value, err := fields.ReadScalar(prop.Type)
			if err != nil {
				return nil, fmt.Errorf("failed to read vertex %d property %s: %w", i, prop.Name, err)
			}
			switch prop.Name {
			case "x":
				x = value
			case "y":
				y = value
			case "z":
				z = value
			}
		}
		vertices = append(vertices, core.NewVec3(x, y, z))
	}

	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList {
				if _, err := fields.ReadScalar(prop.Type); err != nil {
					return nil, fmt.Errorf("failed to skip face property %s at face %d: %w", prop.Name, i, err)
				}
				continue
			}

			values, err := readPLYList(fields, prop)
			if err != nil {
				return nil, fmt.Errorf("failed to read face %d: %w", i, err)
			}
			if prop.Name != "vertex_indices" && prop.Name != "vertex_index" {
				continue
			}
			if len(values) < 3 {
				return nil, fmt.Errorf("face %d has only %d vertices", i, len(values))
			}

			// Fan triangulation keeps quads and polygons usable
			for k := 1; k+1 < len(values); k++ {
				faces = append(faces, int(values[0]), int(values[k]), int(values[k+1]))
			}
		}
	}

	return &MeshData{Vertices: vertices, Faces: faces}, nil
}

// readPLYList reads a count followed by that many values
func readPLYList(fields fieldReader, prop PLYProperty) ([]float64, error) {
	count, err := fields.ReadScalar(prop.ListType)
	if err != nil {
		return nil, fmt.Errorf("failed to read list count: %w", err)
	}
	if count < 0 || count != math.Trunc(count) {
		return nil, fmt.Errorf("invalid list count %v", count)
	}

	values := make([]float64, int(count))
	for i := range values {
		if values[i], err = fields.ReadScalar(prop.DataType); err != nil {
			return nil, fmt.Errorf("failed to read list element %d: %w", i, err)
		}
	}
	return values, nil
}

// binaryFieldReader reads scalars from a binary PLY body
type binaryFieldReader struct {
	reader    io.Reader
	byteOrder binary.ByteOrder
	buf       [8]byte
}

func newBinaryFieldReader(reader io.Reader, byteOrder binary.ByteOrder) *binaryFieldReader {
	return &binaryFieldReader{reader: reader, byteOrder: byteOrder}
}

func (b *binaryFieldReader) ReadScalar(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unsupported data type: %s", dataType)
	}

	buf := b.buf[:size]
	if _, err := io.ReadFull(b.reader, buf); err != nil {
		return 0, err
	}

	switch dataType {
	case "float", "float32":
		return float64(math.Float32frombits(b.byteOrder.Uint32(buf))), nil
	case "double", "float64":
		return math.Float64frombits(b.byteOrder.Uint64(buf)), nil
	case "int", "int32":
		return float64(int32(b.byteOrder.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.byteOrder.Uint32(buf)), nil
	case "short", "int16":
		return float64(int16(b.byteOrder.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.byteOrder.Uint16(buf)), nil
	case "char", "int8":
		return float64(int8(buf[0])), nil
	default: // uchar, uint8
		return float64(buf[0]), nil
	}
}

// asciiFieldReader reads whitespace separated scalars from an ASCII PLY body
type asciiFieldReader struct {
	scanner *bufio.Scanner
}

func newASCIIFieldReader(reader io.Reader) *asciiFieldReader {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)
	return &asciiFieldReader{scanner: scanner}
}

func (a *asciiFieldReader) ReadScalar(dataType string) (float64, error) {
	if getTypeSize(dataType) == 0 {
		return 0, fmt.Errorf("unsupported data type: %s", dataType)
	}
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	value, err := strconv.ParseFloat(a.scanner.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", dataType, a.scanner.Text())
	}
	return value, nil
}

// getTypeSize returns the size in bytes of a PLY data type, or 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "float", "float32", "int", "int32", "uint", "uint32":
		return 4
	case "double", "float64":
		return 8
	case "short", "int16", "ushort", "uint16":
		return 2
	case "char", "int8", "uchar", "uint8":
		return 1
	default:
		return 0
	}
}
