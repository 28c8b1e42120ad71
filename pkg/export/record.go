// Package export writes experiment records and their geometry to disk.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-surface-projector/pkg/core"
	"github.com/df07/go-surface-projector/pkg/projection"
)

const (
	RecordFileName           = "ray_trace_result.json"
	IntersectionsFileName    = "intersections.obj"
	RayPairsFileName         = "ray_pairs.obj"
	IntersectionsPLYFileName = "intersection_points.ply"
	SurfaceFileName          = "target_surface.stl"
)

type recordJSON struct {
	Timestamp        string             `json:"timestamp"`
	RunID            string             `json:"run_id"`
	Parameters       parametersJSON     `json:"parameters"`
	RayDirection     [3]float64         `json:"ray_direction_vector"`
	InputFiles       inputFilesJSON     `json:"input_files"`
	SceneTranslation *[3]float64        `json:"scene_translation,omitempty"`
	ResultsSummary   summaryJSON        `json:"results_summary"`
	Intersections    []intersectionJSON `json:"intersections"`
}

type parametersJSON struct {
	AlphaDeg       float64 `json:"alpha_deg"`
	ThetaDeg       float64 `json:"theta_deg"`
	AxisConvention string  `json:"axis_convention"`
	RaySense       string  `json:"ray_sense"`
	Variant        string  `json:"variant"`
}

type inputFilesJSON struct {
	SkinMesh     string `json:"skin_mesh"`
	KeyPoints    string `json:"key_points"`
	PointMapping string `json:"point_mapping,omitempty"`
}

type summaryJSON struct {
	TotalSourcePoints int `json:"total_source_points"`
	RaysThatHit       int `json:"rays_that_hit"`
}

type intersectionJSON struct {
	SourcePointIndex  int         `json:"source_point_index"`
	SourcePointName   string      `json:"source_point_name"`
	SourceCoord       [3]float64  `json:"source_coord"`
	Hit               bool        `json:"hit"`
	IntersectionCoord *[3]float64 `json:"intersection_coord"`
	FaceID            *int        `json:"face_id"`
	Distance          *float64    `json:"distance"`
}

// MarshalRecord renders a record as indented JSON. Input file paths are
// reduced to their base names.
func MarshalRecord(record *projection.ExperimentRecord) ([]byte, error) {
	p := record.Provenance
	doc := recordJSON{
		Timestamp: p.Timestamp.Format(time.RFC3339Nano),
		RunID:     p.RunID,
		Parameters: parametersJSON{
			AlphaDeg:       record.Angles.AlphaDeg,
			ThetaDeg:       record.Angles.ThetaDeg,
			AxisConvention: string(p.Convention),
			RaySense:       p.Sense.String(),
			Variant:        p.Variant,
		},
		RayDirection: record.Direction.Array(),
		InputFiles: inputFilesJSON{
			SkinMesh:     baseName(p.InputFiles.SkinMesh),
			KeyPoints:    baseName(p.InputFiles.KeyPoints),
			PointMapping: baseName(p.InputFiles.PointMapping),
		},
		ResultsSummary: summaryJSON{
			TotalSourcePoints: record.Summary.TotalSourcePoints,
			RaysThatHit:       record.Summary.RaysThatHit,
		},
		Intersections: make([]intersectionJSON, len(record.Results)),
	}
	if p.Translation != nil {
		t := p.Translation.Array()
		doc.SceneTranslation = &t
	}

	for i, r := range record.Results {
		entry := intersectionJSON{
			SourcePointIndex: r.SourceIndex,
			SourcePointName:  r.SourceName,
			SourceCoord:      r.SourceCoord.Array(),
			Hit:              r.Hit,
			FaceID:           r.FaceID,
			Distance:         r.Distance,
		}
		if r.IntersectionCoord != nil {
			c := r.IntersectionCoord.Array()
			entry.IntersectionCoord = &c
		}
		doc.Intersections[i] = entry
	}

	var sb strings.Builder
	encoder := json.NewEncoder(&sb)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return []byte(sb.String()), nil
}

// WriteRecord writes ray_trace_result.json into dir and returns its path. dir
// is created only once the record has encoded, so a failed encode leaves
// nothing behind.
func WriteRecord(dir string, record *projection.ExperimentRecord) (string, error) {
	data, err := MarshalRecord(record)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, RecordFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write record: %w", err)
	}
	return path, nil
}

// ExperimentDirName names the directory of one angle pair. Values are
// rendered as typed, with whole numbers keeping a trailing ".0" so that
// 30 and 30.0 share a directory.
func ExperimentDirName(alphaDeg, thetaDeg float64) string {
	return fmt.Sprintf("alpha_%s_theta_%s", formatAngle(alphaDeg), formatAngle(thetaDeg))
}

func formatAngle(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

// vertexLine formats one OBJ vertex with six decimals
func vertexLine(v core.Vec3) string {
	return fmt.Sprintf("v %.6f %.6f %.6f", v.X, v.Y, v.Z)
}
