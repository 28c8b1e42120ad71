package export

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-surface-projector/pkg/core"
	"github.com/df07/go-surface-projector/pkg/direction"
	"github.com/df07/go-surface-projector/pkg/geometry"
	"github.com/df07/go-surface-projector/pkg/loaders"
	"github.com/df07/go-surface-projector/pkg/projection"
)

func testRecord(withHit bool) *projection.ExperimentRecord {
	results := []projection.IntersectionResult{
		{SourceIndex: 0, SourceName: "Centroid", SourceCoord: core.NewVec3(1, 2, 3)},
		{SourceIndex: 1, SourceName: "X_min", SourceCoord: core.NewVec3(0, 0, 0)},
	}
	if withHit {
		loc := core.NewVec3(1, 2, 8)
		face := 7
		dist := 5.0
		results[0].Hit = true
		results[0].IntersectionCoord = &loc
		results[0].FaceID = &face
		results[0].Distance = &dist
	}

	translation := core.NewVec3(-1, -2, -3)
	provenance := projection.Provenance{
		Timestamp: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		RunID:     "run-1",
		InputFiles: projection.InputFiles{
			SkinMesh:     "/data/skin/skin_processed.obj",
			KeyPoints:    "/data/heart/keypoints_processed.obj",
			PointMapping: "/data/heart/keypoints_mapping.json",
		},
		Convention:  direction.ConventionFrontal,
		Sense:       direction.InwardFromSurface,
		Variant:     "scene",
		Translation: &translation,
	}
	return projection.Assemble(direction.AnglePair{AlphaDeg: 30, ThetaDeg: 450}, core.NewVec3(0, 0, 1), results, provenance)
}

func TestMarshalRecord(t *testing.T) {
	data, err := MarshalRecord(testRecord(true))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if doc["timestamp"] != "2024-05-06T07:08:09Z" || doc["run_id"] != "run-1" {
		t.Errorf("Unexpected provenance: %v %v", doc["timestamp"], doc["run_id"])
	}

	params := doc["parameters"].(map[string]interface{})
	if params["alpha_deg"] != 30.0 || params["theta_deg"] != 90.0 {
		t.Errorf("Unexpected angles: %v", params)
	}
	if params["axis_convention"] != "frontal" || params["ray_sense"] != "inward-from-surface" || params["variant"] != "scene" {
		t.Errorf("Unexpected parameters: %v", params)
	}

	files := doc["input_files"].(map[string]interface{})
	if files["skin_mesh"] != "skin_processed.obj" || files["key_points"] != "keypoints_processed.obj" || files["point_mapping"] != "keypoints_mapping.json" {
		t.Errorf("Expected base names, got %v", files)
	}

	if _, ok := doc["scene_translation"]; !ok {
		t.Error("Expected scene_translation")
	}

	summary := doc["results_summary"].(map[string]interface{})
	if summary["total_source_points"] != 2.0 || summary["rays_that_hit"] != 1.0 {
		t.Errorf("Unexpected summary %v", summary)
	}

	entries := doc["intersections"].([]interface{})
	hit := entries[0].(map[string]interface{})
	if hit["hit"] != true || hit["face_id"] != 7.0 || hit["distance"] != 5.0 {
		t.Errorf("Unexpected hit entry %v", hit)
	}

	miss := entries[1].(map[string]interface{})
	for _, key := range []string{"intersection_coord", "face_id", "distance"} {
		value, ok := miss[key]
		if !ok || value != nil {
			t.Errorf("Expected %s to be null on a miss, got %v (present=%v)", key, value, ok)
		}
	}
	if miss["source_point_name"] != "X_min" || miss["source_point_index"] != 1.0 {
		t.Errorf("Unexpected miss identity %v", miss)
	}
}

func TestMarshalRecord_OptionalFieldsOmitted(t *testing.T) {
	record := projection.Assemble(direction.AnglePair{}, core.Vec3{}, nil, projection.Provenance{})
	data, err := MarshalRecord(record)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	text := string(data)
	if strings.Contains(text, "scene_translation") || strings.Contains(text, "point_mapping") {
		t.Errorf("Expected optional fields to be omitted:\n%s", text)
	}
	if !strings.Contains(text, `"intersections": []`) {
		t.Errorf("Expected an empty intersections list:\n%s", text)
	}
}

func TestWriteOBJFiles(t *testing.T) {
	dir := t.TempDir()
	record := testRecord(true)

	path, err := WriteIntersectionsOBJ(dir, record)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	if !strings.Contains(string(data), "v 1.000000 2.000000 8.000000 # name: Centroid, face_id: 7\n") {
		t.Errorf("Unexpected intersections file:\n%s", data)
	}

	path, err = WriteRayPairsOBJ(dir, record)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	expected := "# Pair for: Centroid\n" +
		"v 1.000000 2.000000 3.000000 # Source\n" +
		"v 1.000000 2.000000 8.000000 # Target\n" +
		"l 1 2\n"
	if !strings.Contains(string(data), expected) {
		t.Errorf("Unexpected ray pairs file:\n%s", data)
	}
}

func TestWriteOBJFiles_NoHits(t *testing.T) {
	dir := t.TempDir()
	record := testRecord(false)

	if path, err := WriteIntersectionsOBJ(dir, record); err != nil || path != "" {
		t.Errorf("Expected no intersections file, got %q (%v)", path, err)
	}
	if path, err := WriteRayPairsOBJ(dir, record); err != nil || path != "" {
		t.Errorf("Expected no ray pairs file, got %q (%v)", path, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected an empty directory, found %d entries", len(entries))
	}
}

func TestWriteRecord(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteRecord(dir, testRecord(true))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if path != filepath.Join(dir, RecordFileName) {
		t.Errorf("Unexpected path %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Record not written: %v", err)
	}
}

func TestWriteRecord_EncodeFailureCreatesNoDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "alpha_NaN_theta_0.0")
	record := testRecord(true)
	record.Angles.AlphaDeg = math.NaN()

	if _, err := WriteRecord(dir, record); err == nil {
		t.Fatal("Expected an encode error for a NaN angle")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("Expected %s not to exist", dir)
	}
}

func TestWriteIntersectionsPLY(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteIntersectionsPLY(dir, testRecord(true))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if path != filepath.Join(dir, IntersectionsPLYFileName) {
		t.Errorf("Unexpected path %s", path)
	}

	cloud, err := loaders.LoadPLY(path)
	if err != nil {
		t.Fatalf("Failed to reload %s: %v", path, err)
	}
	if len(cloud.Vertices) != 1 || len(cloud.Faces) != 0 {
		t.Fatalf("Expected a single point, got %d vertices and %d face indices", len(cloud.Vertices), len(cloud.Faces))
	}
	if cloud.Vertices[0] != core.NewVec3(1, 2, 8) {
		t.Errorf("Expected (1,2,8), got %v", cloud.Vertices[0])
	}

	if path, err := WriteIntersectionsPLY(t.TempDir(), testRecord(false)); err != nil || path != "" {
		t.Errorf("Expected no point cloud without hits, got %q (%v)", path, err)
	}
}

func TestExperimentDirName(t *testing.T) {
	tests := []struct {
		alpha, theta float64
		expected     string
	}{
		{30, 0, "alpha_30.0_theta_0.0"},
		{22.5, 90, "alpha_22.5_theta_90.0"},
		{-15, 450, "alpha_-15.0_theta_450.0"},
		{0.25, 1.5, "alpha_0.25_theta_1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := ExperimentDirName(tt.alpha, tt.theta); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestWriteSurfaceSTL(t *testing.T) {
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(1, 1, 0),
		core.NewVec3(0, 1, 0),
	}
	mesh := geometry.NewTriangleMesh(vertices, []int{0, 1, 2, 0, 2, 3})

	triangles := ToTriangles(mesh)
	if len(triangles) != 2 {
		t.Fatalf("Expected 2 triangles, got %d", len(triangles))
	}
	if triangles[1][2].X != 0 || triangles[1][2].Y != 1 {
		t.Errorf("Unexpected vertex %v", triangles[1][2])
	}

	dir := t.TempDir()
	path, err := WriteSurfaceSTL(dir, mesh)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("STL not written: %v", err)
	}
	// Binary STL: 80 byte header, triangle count, 50 bytes per triangle
	if info.Size() != 84+50*2 {
		t.Errorf("Unexpected STL size %d", info.Size())
	}

	if _, err := WriteSurfaceSTL(dir, geometry.NewTriangleMesh(nil, nil)); err == nil {
		t.Error("Expected error for empty surface")
	}
}
