package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-surface-projector/pkg/config"
	"github.com/df07/go-surface-projector/pkg/core"
	"github.com/df07/go-surface-projector/pkg/direction"
	"github.com/df07/go-surface-projector/pkg/export"
	"github.com/df07/go-surface-projector/pkg/loaders"
	"github.com/df07/go-surface-projector/pkg/projection"
)

var testKeypoints = []core.Vec3{
	core.NewVec3(5.3, 4.1, 5.2),
	core.NewVec3(6.2, 5.7, 4.4),
	core.NewVec3(3.9, 6.6, 5.5),
}

// writeCubeOBJ writes a closed cube between min and max
func writeCubeOBJ(t *testing.T, path string, min, max float64) {
	t.Helper()
	var sb strings.Builder
	for _, c := range [][3]float64{
		{min, min, min}, {max, min, min}, {max, max, min}, {min, max, min},
		{min, min, max}, {max, min, max}, {max, max, max}, {min, max, max},
	} {
		fmt.Fprintf(&sb, "v %g %g %g\n", c[0], c[1], c[2])
	}
	sb.WriteString("f 1 3 2\nf 1 4 3\nf 5 6 7\nf 5 7 8\nf 1 2 6\nf 1 6 5\nf 4 8 7\nf 4 7 3\nf 1 5 8\nf 1 8 4\nf 2 3 7\nf 2 7 6\n")
	writeFile(t, path, sb.String())
}

func writePointsOBJ(t *testing.T, path string, points []core.Vec3) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("# keypoints\n")
	for _, p := range points {
		fmt.Fprintf(&sb, "v %g %g %g\n", p.X, p.Y, p.Z)
	}
	writeFile(t, path, sb.String())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// newFixture lays out a skin cube from -5 to 15 and three heart keypoints
func newFixture(t *testing.T, mapping string) config.RunConfig {
	t.Helper()
	base := t.TempDir()
	writeCubeOBJ(t, config.OrganPaths(base, "skin").ProcessedModel, -5, 15)

	heart := config.OrganPaths(base, "heart")
	writePointsOBJ(t, heart.ProcessedKeypoints, testKeypoints)
	if mapping != "" {
		writeFile(t, heart.KeypointsMapping, mapping)
	}

	cfg := config.DefaultRunConfig()
	cfg.BaseDir = base
	cfg.Source = "heart"
	cfg.Angles = direction.AnglePair{AlphaDeg: 0, ThetaDeg: 0}
	return cfg
}

func newTestRunner() *Runner {
	r := NewRunner(nil)
	r.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	r.newRunID = func() string { return "test-run" }
	return r
}

func TestRun_Keypoints(t *testing.T) {
	cfg := newFixture(t, `{"Centroid": 1, "X_max": 2, "Y_max": 3}`)

	outcome, err := newTestRunner().Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expectedDir := filepath.Join(cfg.BaseDir, "output", "results", "heart_to_skin", "alpha_0.0_theta_0.0")
	if outcome.OutputDir != expectedDir {
		t.Errorf("Expected output dir %s, got %s", expectedDir, outcome.OutputDir)
	}
	if len(outcome.Files) != 3 {
		t.Errorf("Expected record and two OBJ files, got %v", outcome.Files)
	}
	for _, name := range []string{export.RecordFileName, export.IntersectionsFileName, export.RayPairsFileName} {
		if _, err := os.Stat(filepath.Join(expectedDir, name)); err != nil {
			t.Errorf("Missing %s: %v", name, err)
		}
	}

	record := outcome.Record
	if record.Summary.RaysThatHit != 3 || record.Summary.TotalSourcePoints != 3 {
		t.Errorf("Unexpected summary %+v", record.Summary)
	}
	if record.Provenance.Sense != direction.OutwardFromSource || record.Provenance.Translation != nil {
		t.Errorf("Unexpected provenance %+v", record.Provenance)
	}

	names := []string{"Centroid", "X_max", "Y_max"}
	for i, r := range record.Results {
		if r.SourceName != names[i] {
			t.Errorf("Point %d: expected name %s, got %s", i, names[i], r.SourceName)
		}
		// Frontal base axis is +Z, the cube's +Z wall is at 15
		expected := 15 - testKeypoints[i].Z
		if !r.Hit || math.Abs(*r.Distance-expected) > 1e-9 {
			t.Errorf("Point %d: expected distance %f, got %+v", i, expected, r)
		}
	}
}

func TestRun_Scene(t *testing.T) {
	cfg := newFixture(t, "")
	cfg.Variant = config.VariantScene

	outcome, err := newTestRunner().Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	record := outcome.Record
	if record.Provenance.Translation == nil || record.Provenance.Translation.Subtract(core.NewVec3(-5, -5, -5)).Length() > 1e-12 {
		t.Errorf("Expected translation (-5,-5,-5), got %v", record.Provenance.Translation)
	}
	if record.Provenance.Sense != direction.InwardFromSurface {
		t.Errorf("Expected inward sense, got %v", record.Provenance.Sense)
	}
	if record.Direction.Subtract(core.NewVec3(0, 0, -1)).Length() > 1e-12 {
		t.Errorf("Expected rays cast along -Z, got %v", record.Direction)
	}

	for i, r := range record.Results {
		if r.SourceName != projection.SyntheticName(i) {
			t.Errorf("Expected generated name, got %s", r.SourceName)
		}
		// Recentered cube spans -10..10; points moved by -5
		expected := testKeypoints[i].Z - 5 + 10
		if !r.Hit || math.Abs(*r.Distance-expected) > 1e-9 {
			t.Errorf("Point %d: expected distance %f, got %+v", i, expected, r)
		}
		if math.Abs(r.IntersectionCoord.Z+10) > 1e-9 {
			t.Errorf("Point %d: expected hit on z=-10, got %v", i, *r.IntersectionCoord)
		}
	}

	if _, err := os.Stat(filepath.Join(outcome.OutputDir, export.SurfaceFileName)); err != nil {
		t.Errorf("Expected STL of the working-frame surface: %v", err)
	}

	cloud, err := loaders.LoadPLY(filepath.Join(outcome.OutputDir, export.IntersectionsPLYFileName))
	if err != nil {
		t.Fatalf("Expected intersection point cloud: %v", err)
	}
	if len(cloud.Vertices) != len(record.Results) {
		t.Fatalf("Expected %d points in cloud, got %d", len(record.Results), len(cloud.Vertices))
	}
	for i, v := range cloud.Vertices {
		if v.Subtract(*record.Results[i].IntersectionCoord).Length() > 1e-12 {
			t.Errorf("Cloud point %d: expected %v, got %v", i, *record.Results[i].IntersectionCoord, v)
		}
	}
}

func TestRun_ValidationRejectsOutsidePoints(t *testing.T) {
	cfg := newFixture(t, "")
	writePointsOBJ(t, config.OrganPaths(cfg.BaseDir, "heart").ProcessedKeypoints,
		append(append([]core.Vec3{}, testKeypoints...), core.NewVec3(25.3, 4.1, 5.2)))
	cfg.Variant = config.VariantScene

	_, err := newTestRunner().Run(context.Background(), cfg)
	if !errors.Is(err, ErrSourceOutside) {
		t.Fatalf("Expected ErrSourceOutside, got %v", err)
	}
	if _, err := os.Stat(cfg.ResultsBase()); !os.IsNotExist(err) {
		t.Error("Expected no output after failed validation")
	}

	cfg.Validate = false
	outcome, err := newTestRunner().Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Expected the run to proceed without validation, got %v", err)
	}
	if outcome.Record.Summary.TotalSourcePoints != 4 {
		t.Errorf("Expected 4 source points, got %d", outcome.Record.Summary.TotalSourcePoints)
	}
}

func TestRun_NonFiniteAngleWritesNothing(t *testing.T) {
	cfg := newFixture(t, "")
	cfg.Angles.AlphaDeg = math.NaN()

	if _, err := newTestRunner().Run(context.Background(), cfg); err == nil {
		t.Fatal("Expected an error for a NaN tilt")
	}
	if _, err := os.Stat(cfg.ResultsBase()); !os.IsNotExist(err) {
		t.Error("Expected no output directory for a rejected angle")
	}
}

func TestRun_MissingInput(t *testing.T) {
	cfg := config.DefaultRunConfig()
	cfg.BaseDir = t.TempDir()
	cfg.Source = "heart"

	_, err := newTestRunner().Run(context.Background(), cfg)
	if !errors.Is(err, config.ErrMissingInput) {
		t.Fatalf("Expected ErrMissingInput, got %v", err)
	}
	if _, err := os.Stat(cfg.ResultsBase()); !os.IsNotExist(err) {
		t.Error("Expected no output for missing input")
	}
}

func TestRun_MappingMismatchUsesGeneratedNames(t *testing.T) {
	cfg := newFixture(t, `{"only": 1}`)

	outcome, err := newTestRunner().Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i, r := range outcome.Record.Results {
		if r.SourceName != fmt.Sprintf("Point_%d", i+1) {
			t.Errorf("Expected Point_%d, got %s", i+1, r.SourceName)
		}
	}
}

func TestRun_MissesWriteOnlyRecord(t *testing.T) {
	cfg := newFixture(t, "")
	// Surface is a single triangle far to the side of every ray
	writeFile(t, config.OrganPaths(cfg.BaseDir, "skin").ProcessedModel, "v 100 0 0\nv 101 0 0\nv 100 1 0\nf 1 2 3\n")

	outcome, err := newTestRunner().Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome.Record.Summary.RaysThatHit != 0 {
		t.Errorf("Expected no hits, got %d", outcome.Record.Summary.RaysThatHit)
	}
	if len(outcome.Files) != 1 {
		t.Errorf("Expected only the record, got %v", outcome.Files)
	}
}

func TestRun_Deterministic(t *testing.T) {
	cfg := newFixture(t, "")
	cfg.Angles = direction.AnglePair{AlphaDeg: 20, ThetaDeg: 135}
	runner := newTestRunner()

	first, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	firstJSON, err := os.ReadFile(filepath.Join(first.OutputDir, export.RecordFileName))
	if err != nil {
		t.Fatalf("Failed to read record: %v", err)
	}

	cfg.OutputDir = filepath.Join(cfg.BaseDir, "second")
	cfg.Workers = 3
	second, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	secondJSON, err := os.ReadFile(filepath.Join(second.OutputDir, export.RecordFileName))
	if err != nil {
		t.Fatalf("Failed to read record: %v", err)
	}

	if string(firstJSON) != string(secondJSON) {
		t.Errorf("Records differ:\n%s\n%s", firstJSON, secondJSON)
	}
}
