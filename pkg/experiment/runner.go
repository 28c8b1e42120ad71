// Package experiment drives projection runs from configuration to files on
// disk, one angle pair at a time or over a grid.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/df07/go-surface-projector/pkg/config"
	"github.com/df07/go-surface-projector/pkg/core"
	"github.com/df07/go-surface-projector/pkg/direction"
	"github.com/df07/go-surface-projector/pkg/export"
	"github.com/df07/go-surface-projector/pkg/geometry"
	"github.com/df07/go-surface-projector/pkg/loaders"
	"github.com/df07/go-surface-projector/pkg/projection"
)

var (
	// ErrSourceOutside is returned by validation when a source point is not enclosed by the target
	ErrSourceOutside = errors.New("source points lie outside the target surface")
	// ErrNoSourcePoints is returned when the point file holds no vertices
	ErrNoSourcePoints = errors.New("no source points")
)

// Outcome is what one run produced
type Outcome struct {
	Record    *projection.ExperimentRecord
	OutputDir string
	Files     []string // Files written, in write order
}

// Runner executes experiments. It holds no per-run state, so one Runner can
// serve concurrent runs.
type Runner struct {
	logger   core.Logger
	now      func() time.Time
	newRunID func() string
}

// NewRunner creates a runner that reports progress to logger
func NewRunner(logger core.Logger) *Runner {
	if logger == nil {
		logger = core.NewDiscardLogger()
	}
	return &Runner{
		logger:   logger,
		now:      time.Now,
		newRunID: func() string { return uuid.New().String() },
	}
}

// scene is the loaded input of one run, in the frame rays are cast in
type scene struct {
	target      *geometry.TriangleMesh
	points      []projection.SourcePoint
	translation *core.Vec3
}

// Run executes one experiment and writes its files. Input files are checked
// before any geometry is loaded and no output is written until the record is
// assembled.
func (r *Runner) Run(ctx context.Context, cfg config.RunConfig) (*Outcome, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}

	r.logger.Printf("--- Ray projection: %s -> %s, alpha=%g, theta=%g ---\n",
		cfg.Source, cfg.Target, cfg.Angles.AlphaDeg, cfg.Angles.ThetaDeg)

	inputs, err := cfg.ResolveInputs()
	if err != nil {
		return nil, err
	}

	sc, err := r.loadScene(inputs)
	if err != nil {
		return nil, err
	}

	if cfg.Variant == config.VariantScene {
		if err := r.prepareScene(cfg, sc); err != nil {
			return nil, err
		}
	}

	solver := direction.NewSolver(cfg.Convention.Basis())
	sense := cfg.RaySense()
	rayDir := sense.Apply(solver.DirectionFor(cfg.Angles))
	r.logger.Printf("Convention %s, %s, ray direction (%.6f, %.6f, %.6f)\n",
		cfg.Convention, sense, rayDir.X, rayDir.Y, rayDir.Z)

	engine := projection.NewEngine(projection.EngineConfig{NumWorkers: cfg.Workers}, r.logger)
	results, err := engine.Intersect(ctx, sc.target, sc.points, rayDir)
	if err != nil {
		return nil, err
	}

	record := projection.Assemble(cfg.Angles, rayDir, results, projection.Provenance{
		Timestamp: r.now(),
		RunID:     r.newRunID(),
		InputFiles: projection.InputFiles{
			SkinMesh:     inputs.SkinMesh,
			KeyPoints:    inputs.KeyPoints,
			PointMapping: inputs.PointMapping,
		},
		Convention:  cfg.Convention,
		Sense:       sense,
		Variant:     string(cfg.Variant),
		Translation: sc.translation,
	})

	outDir := filepath.Join(cfg.ResultsBase(), export.ExperimentDirName(cfg.Angles.AlphaDeg, cfg.Angles.ThetaDeg))
	files, err := r.save(outDir, record, cfg.Variant, sc.target)
	if err != nil {
		return nil, err
	}

	r.logger.Printf("%d of %d rays hit, results in %s\n",
		record.Summary.RaysThatHit, record.Summary.TotalSourcePoints, outDir)

	return &Outcome{Record: record, OutputDir: outDir, Files: files}, nil
}

// loadScene reads the target surface, the source points and their names
func (r *Runner) loadScene(inputs config.Inputs) (*scene, error) {
	r.logger.Printf("Loading target surface: %s\n", inputs.SkinMesh)
	target, err := loaders.LoadSurface(inputs.SkinMesh)
	if err != nil {
		return nil, fmt.Errorf("failed to load target surface: %w", err)
	}

	if inputs.ModelAsKeyPoint {
		r.logger.Printf("No processed keypoints, using source model vertices: %s\n", inputs.KeyPoints)
	} else {
		r.logger.Printf("Loading source points: %s\n", inputs.KeyPoints)
	}
	coords, err := loaders.LoadPoints(inputs.KeyPoints)
	if err != nil {
		return nil, fmt.Errorf("failed to load source points: %w", err)
	}
	if len(coords) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSourcePoints, inputs.KeyPoints)
	}
	r.logger.Printf("Loaded %d source points\n", len(coords))

	var names []string
	if inputs.PointMapping != "" {
		names, err = loaders.LoadNameMapping(inputs.PointMapping)
		if err != nil {
			r.logger.Printf("Warning: ignoring name mapping %s: %v\n", inputs.PointMapping, err)
			names = nil
		}
	}

	points, named := projection.NewSourcePoints(coords, names)
	if len(names) > 0 && !named {
		r.logger.Printf("Warning: mapping has %d names for %d points, using generated names\n", len(names), len(coords))
	}

	return &scene{target: target, points: points}, nil
}

// prepareScene recenters the scene on the target and optionally checks that
// every source point lies inside it
func (r *Runner) prepareScene(cfg config.RunConfig, sc *scene) error {
	target, points, offset := projection.Normalize(sc.target, sc.points)
	sc.target = target
	sc.points = points
	sc.translation = &offset
	r.logger.Printf("Scene recentered by (%.6f, %.6f, %.6f)\n", offset.X, offset.Y, offset.Z)

	if !cfg.Validate {
		return nil
	}

	inside := target.CountContained(projection.Coords(points))
	if inside < len(points) {
		return fmt.Errorf("%w: %d of %d points are inside", ErrSourceOutside, inside, len(points))
	}
	r.logger.Printf("Validation passed: all %d source points are inside the target\n", len(points))
	return nil
}

// save writes the record and its companion files into outDir. The record goes
// first since it creates outDir only after encoding.
func (r *Runner) save(outDir string, record *projection.ExperimentRecord, variant config.Variant, target *geometry.TriangleMesh) ([]string, error) {
	var files []string
	path, err := export.WriteRecord(outDir, record)
	if err != nil {
		return nil, err
	}
	files = append(files, path)

	writers := []func(string, *projection.ExperimentRecord) (string, error){
		export.WriteIntersectionsOBJ,
		export.WriteRayPairsOBJ,
	}
	if variant == config.VariantScene {
		writers = append(writers, export.WriteIntersectionsPLY)
	}
	for _, write := range writers {
		path, err := write(outDir, record)
		if err != nil {
			return nil, err
		}
		if path != "" {
			files = append(files, path)
		}
	}

	if variant == config.VariantScene {
		path, err := export.WriteSurfaceSTL(outDir, target)
		if err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	for _, f := range files {
		r.logger.Printf("  - saved %s\n", f)
	}
	return files, nil
}
