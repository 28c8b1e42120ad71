package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/df07/go-surface-projector/pkg/direction"
)

// ErrMissingInput is returned when a required input file does not exist
var ErrMissingInput = errors.New("missing input file")

const (
	DefaultTarget   = "skin"
	DefaultAlphaDeg = 30.0
	DefaultThetaDeg = 0.0
)

// Variant selects how a run treats its inputs
type Variant string

const (
	// VariantKeypoints casts from named keypoints in the stored frame
	VariantKeypoints Variant = "keypoints"
	// VariantScene recenters the scene on the target and casts back toward the skin
	VariantScene Variant = "scene"
)

// ParseVariant converts a variant name
func ParseVariant(name string) (Variant, error) {
	switch Variant(name) {
	case VariantKeypoints, VariantScene:
		return Variant(name), nil
	default:
		return "", fmt.Errorf("unknown variant %q (expected %q or %q)", name, VariantKeypoints, VariantScene)
	}
}

// DefaultSense returns the ray sense a variant uses unless overridden
func (v Variant) DefaultSense() direction.RaySense {
	if v == VariantScene {
		return direction.InwardFromSurface
	}
	return direction.OutwardFromSource
}

// RunConfig holds everything one experiment needs. It is built once and
// passed down unchanged.
type RunConfig struct {
	BaseDir    string              // Root holding data/ and output/
	Source     string              // Organ whose points emit rays
	Target     string              // Organ whose surface is hit
	Angles     direction.AnglePair // Tilt and azimuth in degrees
	Variant    Variant
	Convention direction.Convention
	Sense      *direction.RaySense // nil uses the variant default
	Workers    int                 // Ray workers (1 = sequential, 0 = CPU count)
	Validate   bool                // Abort when a source point lies outside the target (scene variant)
	OutputDir  string              // Overrides <base>/output/results/<source>_to_<target>
}

// DefaultRunConfig returns a configuration with the standard defaults. Source
// must still be set.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		BaseDir:    ".",
		Target:     DefaultTarget,
		Angles:     direction.AnglePair{AlphaDeg: DefaultAlphaDeg, ThetaDeg: DefaultThetaDeg},
		Variant:    VariantKeypoints,
		Convention: direction.DefaultConvention,
		Workers:    1,
		Validate:   true,
	}
}

// Check reports configuration mistakes that make a run impossible
func (c RunConfig) Check() error {
	if c.Source == "" {
		return fmt.Errorf("source organ is required")
	}
	if c.Target == "" {
		return fmt.Errorf("target organ is required")
	}
	if _, err := ParseVariant(string(c.Variant)); err != nil {
		return err
	}
	if _, err := direction.ParseConvention(string(c.Convention)); err != nil {
		return err
	}
	if !isFinite(c.Angles.AlphaDeg) || !isFinite(c.Angles.ThetaDeg) {
		return fmt.Errorf("angles must be finite, got alpha=%g theta=%g", c.Angles.AlphaDeg, c.Angles.ThetaDeg)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// RaySense returns the explicit sense or the variant default
func (c RunConfig) RaySense() direction.RaySense {
	if c.Sense != nil {
		return *c.Sense
	}
	return c.Variant.DefaultSense()
}

// WithAngles returns a copy of c for another angle pair
func (c RunConfig) WithAngles(angles direction.AnglePair) RunConfig {
	c.Angles = angles
	return c
}

// ResultsBase returns the directory that holds one subdirectory per angle pair
func (c RunConfig) ResultsBase() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return filepath.Join(ResultsDir(c.BaseDir), fmt.Sprintf("%s_to_%s", c.Source, c.Target))
}

// Inputs are the resolved files of one run
type Inputs struct {
	SkinMesh        string // Target surface
	KeyPoints       string // Source points
	PointMapping    string // Empty when no mapping file exists
	ModelAsKeyPoint bool   // KeyPoints is the source model, not extracted keypoints
}

// ResolveInputs locates the run's files. The target is its processed model,
// or the raw model when nothing has been processed. The source points are
// the extracted keypoints, or the processed source model's vertices when no
// keypoints exist. Missing files give ErrMissingInput.
func (c RunConfig) ResolveInputs() (Inputs, error) {
	source := OrganPaths(c.BaseDir, c.Source)
	target := OrganPaths(c.BaseDir, c.Target)

	var in Inputs
	switch {
	case fileExists(target.ProcessedModel):
		in.SkinMesh = target.ProcessedModel
	case fileExists(target.RawModel):
		in.SkinMesh = target.RawModel
	default:
		return Inputs{}, fmt.Errorf("%w: target model %s", ErrMissingInput, target.ProcessedModel)
	}

	switch {
	case fileExists(source.ProcessedKeypoints):
		in.KeyPoints = source.ProcessedKeypoints
	case fileExists(source.ProcessedModel):
		in.KeyPoints = source.ProcessedModel
		in.ModelAsKeyPoint = true
	default:
		return Inputs{}, fmt.Errorf("%w: source points %s", ErrMissingInput, source.ProcessedKeypoints)
	}

	if !in.ModelAsKeyPoint && fileExists(source.KeypointsMapping) {
		in.PointMapping = source.KeypointsMapping
	}
	return in, nil
}
