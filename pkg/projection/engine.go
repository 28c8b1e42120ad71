package projection

import (
	"context"
	"errors"
	"fmt"

	"github.com/df07/go-surface-projector/pkg/core"
	"github.com/df07/go-surface-projector/pkg/geometry"
)

// ErrEmptySurface is returned when the target has no faces to intersect
var ErrEmptySurface = errors.New("target surface has no faces")

// RayCaster is the bulk ray primitive the engine relies on. Candidates may be
// reported in any order; RayIndex ties each one to its origin.
type RayCaster interface {
	IntersectBatch(ctx context.Context, origins []core.Vec3, direction core.Vec3, numWorkers int) ([]geometry.RayHit, error)
	IsEmpty() bool
}

var _ RayCaster = (*geometry.TriangleMesh)(nil)

// EngineConfig contains configuration for the intersection engine
type EngineConfig struct {
	NumWorkers int // Parallel ray workers (1 = sequential, 0 = use CPU count)
}

// DefaultEngineConfig returns the sequential configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{NumWorkers: 1}
}

// Engine finds the nearest surface crossing for every source point
type Engine struct {
	config EngineConfig
	logger core.Logger
}

// NewEngine creates an engine
func NewEngine(config EngineConfig, logger core.Logger) *Engine {
	if logger == nil {
		logger = core.NewDiscardLogger()
	}
	return &Engine{config: config, logger: logger}
}

// Intersect casts one ray per point along rayDir and returns one result per
// point in input order. The nearest candidate by Euclidean distance wins; on
// an exact tie the first reported candidate is kept.
func (e *Engine) Intersect(ctx context.Context, target RayCaster, points []SourcePoint, rayDir core.Vec3) ([]IntersectionResult, error) {
	if target == nil || target.IsEmpty() {
		return nil, ErrEmptySurface
	}

	candidates, err := target.IntersectBatch(ctx, Coords(points), rayDir, e.config.NumWorkers)
	if err != nil {
		return nil, fmt.Errorf("ray casting failed: %w", err)
	}

	// Attribute by reported ray index, never by position in the candidate list
	hitMap := make([][]geometry.RayHit, len(points))
	for _, c := range candidates {
		if c.RayIndex < 0 || c.RayIndex >= len(points) {
			return nil, fmt.Errorf("ray caster reported unknown ray index %d for %d points", c.RayIndex, len(points))
		}
		hitMap[c.RayIndex] = append(hitMap[c.RayIndex], c)
	}

	results := make([]IntersectionResult, len(points))
	hits := 0
	for i, p := range points {
		results[i] = nearestResult(p, hitMap[i])
		if results[i].Hit {
			hits++
		}
	}

	e.logger.Printf("Cast %d rays along (%.4f, %.4f, %.4f): %d hit, %d candidates\n",
		len(points), rayDir.X, rayDir.Y, rayDir.Z, hits, len(candidates))

	return results, nil
}

// nearestResult picks the closest candidate for one point
func nearestResult(p SourcePoint, candidates []geometry.RayHit) IntersectionResult {
	result := missResult(p)
	if len(candidates) == 0 {
		return result
	}

	best := 0
	bestDistance := p.Coord.DistanceTo(candidates[0].Location)
	for i := 1; i < len(candidates); i++ {
		if d := p.Coord.DistanceTo(candidates[i].Location); d < bestDistance {
			best = i
			bestDistance = d
		}
	}

	location := candidates[best].Location
	faceID := candidates[best].FaceID
	result.Hit = true
	result.IntersectionCoord = &location
	result.FaceID = &faceID
	result.Distance = &bestDistance
	return result
}
