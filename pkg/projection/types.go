package projection

import (
	"fmt"
	"time"

	"github.com/df07/go-surface-projector/pkg/core"
	"github.com/df07/go-surface-projector/pkg/direction"
)

// SourcePoint is one ray origin. Index is its position in the input order and
// is its identity; Name is for people.
type SourcePoint struct {
	Index int
	Name  string
	Coord core.Vec3
}

// NewSourcePoints pairs ordered coordinates with names. Names are used only
// when there is exactly one per point; otherwise every point is called
// Point_<i> (1-indexed). The second return value reports whether the
// supplied names were used.
func NewSourcePoints(coords []core.Vec3, names []string) ([]SourcePoint, bool) {
	useNames := len(names) == len(coords) && len(names) > 0

	points := make([]SourcePoint, len(coords))
	for i, c := range coords {
		name := SyntheticName(i)
		if useNames {
			name = names[i]
		}
		points[i] = SourcePoint{Index: i, Name: name, Coord: c}
	}
	return points, useNames
}

// SyntheticName returns the fallback name for the point at 0-based index i
func SyntheticName(i int) string {
	return fmt.Sprintf("Point_%d", i+1)
}

// Coords returns the point coordinates in order
func Coords(points []SourcePoint) []core.Vec3 {
	out := make([]core.Vec3, len(points))
	for i, p := range points {
		out[i] = p.Coord
	}
	return out
}

// IntersectionResult is the outcome for one source point. Hit is true exactly
// when IntersectionCoord, FaceID and Distance are set.
type IntersectionResult struct {
	SourceIndex       int
	SourceName        string
	SourceCoord       core.Vec3
	Hit               bool
	IntersectionCoord *core.Vec3
	FaceID            *int
	Distance          *float64
}

// missResult returns the result for a point whose ray found nothing
func missResult(p SourcePoint) IntersectionResult {
	return IntersectionResult{SourceIndex: p.Index, SourceName: p.Name, SourceCoord: p.Coord}
}

// InputFiles names the files an experiment read
type InputFiles struct {
	SkinMesh     string
	KeyPoints    string
	PointMapping string // empty when no mapping was used
}

// Provenance records where and when a record came from
type Provenance struct {
	Timestamp   time.Time
	RunID       string
	InputFiles  InputFiles
	Convention  direction.Convention
	Sense       direction.RaySense
	Variant     string
	Translation *core.Vec3 // set when the scene was recentered
}

// Summary holds the aggregate counts of a record
type Summary struct {
	TotalSourcePoints int
	RaysThatHit       int
}

// ExperimentRecord is the assembled outcome of one (source, target, alpha,
// theta) run. It is built once by Assemble and not modified afterwards.
type ExperimentRecord struct {
	Angles     direction.AnglePair // ThetaDeg already reduced to [0, 360)
	Direction  core.Vec3           // Direction the rays were cast in
	Results    []IntersectionResult
	Summary    Summary
	Provenance Provenance
}

// Hits returns the results that found an intersection, in source order
func (r *ExperimentRecord) Hits() []IntersectionResult {
	var hits []IntersectionResult
	for _, res := range r.Results {
		if res.Hit {
			hits = append(hits, res)
		}
	}
	return hits
}
