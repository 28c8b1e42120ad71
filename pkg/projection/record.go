package projection

import (
	"github.com/df07/go-surface-projector/pkg/core"
	"github.com/df07/go-surface-projector/pkg/direction"
)

// Assemble builds the record for one run. The results are copied, the summary
// is derived from them and theta is reported in [0, 360). No geometry is
// recomputed, so identical inputs give identical records apart from the
// provenance timestamp and run id.
func Assemble(angles direction.AnglePair, rayDir core.Vec3, results []IntersectionResult, provenance Provenance) *ExperimentRecord {
	copied := make([]IntersectionResult, len(results))
	hits := 0
	for i, r := range results {
		copied[i] = copyResult(r)
		if r.Hit {
			hits++
		}
	}

	if provenance.Translation != nil {
		t := *provenance.Translation
		provenance.Translation = &t
	}

	return &ExperimentRecord{
		Angles: direction.AnglePair{
			AlphaDeg: angles.AlphaDeg,
			ThetaDeg: angles.NormalizedTheta(),
		},
		Direction: rayDir,
		Results:   copied,
		Summary: Summary{
			TotalSourcePoints: len(copied),
			RaysThatHit:       hits,
		},
		Provenance: provenance,
	}
}

// copyResult detaches the optional fields so later edits to the input cannot reach the record
func copyResult(r IntersectionResult) IntersectionResult {
	out := r
	if r.IntersectionCoord != nil {
		v := *r.IntersectionCoord
		out.IntersectionCoord = &v
	}
	if r.FaceID != nil {
		v := *r.FaceID
		out.FaceID = &v
	}
	if r.Distance != nil {
		v := *r.Distance
		out.Distance = &v
	}
	return out
}
