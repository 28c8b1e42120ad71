package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/df07/go-surface-projector/pkg/projection"
)

// WriteIntersectionsOBJ writes one vertex per hit, annotated with the source
// name and face id. Nothing is written when the record has no hits; the
// returned path is then empty.
func WriteIntersectionsOBJ(dir string, record *projection.ExperimentRecord) (string, error) {
	hits := record.Hits()
	if len(hits) == 0 {
		return "", nil
	}

	path := filepath.Join(dir, IntersectionsFileName)
	err := writeLines(path, func(w *bufio.Writer) {
		fmt.Fprintf(w, "# Ray intersections from alpha=%s, theta=%s\n",
			formatAngle(record.Angles.AlphaDeg), formatAngle(record.Angles.ThetaDeg))
		for _, r := range hits {
			fmt.Fprintf(w, "%s # name: %s, face_id: %d\n", vertexLine(*r.IntersectionCoord), r.SourceName, *r.FaceID)
		}
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// WriteRayPairsOBJ writes each hit as a source vertex, a target vertex and
// the line joining them. Nothing is written when the record has no hits.
func WriteRayPairsOBJ(dir string, record *projection.ExperimentRecord) (string, error) {
	hits := record.Hits()
	if len(hits) == 0 {
		return "", nil
	}

	path := filepath.Join(dir, RayPairsFileName)
	err := writeLines(path, func(w *bufio.Writer) {
		fmt.Fprintf(w, "# Source to intersection pairs from alpha=%s, theta=%s\n",
			formatAngle(record.Angles.AlphaDeg), formatAngle(record.Angles.ThetaDeg))
		vertex := 1 // OBJ indices start at 1
		for _, r := range hits {
			fmt.Fprintf(w, "# Pair for: %s\n", r.SourceName)
			fmt.Fprintf(w, "%s # Source\n", vertexLine(r.SourceCoord))
			fmt.Fprintf(w, "%s # Target\n", vertexLine(*r.IntersectionCoord))
			fmt.Fprintf(w, "l %d %d\n", vertex, vertex+1)
			vertex += 2
		}
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// writeLines creates path and hands a buffered writer to fill
func writeLines(path string, fill func(w *bufio.Writer)) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fill(w)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
