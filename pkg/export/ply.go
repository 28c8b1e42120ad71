package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"path/filepath"

	"github.com/df07/go-surface-projector/pkg/projection"
)

// WriteIntersectionsPLY writes the hit points as a binary little-endian point
// cloud with double precision coordinates, in record order. Nothing is written
// when the record has no hits; the returned path is then empty.
func WriteIntersectionsPLY(dir string, record *projection.ExperimentRecord) (string, error) {
	hits := record.Hits()
	if len(hits) == 0 {
		return "", nil
	}

	path := filepath.Join(dir, IntersectionsPLYFileName)
	var writeErr error
	err := writeLines(path, func(w *bufio.Writer) {
		fmt.Fprintf(w, "ply\nformat binary_little_endian 1.0\n")
		fmt.Fprintf(w, "comment intersections from alpha=%s, theta=%s\n",
			formatAngle(record.Angles.AlphaDeg), formatAngle(record.Angles.ThetaDeg))
		fmt.Fprintf(w, "element vertex %d\n", len(hits))
		fmt.Fprintf(w, "property double x\nproperty double y\nproperty double z\nend_header\n")
		for _, r := range hits {
			p := *r.IntersectionCoord
			if writeErr == nil {
				writeErr = binary.Write(w, binary.LittleEndian, [3]float64{p.X, p.Y, p.Z})
			}
		}
	})
	if err == nil && writeErr != nil {
		err = fmt.Errorf("failed to write %s: %w", path, writeErr)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}
