// Package config resolves the on-disk layout of organ models and holds the
// parameters of one projection run.
package config

import (
	"os"
	"path/filepath"
)

// Paths lists the files the tool knows about for one organ
type Paths struct {
	Organ              string
	RawDir             string
	RawModel           string
	ProcessedDir       string
	ProcessedModel     string
	ProcessedKeypoints string
	KeypointsMapping   string
}

// OrganPaths returns the standard layout for organ under base:
//
//	<base>/data/<organ>/<organ>_raw.obj
//	<base>/output/processed_data/<organ>/<organ>_processed.obj
//	<base>/output/processed_data/<organ>/keypoints_processed.obj
//	<base>/output/processed_data/<organ>/keypoints_mapping.json
func OrganPaths(base, organ string) Paths {
	rawDir := filepath.Join(base, "data", organ)
	processedDir := filepath.Join(ProcessedDataDir(base), organ)

	return Paths{
		Organ:              organ,
		RawDir:             rawDir,
		RawModel:           filepath.Join(rawDir, organ+"_raw.obj"),
		ProcessedDir:       processedDir,
		ProcessedModel:     filepath.Join(processedDir, organ+"_processed.obj"),
		ProcessedKeypoints: filepath.Join(processedDir, "keypoints_processed.obj"),
		KeypointsMapping:   filepath.Join(processedDir, "keypoints_mapping.json"),
	}
}

// ProcessedDataDir returns <base>/output/processed_data
func ProcessedDataDir(base string) string {
	return filepath.Join(base, "output", "processed_data")
}

// ResultsDir returns <base>/output/results
func ResultsDir(base string) string {
	return filepath.Join(base, "output", "results")
}

// fileExists reports whether path names an existing regular file
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
