package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/df07/go-surface-projector/pkg/keypoints"
	"github.com/df07/go-surface-projector/pkg/loaders"
)

func main() {
	mappingPath := flag.String("mapping", "", "Name mapping output (default: keypoints_mapping.json next to the output)")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help || flag.NArg() != 2 {
		fmt.Println("Keypoint Extractor")
		fmt.Println("Usage: keypoints [options] <mesh.obj|mesh.ply> <output.obj>")
		fmt.Println()
		fmt.Println("Extracts the centroid and the X/Y/Z minimum and maximum vertices of a mesh.")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	meshPath := flag.Arg(0)
	outputPath := flag.Arg(1)

	if _, err := os.Stat(meshPath); err != nil {
		fmt.Printf("Error: input file does not exist: %s\n", meshPath)
		return
	}

	fmt.Println("--- Extracting keypoints ---")
	fmt.Printf("Loading mesh: %s\n", meshPath)
	mesh, err := loaders.LoadMesh(meshPath)
	if err != nil {
		fmt.Printf("Error loading mesh: %v\n", err)
		return
	}
	fmt.Printf("Mesh vertices: %d\n", len(mesh.Vertices))

	points, err := keypoints.Extract(mesh)
	if err != nil {
		fmt.Printf("Error extracting keypoints: %v\n", err)
		return
	}
	for i, p := range points {
		fmt.Printf("%s (point %d): (%.6f, %.6f, %.6f)\n", p.Name, i+1, p.Coord.X, p.Coord.Y, p.Coord.Z)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
		return
	}
	if err := keypoints.WriteOBJ(outputPath, meshPath, points); err != nil {
		fmt.Printf("Error saving keypoints: %v\n", err)
		return
	}
	fmt.Printf("Keypoints saved to: %s\n", outputPath)

	if *mappingPath == "" {
		*mappingPath = keypoints.MappingPath(outputPath)
	}
	if err := keypoints.WriteMapping(*mappingPath, points); err != nil {
		fmt.Printf("Error saving name mapping: %v\n", err)
		return
	}
	fmt.Printf("Name mapping saved to: %s\n", *mappingPath)

	fmt.Printf("\nDone. Extracted %d keypoints.\n", len(points))
}
