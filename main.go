package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-surface-projector/pkg/config"
	"github.com/df07/go-surface-projector/pkg/core"
	"github.com/df07/go-surface-projector/pkg/direction"
	"github.com/df07/go-surface-projector/pkg/experiment"
)

// cliOptions holds the raw flag values before they are turned into a RunConfig
type cliOptions struct {
	source     string
	target     string
	alpha      float64
	theta      float64
	output     string
	base       string
	variant    string
	convention string
	sense      string
	workers    int
	validate   bool
}

func main() {
	// Parse command line flags
	var opts cliOptions
	flag.StringVar(&opts.source, "source", "", "Source organ whose points emit rays (required, e.g. 'heart', 'thyroid')")
	flag.StringVar(&opts.target, "target", config.DefaultTarget, "Target organ whose surface is hit")
	flag.Float64Var(&opts.alpha, "alpha", config.DefaultAlphaDeg, "Tilt angle from the base direction in degrees")
	flag.Float64Var(&opts.theta, "theta", config.DefaultThetaDeg, "Azimuth around the base direction in degrees (0 = up, 90 = left)")
	flag.StringVar(&opts.output, "output", "", "Results directory (default: <base>/output/results/<source>_to_<target>)")
	flag.StringVar(&opts.base, "base", ".", "Project directory holding data/ and output/")
	flag.StringVar(&opts.variant, "variant", string(config.VariantKeypoints), "Run variant: 'keypoints' or 'scene'")
	flag.StringVar(&opts.convention, "convention", string(direction.DefaultConvention), "Axis convention: 'frontal' or 'legacy'")
	flag.StringVar(&opts.sense, "sense", "", "Ray sense override: 'outward' or 'inward' (default depends on variant)")
	flag.IntVar(&opts.workers, "workers", 1, "Ray workers (1 = sequential, 0 = one per CPU)")
	flag.BoolVar(&opts.validate, "validate", true, "Abort when a source point lies outside the target (scene variant)")
	sweepAlpha := flag.String("sweep-alpha", "", "Comma separated alpha values for a sweep (e.g. '15,30,45')")
	sweepTheta := flag.String("sweep-theta", "", "Comma separated theta values for a sweep (e.g. '0,90,180,270')")
	sweepParallel := flag.Int("sweep-parallel", 1, "Angle pairs run at once during a sweep")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Surface Ray Projector")
		fmt.Println("Usage: projector -source <organ> [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Variants:")
		fmt.Println("  keypoints - cast from the source keypoints along the (alpha, theta) direction")
		fmt.Println("  scene     - recenter on the target and cast back along the incoming direction")
		fmt.Println()
		fmt.Println("Output will be saved to <results>/alpha_<alpha>_theta_<theta>/")
		return
	}

	cfg, err := buildRunConfig(opts)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	runner := experiment.NewRunner(core.NewDefaultLogger())
	ctx := context.Background()
	startTime := time.Now()

	if *sweepAlpha != "" || *sweepTheta != "" {
		sweep, err := buildSweepConfig(*sweepAlpha, *sweepTheta, cfg.Angles, *sweepParallel)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		outcomes := runner.Sweep(ctx, cfg, sweep)
		failed := 0
		for _, o := range outcomes {
			if o.Err != nil {
				failed++
			}
		}
		fmt.Printf("Sweep of %d experiments completed in %v (%d failed)\n", len(outcomes), time.Since(startTime), failed)
		return
	}

	outcome, err := runner.Run(ctx, cfg)
	switch {
	case errors.Is(err, config.ErrMissingInput):
		fmt.Printf("Input not found: %v\n", err)
		return
	case errors.Is(err, experiment.ErrNoSourcePoints):
		fmt.Println("Ray tracing produced no results.")
		return
	case err != nil:
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Experiment completed in %v\n", time.Since(startTime))
	fmt.Printf("Rays that hit: %d of %d\n", outcome.Record.Summary.RaysThatHit, outcome.Record.Summary.TotalSourcePoints)
	fmt.Printf("Results saved in %s\n", outcome.OutputDir)
}

// buildRunConfig validates the flag values and converts them to a RunConfig
func buildRunConfig(opts cliOptions) (config.RunConfig, error) {
	cfg := config.DefaultRunConfig()
	cfg.Source = opts.source
	cfg.Target = opts.target
	cfg.Angles = direction.AnglePair{AlphaDeg: opts.alpha, ThetaDeg: opts.theta}
	cfg.OutputDir = opts.output
	cfg.BaseDir = opts.base
	cfg.Workers = opts.workers
	cfg.Validate = opts.validate

	variant, err := config.ParseVariant(opts.variant)
	if err != nil {
		return config.RunConfig{}, err
	}
	cfg.Variant = variant

	convention, err := direction.ParseConvention(opts.convention)
	if err != nil {
		return config.RunConfig{}, err
	}
	cfg.Convention = convention

	if opts.sense != "" {
		sense, err := direction.ParseRaySense(opts.sense)
		if err != nil {
			return config.RunConfig{}, err
		}
		cfg.Sense = &sense
	}

	if err := cfg.Check(); err != nil {
		return config.RunConfig{}, err
	}
	return cfg, nil
}

// buildSweepConfig builds the grid; an empty list means the single value
// from -alpha or -theta
func buildSweepConfig(alphas, thetas string, single direction.AnglePair, parallelism int) (experiment.SweepConfig, error) {
	sweep := experiment.SweepConfig{
		Alphas:      []float64{single.AlphaDeg},
		Thetas:      []float64{single.ThetaDeg},
		Parallelism: parallelism,
	}

	var err error
	if alphas != "" {
		if sweep.Alphas, err = parseAngleList(alphas); err != nil {
			return experiment.SweepConfig{}, fmt.Errorf("invalid -sweep-alpha: %w", err)
		}
	}
	if thetas != "" {
		if sweep.Thetas, err = parseAngleList(thetas); err != nil {
			return experiment.SweepConfig{}, fmt.Errorf("invalid -sweep-theta: %w", err)
		}
	}
	return sweep, nil
}

// parseAngleList parses a comma separated list of degrees
func parseAngleList(s string) ([]float64, error) {
	var values []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", part)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("not a finite angle: %q", part)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return values, nil
}
