package experiment

import (
	"context"
	"sync"

	"github.com/df07/go-surface-projector/pkg/config"
	"github.com/df07/go-surface-projector/pkg/direction"
	"github.com/df07/go-surface-projector/pkg/export"
)

// SweepConfig describes a grid of angle pairs
type SweepConfig struct {
	Alphas      []float64 // Tilt values in degrees
	Thetas      []float64 // Azimuth values in degrees
	Parallelism int       // Pairs run at once (<= 1 = sequential)
}

// DefaultSweepConfig returns the standard 3x4 grid, run sequentially
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Alphas:      []float64{15, 30, 45},
		Thetas:      []float64{0, 90, 180, 270},
		Parallelism: 1,
	}
}

// Pairs expands the grid alpha-major
func (s SweepConfig) Pairs() []direction.AnglePair {
	pairs := make([]direction.AnglePair, 0, len(s.Alphas)*len(s.Thetas))
	for _, a := range s.Alphas {
		for _, t := range s.Thetas {
			pairs = append(pairs, direction.AnglePair{AlphaDeg: a, ThetaDeg: t})
		}
	}
	return pairs
}

// SweepOutcome is the result of one grid point. Exactly one of Outcome and
// Err is set.
type SweepOutcome struct {
	Angles  direction.AnglePair
	Outcome *Outcome
	Err     error
}

// Sweep runs cfg once per angle pair. A failing pair is recorded and logged
// and does not stop the others. Outcomes are returned in grid order whatever
// the parallelism. Pairs that share an output directory (30 and 30.0, say)
// run one after another on the same worker.
func (r *Runner) Sweep(ctx context.Context, cfg config.RunConfig, sweep SweepConfig) []SweepOutcome {
	pairs := sweep.Pairs()
	outcomes := make([]SweepOutcome, len(pairs))
	groups := groupByOutputDir(pairs)

	workers := sweep.Parallelism
	if workers < 1 {
		workers = 1
	}

	r.logger.Printf("--- Sweep: %d angle pairs in %d directories, %d at a time ---\n", len(pairs), len(groups), workers)

	tasks := make(chan []int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range tasks {
				for _, i := range group {
					outcomes[i] = r.runPair(ctx, cfg, pairs[i])
				}
			}
		}()
	}

feed:
	for g, group := range groups {
		select {
		case <-ctx.Done():
			for _, rest := range groups[g:] {
				for _, i := range rest {
					outcomes[i] = SweepOutcome{Angles: pairs[i], Err: ctx.Err()}
				}
			}
			break feed
		case tasks <- group:
		}
	}
	close(tasks)
	wg.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	r.logger.Printf("--- Sweep finished: %d succeeded, %d failed ---\n", len(outcomes)-failed, failed)

	return outcomes
}

func (r *Runner) runPair(ctx context.Context, cfg config.RunConfig, angles direction.AnglePair) SweepOutcome {
	outcome, err := r.Run(ctx, cfg.WithAngles(angles))
	if err != nil {
		r.logger.Printf("Experiment alpha=%g, theta=%g failed: %v\n", angles.AlphaDeg, angles.ThetaDeg, err)
		return SweepOutcome{Angles: angles, Err: err}
	}
	return SweepOutcome{Angles: angles, Outcome: outcome}
}

// groupByOutputDir collects pair indices by the directory their results land
// in, keeping first-seen order for groups and grid order within each group.
func groupByOutputDir(pairs []direction.AnglePair) [][]int {
	var groups [][]int
	byDir := make(map[string]int)
	for i, p := range pairs {
		dir := export.ExperimentDirName(p.AlphaDeg, p.ThetaDeg)
		g, ok := byDir[dir]
		if !ok {
			g = len(groups)
			byDir[dir] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}
