package geometry

import (
	"context"
	"runtime"
	"sync"

	"github.com/df07/go-surface-projector/pkg/core"
)

// RayHit is one candidate reported by a bulk ray query. RayIndex refers to the
// origin slice passed to IntersectBatch; hits from different rays may be
// interleaved in any order.
type RayHit struct {
	RayIndex int
	FaceID   int
	Location core.Vec3
}

// RayTask represents a single ray query for the worker pool
type RayTask struct {
	RayIndex int
	Ray      core.Ray
}

// RayResult contains the candidates found for one ray
type RayResult struct {
	RayIndex int
	Hits     []Hit
	Error    error
}

// WorkerPool manages parallel ray queries against one read-only mesh
type WorkerPool struct {
	mesh        *TriangleMesh
	taskQueue   chan RayTask
	resultQueue chan RayResult
	numWorkers  int
	wg          sync.WaitGroup
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// capacity bounds the number of tasks that can be queued without blocking.
func NewWorkerPool(mesh *TriangleMesh, numWorkers, capacity int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	return &WorkerPool{
		mesh:        mesh,
		taskQueue:   make(chan RayTask, capacity),
		resultQueue: make(chan RayResult, capacity),
		numWorkers:  numWorkers,
	}
}

// Start begins all workers
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run(ctx)
	}
}

// Stop closes the task queue, waits for workers to drain it and closes the result queue
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask submits a ray task to the worker pool
func (wp *WorkerPool) SubmitTask(task RayTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed ray result
func (wp *WorkerPool) GetResult() (RayResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// run is the main worker loop
func (wp *WorkerPool) run(ctx context.Context) {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		if err := ctx.Err(); err != nil {
			wp.resultQueue <- RayResult{RayIndex: task.RayIndex, Error: err}
			continue
		}
		wp.resultQueue <- RayResult{
			RayIndex: task.RayIndex,
			Hits:     wp.mesh.IntersectAll(task.Ray),
		}
	}
}

// IntersectBatch casts one ray per origin along direction and returns every
// candidate hit tagged with its ray index. With numWorkers == 1 the rays are
// cast sequentially; otherwise they are spread over a WorkerPool (0 = CPU count)
// and candidates arrive in completion order.
func (tm *TriangleMesh) IntersectBatch(ctx context.Context, origins []core.Vec3, direction core.Vec3, numWorkers int) ([]RayHit, error) {
	var out []RayHit
	collect := func(rayIndex int, hits []Hit) {
		for _, h := range hits {
			out = append(out, RayHit{RayIndex: rayIndex, FaceID: h.FaceID, Location: h.Point})
		}
	}

	if numWorkers == 1 || len(origins) <= 1 {
		for i, origin := range origins {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			collect(i, tm.IntersectAll(core.NewRay(origin, direction)))
		}
		return out, nil
	}

	pool := NewWorkerPool(tm, numWorkers, len(origins))
	pool.Start(ctx)
	for i, origin := range origins {
		pool.SubmitTask(RayTask{RayIndex: i, Ray: core.NewRay(origin, direction)})
	}
	pool.Stop()

	var firstErr error
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		collect(result.RayIndex, result.Hits)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
