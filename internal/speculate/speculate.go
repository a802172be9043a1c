// Package speculate implements the optional split-level speculative
// parallelism path (spec.md §5): off by default, fanning out RD
// evaluation of sibling splits, each worker owning a private
// BlockInfoCache clone merged back under a "most-recent-wins by temporal
// tag" policy.
//
// Grounded on the teacher's internal/worker.Semaphore counting-semaphore
// concurrency cap, composed here with internal/cache's Clone/Merge
// machinery rather than the teacher's chunk-encode fan-out (which has no
// analogue of a shared mutable cache to reconcile).
package speculate

import (
	"sync"
	"sync/atomic"

	"github.com/five82/splitforest/internal/cache"
	"github.com/five82/splitforest/internal/codec"
	"github.com/five82/splitforest/internal/config"
	"github.com/five82/splitforest/internal/mode"
	"github.com/five82/splitforest/internal/util"
	"github.com/five82/splitforest/internal/worker"
)

// estimatedCloneBytes is a conservative estimate of one BlockInfoCache
// clone's memory footprint, used only to size the default worker pool;
// single entries are far smaller but a CTU can hold many.
const estimatedCloneBytes = 64 << 20 // 64 MiB

// DefaultWorkerCount returns the default speculative worker-pool size:
// bounded by physical cores (sibling-split RD is CPU-bound) and by the
// memory available for each worker's private BlockInfoCache clone
// (spec.md §5).
func DefaultWorkerCount() int {
	byCores := util.PhysicalCores()
	byMemory := util.MaxSpeculativeWorkers(estimatedCloneBytes, config.DefaultMemoryFraction)
	if byMemory < byCores {
		return byMemory
	}
	return byCores
}

// Task is one sibling split's RD evaluation, run against a private
// BlockInfoCache clone.
type Task struct {
	Mode mode.EncTestMode
	Run  func(blockInfo *cache.BlockInfoCache) (codec.CodingStructure, error)
}

// Result pairs a Task's mode with its outcome.
type Result struct {
	Mode mode.EncTestMode
	CS   codec.CodingStructure
	Err  error
}

// Runner fans Tasks out across a bounded worker pool, merging each
// worker's private cache mutations back into a shared
// MergeableBlockInfoCache (spec.md §5).
type Runner struct {
	sem     *worker.Semaphore
	shared  *cache.MergeableBlockInfoCache
	nextTag uint64
}

// NewRunner returns a Runner capped at maxWorkers concurrent tasks,
// merging back into shared.
func NewRunner(maxWorkers int, shared *cache.MergeableBlockInfoCache) *Runner {
	return &Runner{sem: worker.NewSemaphore(maxWorkers), shared: shared}
}

// RunAll runs every task concurrently (bounded by the Runner's worker
// cap), each against a private clone of base, and merges every private
// clone back into the shared cache before returning. Results are
// returned in task order regardless of completion order.
func (r *Runner) RunAll(base *cache.BlockInfoCache, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			<-r.sem.Chan()
			defer r.sem.Release()

			private := base.Clone()
			cs, err := task.Run(private)
			results[i] = Result{Mode: task.Mode, CS: cs, Err: err}

			tag := cache.MergeTag(atomic.AddUint64(&r.nextTag, 1))
			r.shared.Merge(private.ToMergeable(tag))
		}(i, task)
	}
	wg.Wait()
	return results
}
