package speculate

import (
	"testing"

	"github.com/five82/splitforest/internal/area"
	"github.com/five82/splitforest/internal/cache"
	"github.com/five82/splitforest/internal/codec"
	"github.com/five82/splitforest/internal/mode"
)

type fakeCS struct {
	a    area.CodingUnitArea
	cost float64
}

func (f fakeCS) Area() area.CodingUnitArea        { return f.a }
func (f fakeCS) Cost() float64                    { return f.cost }
func (f fakeCS) FracBits() float64                { return 0 }
func (f fakeCS) Dist() float64                    { return 0 }
func (f fakeCS) IsIntra() bool                    { return false }
func (f fakeCS) IsInter() bool                    { return true }
func (f fakeCS) IsMerge() bool                    { return false }
func (f fakeCS) IsGeo() bool                      { return false }
func (f fakeCS) IsSkip() bool                     { return false }
func (f fakeCS) IsIBC() bool                      { return false }
func (f fakeCS) BcwIdx() int                      { return 0 }
func (f fakeCS) ChildDims() []area.CodingUnitArea { return nil }

func TestRunAllMergesPrivateCachesBack(t *testing.T) {
	shared := cache.NewMergeableBlockInfoCache()
	r := NewRunner(2, shared)
	base := cache.NewBlockInfoCache()

	areas := make([]area.CodingUnitArea, 4)
	for i := range areas {
		areas[i] = area.CodingUnitArea{X: i * 16, Y: 0, Width: 16, Height: 16}
	}

	tasks := make([]Task, len(areas))
	for i, a := range areas {
		i, a := i, a
		tasks[i] = Task{
			Mode: mode.New(mode.ETMSplitBTH, 32),
			Run: func(blockInfo *cache.BlockInfoCache) (codec.CodingStructure, error) {
				blockInfo.Put(a, &cache.CodedCUInfo{BestCost: float64(i)})
				return fakeCS{a: a, cost: float64(i)}, nil
			},
		}
	}

	results := r.RunAll(base, tasks)
	if len(results) != len(areas) {
		t.Fatalf("expected %d results, got %d", len(areas), len(results))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Errorf("task %d: unexpected error %v", i, res.Err)
		}
		if res.CS.Cost() != float64(i) {
			t.Errorf("task %d: expected cost %d, got %v", i, i, res.CS.Cost())
		}
	}

	for i, a := range areas {
		info, ok := shared.Get(a)
		if !ok {
			t.Errorf("area %d: expected merged cache entry for %v", i, a)
			continue
		}
		if info.BestCost != float64(i) {
			t.Errorf("area %d: expected merged BestCost=%d, got %v", i, i, info.BestCost)
		}
	}
}

func TestRunAllLeavesBaseCacheUntouched(t *testing.T) {
	shared := cache.NewMergeableBlockInfoCache()
	r := NewRunner(2, shared)
	base := cache.NewBlockInfoCache()
	a := area.CodingUnitArea{X: 0, Y: 0, Width: 16, Height: 16}
	base.Put(a, &cache.CodedCUInfo{BestCost: 999})

	tasks := []Task{{
		Mode: mode.New(mode.ETMSplitBTH, 32),
		Run: func(blockInfo *cache.BlockInfoCache) (codec.CodingStructure, error) {
			blockInfo.Put(a, &cache.CodedCUInfo{BestCost: 1})
			return fakeCS{a: a, cost: 1}, nil
		},
	}}
	r.RunAll(base, tasks)

	info, ok := base.Get(a)
	if !ok || info.BestCost != 999 {
		t.Fatalf("expected base cache unmodified by a worker's private clone, got %+v ok=%v", info, ok)
	}
}

func TestNewRunnerBoundsConcurrency(t *testing.T) {
	shared := cache.NewMergeableBlockInfoCache()
	r := NewRunner(1, shared)
	if cap(r.sem.Chan()) != 1 {
		t.Fatalf("expected a capacity-1 semaphore, got %d", cap(r.sem.Chan()))
	}
}

func TestDefaultWorkerCountIsPositive(t *testing.T) {
	if n := DefaultWorkerCount(); n < 1 {
		t.Fatalf("DefaultWorkerCount() = %d, want >= 1", n)
	}
}
