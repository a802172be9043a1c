package controller

import (
	"errors"
	"testing"

	"github.com/five82/splitforest/internal/area"
	"github.com/five82/splitforest/internal/codec"
	"github.com/five82/splitforest/internal/ctxstack"
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

type fixedEnumerator struct {
	modes []mode.EncTestMode
}

func (e fixedEnumerator) Enumerate(frame *ctxstack.ComprCUCtx, slice codec.Slice, part codec.Partitioner) {
	for _, m := range e.modes {
		frame.Push(m)
	}
}

type allowAllFilter struct{}

func (allowAllFilter) Allow(frame *ctxstack.ComprCUCtx, m mode.EncTestMode, part codec.Partitioner) bool {
	return true
}

type adoptRecorder struct{}

func (adoptRecorder) Record(frame *ctxstack.ComprCUCtx, m mode.EncTestMode, tempCS codec.CodingStructure) bool {
	return frame.TryAdopt(tempCS)
}

type fakeSlice struct{ qp int }

func (f fakeSlice) POC() int                  { return 7 }
func (f fakeSlice) IsIntra() bool             { return false }
func (f fakeSlice) SliceType() codec.SliceType { return codec.SliceB }
func (f fakeSlice) TLayer() int               { return 2 }
func (f fakeSlice) BaseQP() int               { return f.qp }

// costByMode runs the given mode's cost, or errors it out if named in errs.
type costByMode struct {
	costs map[mode.Type]float64
	errs  map[mode.Type]bool
}

func (c costByMode) TryMode(m mode.EncTestMode, part codec.Partitioner) (codec.CodingStructure, error) {
	if c.errs[m.Type] {
		return nil, errors.New("rd failed")
	}
	return fakeCS{a: area.CodingUnitArea{Width: 16, Height: 16}, cost: c.costs[m.Type]}, nil
}

func TestCompressCUAdoptsCheapestCandidate(t *testing.T) {
	e := fixedEnumerator{modes: []mode.EncTestMode{
		mode.New(mode.ETMPostDontSplit, 32),
		mode.New(mode.ETMMergeSkip, 32),
		mode.New(mode.ETMInterME, 32),
	}}
	stack := ctxstack.NewPartitionContextStack(e, allowAllFilter{}, adoptRecorder{})
	rd := costByMode{costs: map[mode.Type]float64{
		mode.ETMMergeSkip: 120,
		mode.ETMInterME:   80,
	}}
	c := New(stack, rd)

	a := area.CodingUnitArea{Width: 16, Height: 16}
	best, err := c.CompressCU(a, fakeSlice{qp: 32}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best == nil || best.Cost() != 80 {
		t.Fatalf("expected best cost 80 (ETM_INTER_ME), got %+v", best)
	}
	if !stack.Empty() {
		t.Fatal("expected stack balanced after CompressCU")
	}
}

func TestCompressCUSkipsFailingCandidateAndContinues(t *testing.T) {
	e := fixedEnumerator{modes: []mode.EncTestMode{
		mode.New(mode.ETMPostDontSplit, 32),
		mode.New(mode.ETMMergeSkip, 32),
		mode.New(mode.ETMInterME, 32),
	}}
	stack := ctxstack.NewPartitionContextStack(e, allowAllFilter{}, adoptRecorder{})
	rd := costByMode{
		costs: map[mode.Type]float64{mode.ETMMergeSkip: 120},
		errs:  map[mode.Type]bool{mode.ETMInterME: true},
	}
	c := New(stack, rd)

	a := area.CodingUnitArea{Width: 16, Height: 16}
	best, err := c.CompressCU(a, fakeSlice{qp: 32}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best == nil || best.Cost() != 120 {
		t.Fatalf("expected best cost 120 (only non-failing candidate), got %+v", best)
	}
}

func TestCompressCUBalancesStackWhenEveryCandidateIsRejected(t *testing.T) {
	e := fixedEnumerator{modes: []mode.EncTestMode{mode.New(mode.ETMIntra, 32)}}
	stack := ctxstack.NewPartitionContextStack(e, rejectAllFilter{}, adoptRecorder{})
	c := New(stack, costByMode{})

	best, err := c.CompressCU(area.CodingUnitArea{Width: 16, Height: 16}, fakeSlice{qp: 32}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best != nil {
		t.Fatalf("expected no adopted result, got %+v", best)
	}
	if !stack.Empty() {
		t.Fatal("expected stack balanced even when every candidate is filtered out")
	}
}

type rejectAllFilter struct{}

func (rejectAllFilter) Allow(frame *ctxstack.ComprCUCtx, m mode.EncTestMode, part codec.Partitioner) bool {
	return false
}
