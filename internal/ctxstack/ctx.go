// Package ctxstack implements the per-CTU PartitionContextStack of
// ComprCUCtx frames (spec.md §3/§4.4).
//
// Grounded on the teacher's internal/tq/state.go LIFO State/Round pattern:
// a bounds-checked slice-backed stack with explicit begin/end balancing, the
// same discipline applied here to the candidate-mode stack instead of a
// search-window state.
package ctxstack

import (
	"math"

	"github.com/five82/splitforest/internal/area"
	"github.com/five82/splitforest/internal/codec"
	"github.com/five82/splitforest/internal/gate"
	"github.com/five82/splitforest/internal/mode"
)

// CostSlot identifies one of the per-branch best-cost slots tracked per
// frame (spec.md §3).
type CostSlot int

const (
	SlotNonSplit CostSlot = iota
	SlotQT
	SlotHorzSplit
	SlotVertSplit
	SlotTrihSplit
	SlotTrivSplit
	SlotIMV
	SlotNoIMV
	numCostSlots
)

// ComprCUCtx is one stack frame: the candidate-mode stack and all
// bookkeeping state for a single CU under consideration (spec.md §3).
type ComprCUCtx struct {
	Area area.CodingUnitArea

	candidates []mode.EncTestMode // LIFO: last element pops first

	BestCS   codec.CodingStructure
	bestCost float64

	costSlots [numCostSlots]float64

	DidQuadSplit       bool
	DidHorzSplit       bool
	DidVertSplit       bool
	DoTrihSplit        bool
	DoTrivSplit        bool
	QTBeforeBT         bool
	IsBestNoSplitSkip  bool
	IsReusingCU        bool
	EmptyCUWhenFull    bool

	NoSplitFlag gate.Decision
	QTFlag      gate.Decision
	HorFlag     gate.Decision

	MinDepth      int
	MaxDepth      int
	MaxQTSubDepth int

	EarlySkip bool

	// IsFirstMode is set once ETM_POST_DONT_SPLIT has been popped,
	// marking that this frame's one-time feature extraction has run
	// (spec.md §4.4).
	IsFirstMode bool

	// Picture and TLayer are the read-only analysis-pass inputs
	// FeatureExtractor needs, captured at BeginCU so the classifier
	// trigger at ETM_POST_DONT_SPLIT doesn't need its own codec plumbing.
	Picture codec.Picture
	TLayer  int

	// POC is the picture-order-count of the slice this frame belongs to,
	// used for BestEncInfoCache identity checks and dataset rows.
	POC int

	// SplitSeries is the bit-packed walk of the partition tree down to
	// this frame's area, used verbatim as the dataset CSV's splitSeries
	// column (spec.md §6).
	SplitSeries uint64

	// QTMTTFeatures and HorVerFeatures cache this frame's one-time
	// extracted feature vectors (spec.md §4.4's "one-time feature
	// extraction" at ETM_POST_DONT_SPLIT), reused by dataset-mode row
	// emission without re-extracting.
	QTMTTFeatures  []float64
	HorVerFeatures []float64
}

// NewComprCUCtx returns a frame for a with all best-cost slots initialized
// to +Inf per spec.md §3.
func NewComprCUCtx(a area.CodingUnitArea) *ComprCUCtx {
	c := &ComprCUCtx{
		Area:        a,
		bestCost:    math.Inf(1),
		NoSplitFlag: gate.DecisionUndecided,
		QTFlag:      gate.DecisionUndecided,
		HorFlag:     gate.DecisionUndecided,
	}
	for i := range c.costSlots {
		c.costSlots[i] = math.Inf(1)
	}
	return c
}

// Push appends a candidate mode to the LIFO stack. Candidates are pushed
// least-preferred-first so that more common modes are tried first
// (spec.md §4.4).
func (c *ComprCUCtx) Push(m mode.EncTestMode) {
	c.candidates = append(c.candidates, m)
}

// Pop removes and returns the most recently pushed candidate.
func (c *ComprCUCtx) Pop() (mode.EncTestMode, bool) {
	if len(c.candidates) == 0 {
		return mode.EncTestMode{}, false
	}
	n := len(c.candidates) - 1
	m := c.candidates[n]
	c.candidates = c.candidates[:n]
	return m, true
}

// Empty reports whether the candidate stack has been exhausted.
func (c *ComprCUCtx) Empty() bool {
	return len(c.candidates) == 0
}

// BestCost returns the frame's current best adopted cost (+Inf if none
// adopted yet).
func (c *ComprCUCtx) BestCost() float64 {
	return c.bestCost
}

// CostSlot returns the current value of a per-branch best-cost slot.
func (c *ComprCUCtx) CostSlot(slot CostSlot) float64 {
	return c.costSlots[slot]
}

// SetCostSlot records a new value for a per-branch best-cost slot, keeping
// the minimum seen (ResultRecorder never needs to un-set a slot).
func (c *ComprCUCtx) SetCostSlot(slot CostSlot, cost float64) {
	if cost < c.costSlots[slot] {
		c.costSlots[slot] = cost
	}
}

// TryAdopt adopts cs as the frame's best if its cost improves on the
// current best, per spec.md §4.7's "tempCS.cost + dbOffset < currentBest.cost
// + dbOffset" rule (dbOffset cancels out and is omitted: both sides share
// the same depth-dependent bias applied externally by the RD driver).
func (c *ComprCUCtx) TryAdopt(cs codec.CodingStructure) bool {
	if cs.Cost() < c.bestCost {
		c.bestCost = cs.Cost()
		c.BestCS = cs
		return true
	}
	return false
}
