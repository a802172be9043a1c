// Package candidate implements CandidateEnumerator: populating a freshly
// pushed ComprCUCtx frame's candidate-mode stack (spec.md §4.5).
//
// Grounded on the teacher's internal/tq/planner.go task-queue population
// pattern (build the full candidate set up front, in a fixed documented
// order, before any of it is consumed), adapted here to the LIFO
// push-order discipline spec.md §4.4 requires.
package candidate

import (
	"github.com/five82/splitforest/internal/cache"
	"github.com/five82/splitforest/internal/codec"
	"github.com/five82/splitforest/internal/ctxstack"
	"github.com/five82/splitforest/internal/mode"
)

// Config toggles the optional coding tools that gate candidate pushes.
type Config struct {
	IBCEnabled     bool
	PaletteEnabled bool
	AffineEnabled  bool
	SBTMVPEnabled  bool
	GeoEnabled     bool
	HashMEEnabled  bool
	IMVEnabled     bool
	DeltaQPEnabled bool
	MinQP          int
	MaxQP          int
}

// qpRange returns the QP values a candidate should be pushed once per,
// per spec.md §4.5 ("push once per QP in [minQP, maxQP] determined by
// delta-QP configuration").
func (c Config) qpRange(baseQP int) []int {
	if !c.DeltaQPEnabled {
		return []int{baseQP}
	}
	qps := make([]int, 0, c.MaxQP-c.MinQP+1)
	for qp := c.MinQP; qp <= c.MaxQP; qp++ {
		qps = append(qps, qp)
	}
	return qps
}

// Enumerator is the concrete ctxstack.Enumerator driving candidate-mode
// population for every CU (spec.md §4.5).
type Enumerator struct {
	cfg      Config
	bestEnc  *cache.BestEncInfoCache
	pocOfCU  int
}

// NewEnumerator wires the coding-tool configuration and the BestEncInfoCache
// consulted for ETM_RECO_CACHED eligibility.
func NewEnumerator(cfg Config, bestEnc *cache.BestEncInfoCache) *Enumerator {
	return &Enumerator{cfg: cfg, bestEnc: bestEnc}
}

// SetCurrentPOC records the POC of the slice currently being enumerated,
// used to validate ETM_RECO_CACHED eligibility against BestEncInfoCache.
func (e *Enumerator) SetCurrentPOC(poc int) {
	e.pocOfCU = poc
}

// Enumerate implements ctxstack.Enumerator.
//
// Push order (first pushed = tried last): splits ordered by QT_BEFORE_BT
// are pushed first, underneath everything else; ETM_POST_DONT_SPLIT is
// pushed next, directly on top of the splits; then
// IBC/palette/intra/cached-reuse; then inter modes ending with
// ETM_INTER_ME, the most common case, pushed last so it is tried first.
//
// This keeps ETM_POST_DONT_SPLIT "pushed before the common-case modes so
// it pops after them" (spec.md §4.4) while still having it pop before the
// splits it's meant to gate: ETM_POST_DONT_SPLIT's pop is what triggers
// the one-time classifier evaluation (§4.4), and TryModeFilter's
// classifier-gates stage (§4.6 step 2) reads NO_SPLIT/QT/HOR_FLAG off the
// split candidates that come after it. Pushing splits underneath
// ETM_POST_DONT_SPLIT — rather than, as a literal reading of "pushed
// first" might suggest, above everything — is the only push order under
// which those flags are ever non-undecided by the time a split candidate
// is filtered.
func (e *Enumerator) Enumerate(frame *ctxstack.ComprCUCtx, slice codec.Slice, part codec.Partitioner) {
	baseQP := slice.BaseQP()
	a := frame.Area

	e.pushSplits(frame, part, baseQP)

	frame.Push(mode.New(mode.ETMPostDontSplit, baseQP))

	if e.cfg.IBCEnabled && a.Width < 128 && a.Height < 128 {
		frame.Push(mode.New(mode.ETMIBC, baseQP))
		frame.Push(mode.New(mode.ETMIBCMerge, baseQP))
	}

	if e.cfg.PaletteEnabled && a.Width <= 64 && a.Height <= 64 {
		frame.Push(mode.New(mode.ETMPalette, baseQP))
	}

	frame.Push(mode.New(mode.ETMIntra, baseQP))

	if snap, err := e.bestEnc.Lookup(a, e.pocOfCU); err == nil && snap != nil {
		frame.Push(mode.New(mode.ETMRecoCached, baseQP))
	}

	if slice.IsIntra() || (a.Width == 4 && a.Height == 4) {
		return
	}

	minDim := a.Width
	if a.Height < minDim {
		minDim = a.Height
	}
	maxDim := a.Width
	if a.Height > maxDim {
		maxDim = a.Height
	}

	if e.cfg.HashMEEnabled && minDim >= 4 && minDim < 128 {
		frame.Push(mode.New(mode.ETMHashInter, baseQP))
	}

	if e.cfg.GeoEnabled && a.Width >= 8 && a.Width <= 64 && a.Height >= 8 && a.Height <= 64 && maxDim/minDim <= 8 {
		frame.Push(mode.New(mode.ETMMergeGeo, baseQP))
	}

	if e.cfg.AffineEnabled || e.cfg.SBTMVPEnabled {
		frame.Push(mode.New(mode.ETMAffine, baseQP))
	}

	frame.Push(mode.New(mode.ETMMergeSkip, baseQP))

	for _, qp := range e.cfg.qpRange(baseQP) {
		frame.Push(mode.New(mode.ETMInterME, qp))
		if e.cfg.IMVEnabled {
			frame.Push(mode.NewWithIMV(mode.ETMInterME, qp, 1))
			frame.Push(mode.NewWithIMV(mode.ETMInterME, qp, 2))
			frame.Push(mode.NewWithIMV(mode.ETMInterME, qp, 3))
		}
	}
}

func (e *Enumerator) pushSplits(frame *ctxstack.ComprCUCtx, part codec.Partitioner, baseQP int) {
	qps := e.cfg.qpRange(baseQP)
	push := func(types []mode.Type) {
		for _, t := range types {
			if !part.CanSplit(t) {
				continue
			}
			for _, qp := range qps {
				frame.Push(mode.New(t, qp))
			}
		}
	}
	btTT := []mode.Type{mode.ETMSplitBTH, mode.ETMSplitBTV, mode.ETMSplitTTH, mode.ETMSplitTTV}
	qt := []mode.Type{mode.ETMSplitQT}

	if frame.QTBeforeBT {
		push(btTT)
		push(qt)
	} else {
		push(qt)
		push(btTT)
	}
}
