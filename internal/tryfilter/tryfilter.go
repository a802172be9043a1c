// Package tryfilter implements TryModeFilter: the per-candidate accept/
// reject gate consulted by PartitionContextStack.NextMode before RD runs
// (spec.md §4.6).
//
// Grounded on the teacher's internal/tq/filters.go chain-of-responsibility
// style (ordered predicate checks, short-circuit on first rejection),
// adapted to the five ordered stages spec.md §4.6 enumerates.
package tryfilter

import (
	"github.com/five82/splitforest/internal/cache"
	"github.com/five82/splitforest/internal/codec"
	"github.com/five82/splitforest/internal/ctxstack"
	"github.com/five82/splitforest/internal/gate"
	"github.com/five82/splitforest/internal/mode"
)

// Config toggles the coding tools and thresholds TryModeFilter's
// structural and quick-reject stages depend on.
type Config struct {
	AffineAMVREnabled bool
	MinQTSize         int
	MaxBTDepth        int
	PaletteMaxSize    int
	IBCMaxSize        int
	GeoMinSize        int
	GeoMaxSize        int
	GeoMaxAspect      int
}

// DefaultConfig mirrors the size limits CandidateEnumerator already
// applies (spec.md §4.5); TryModeFilter re-checks them defensively
// per spec.md §4.6 step 4, since a mode can outlive a structural
// assumption made at enumeration time (e.g. a split elsewhere in the
// frame having changed canSplit's answer).
func DefaultConfig() Config {
	return Config{
		MinQTSize:      8,
		MaxBTDepth:     4,
		PaletteMaxSize: 64,
		IBCMaxSize:     64,
		GeoMinSize:     8,
		GeoMaxSize:     64,
		GeoMaxAspect:   8,
	}
}

// Filter is the concrete ctxstack.ModeFilter implementing spec.md §4.6's
// five ordered stages.
type Filter struct {
	cfg       Config
	blockInfo *cache.BlockInfoCache
}

// NewFilter wires the coding-tool configuration and the BlockInfoCache
// consulted for history-heuristic stage 3.
func NewFilter(cfg Config, blockInfo *cache.BlockInfoCache) *Filter {
	return &Filter{cfg: cfg, blockInfo: blockInfo}
}

// Allow implements ctxstack.ModeFilter, evaluating stages in order with
// early-return false on the first failing stage.
func (f *Filter) Allow(frame *ctxstack.ComprCUCtx, m mode.EncTestMode, part codec.Partitioner) bool {
	if !f.boundaryRule(frame, m, part) {
		return false
	}
	if !f.classifierGates(frame, m) {
		return false
	}
	if !f.historyHeuristics(frame, m) {
		return false
	}
	if !f.structuralRules(frame, m, part) {
		return false
	}
	if !f.quickReject(frame, m) {
		return false
	}
	return true
}

// boundaryRule implements spec.md §4.6 stage 1: at a picture boundary
// only the implicit split type is legal.
func (f *Filter) boundaryRule(frame *ctxstack.ComprCUCtx, m mode.EncTestMode, part codec.Partitioner) bool {
	implicit := part.ImplicitSplit()
	if implicit == mode.ETMInvalid {
		return true
	}
	return m.Type == implicit
}

// classifierGates implements spec.md §4.6 stage 2.
func (f *Filter) classifierGates(frame *ctxstack.ComprCUCtx, m mode.EncTestMode) bool {
	if frame.QTFlag == gate.DecisionForce && m.Type.IsSplit() && m.Type != mode.ETMSplitQT && frame.DidQuadSplit {
		frame.DidHorzSplit = false
		frame.DidVertSplit = false
		frame.DoTrihSplit = false
		frame.DoTrivSplit = false
		return false
	}
	if frame.QTFlag == gate.DecisionForbid && m.Type == mode.ETMSplitQT {
		return false
	}
	if frame.HorFlag == gate.DecisionForce && (m.Type == mode.ETMSplitBTV || m.Type == mode.ETMSplitTTV) {
		frame.DidVertSplit = false
		frame.DoTrivSplit = false
		return false
	}
	if frame.HorFlag == gate.DecisionForbid && (m.Type == mode.ETMSplitBTH || m.Type == mode.ETMSplitTTH) {
		frame.DidHorzSplit = false
		frame.DoTrihSplit = false
		return false
	}
	return true
}

// historyHeuristics implements spec.md §4.6 stage 3: baseline fast-path
// heuristics retained from the underlying encoder, driven by the
// per-frame earlySkip marker and any cached CodedCUInfo for this exact
// geometry.
func (f *Filter) historyHeuristics(frame *ctxstack.ComprCUCtx, m mode.EncTestMode) bool {
	if frame.EarlySkip && (m.Type == mode.ETMIntra || m.Type == mode.ETMPalette) {
		return false
	}
	info, ok := f.blockInfo.Get(frame.Area)
	if !ok {
		return true
	}
	if info.IsSkip && m.Type.IsSplit() {
		return false
	}
	if info.IsIntra && m.Type == mode.ETMInterME {
		return false
	}
	if info.IsInter && m.Type == mode.ETMIntra {
		return false
	}
	return true
}

// structuralRules implements spec.md §4.6 stage 4: re-derived legality
// constraints that enumeration already applied once.
func (f *Filter) structuralRules(frame *ctxstack.ComprCUCtx, m mode.EncTestMode, part codec.Partitioner) bool {
	if m.Type.IsSplit() && !part.CanSplit(m.Type) {
		return false
	}
	if m.Type == mode.ETMSplitQT && (frame.Area.Width < f.cfg.MinQTSize || frame.Area.Height < f.cfg.MinQTSize) {
		return false
	}
	if (m.Type.IsHorizontalSplit() || m.Type.IsVerticalSplit()) && part.CurrBtDepth() >= f.cfg.MaxBTDepth {
		return false
	}
	if m.Type == mode.ETMPalette && (frame.Area.Width > f.cfg.PaletteMaxSize || frame.Area.Height > f.cfg.PaletteMaxSize) {
		return false
	}
	if (m.Type == mode.ETMIBC || m.Type == mode.ETMIBCMerge) &&
		(frame.Area.Width > f.cfg.IBCMaxSize || frame.Area.Height > f.cfg.IBCMaxSize) {
		return false
	}
	if m.Type == mode.ETMMergeGeo {
		w, h := frame.Area.Width, frame.Area.Height
		minDim, maxDim := w, h
		if h < minDim {
			minDim = h
		}
		if h > maxDim {
			maxDim = h
		}
		if minDim < f.cfg.GeoMinSize || maxDim > f.cfg.GeoMaxSize || maxDim/minDim > f.cfg.GeoMaxAspect {
			return false
		}
	}
	return true
}

// quickReject implements spec.md §4.6 stage 5: mode-specific early-outs
// driven by already-recorded per-branch cost slots.
func (f *Filter) quickReject(frame *ctxstack.ComprCUCtx, m mode.EncTestMode) bool {
	if m.Type == mode.ETMInterME && mode.IMVPrecision(m.Opts) == 3 && !f.cfg.AffineAMVREnabled {
		noIMV := frame.CostSlot(ctxstack.SlotNoIMV)
		imv := frame.CostSlot(ctxstack.SlotIMV)
		if noIMV*1.06 < imv {
			return false
		}
	}
	return true
}
