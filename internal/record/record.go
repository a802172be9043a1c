// Package record implements ResultRecorder: the per-attempt bookkeeping
// that updates best-so-far state, per-branch cost slots, the geometry-keyed
// caches, and (in dataset mode) CSV rows, after every RD attempt
// (spec.md §4.7).
//
// Grounded on the teacher's internal/tq result-ingestion step (one
// recorder, several owned sinks updated in a fixed order per result),
// adapted to the per-branch cost-slot and cache-population rules
// spec.md §4.7 specifies.
package record

import (
	"github.com/five82/splitforest/internal/area"
	"github.com/five82/splitforest/internal/cache"
	"github.com/five82/splitforest/internal/codec"
	"github.com/five82/splitforest/internal/ctxstack"
	"github.com/five82/splitforest/internal/dataset"
	"github.com/five82/splitforest/internal/mode"
	"github.com/five82/splitforest/internal/stats"
)

// Config toggles dataset-mode CSV emission. Stats instrumentation is not
// part of Config: it is off when NewRecorder is given a nil stats sink.
type Config struct {
	DatasetMode bool
}

// Recorder is the concrete ctxstack.Recorder implementing spec.md §4.7.
type Recorder struct {
	cfg       Config
	blockInfo *cache.BlockInfoCache
	bestEnc   *cache.BestEncInfoCache
	sbt       *cache.SbtSaveLoad
	sink      *dataset.Sink
	stats     *stats.Sink
}

// NewRecorder wires the three geometry-keyed caches, an optional dataset
// Sink (nil unless cfg.DatasetMode), and an optional stats Sink (nil
// disables instrumentation).
func NewRecorder(cfg Config, blockInfo *cache.BlockInfoCache, bestEnc *cache.BestEncInfoCache, sbt *cache.SbtSaveLoad, sink *dataset.Sink, statsSink *stats.Sink) *Recorder {
	return &Recorder{cfg: cfg, blockInfo: blockInfo, bestEnc: bestEnc, sbt: sbt, sink: sink, stats: statsSink}
}

// Record implements ctxstack.Recorder.
func (r *Recorder) Record(frame *ctxstack.ComprCUCtx, m mode.EncTestMode, tempCS codec.CodingStructure) bool {
	cost := tempCS.Cost()

	r.updateCostSlot(frame, m, cost)

	switch m.Type {
	case mode.ETMSplitQT:
		frame.DidQuadSplit = true
		if d := maxSubDepth(frame.Area, tempCS.ChildDims()); d > frame.MaxQTSubDepth {
			frame.MaxQTSubDepth = d
		}
	case mode.ETMSplitBTH:
		frame.DidHorzSplit = true
		frame.DoTrihSplit = !hitsMinorChildThreshold(frame.Area, tempCS.ChildDims(), true)
	case mode.ETMSplitBTV:
		frame.DidVertSplit = true
		frame.DoTrivSplit = !hitsMinorChildThreshold(frame.Area, tempCS.ChildDims(), false)
	}

	adopted := frame.TryAdopt(tempCS)
	if adopted {
		r.populateCaches(frame, m, tempCS)
	}

	if r.stats != nil {
		category := "tried"
		if adopted {
			category = "adopted"
		}
		r.stats.Count(stats.Shape{Width: frame.Area.Width, Height: frame.Area.Height}, m.Type, 0, category)
	}

	if r.cfg.DatasetMode && r.sink != nil {
		r.emitDatasetRows(frame, m, cost)
	}

	return adopted
}

func (r *Recorder) updateCostSlot(frame *ctxstack.ComprCUCtx, m mode.EncTestMode, cost float64) {
	switch m.Type {
	case mode.ETMSplitQT:
		frame.SetCostSlot(ctxstack.SlotQT, cost)
	case mode.ETMSplitBTH:
		frame.SetCostSlot(ctxstack.SlotHorzSplit, cost)
	case mode.ETMSplitBTV:
		frame.SetCostSlot(ctxstack.SlotVertSplit, cost)
	case mode.ETMSplitTTH:
		frame.SetCostSlot(ctxstack.SlotTrihSplit, cost)
	case mode.ETMSplitTTV:
		frame.SetCostSlot(ctxstack.SlotTrivSplit, cost)
	default:
		frame.SetCostSlot(ctxstack.SlotNonSplit, cost)
	}

	if m.Type == mode.ETMInterME {
		if mode.IMVPrecision(m.Opts) == 0 {
			frame.SetCostSlot(ctxstack.SlotNoIMV, cost)
		} else {
			frame.SetCostSlot(ctxstack.SlotIMV, cost)
		}
	}
}

func (r *Recorder) populateCaches(frame *ctxstack.ComprCUCtx, m mode.EncTestMode, tempCS codec.CodingStructure) {
	r.blockInfo.Put(frame.Area, &cache.CodedCUInfo{
		IsSkip:   tempCS.IsSkip(),
		IsIntra:  tempCS.IsIntra(),
		IsInter:  tempCS.IsInter(),
		IsIBC:    tempCS.IsIBC(),
		BcwIdx:   tempCS.BcwIdx(),
		BestCost: tempCS.Cost(),
	})

	r.bestEnc.Put(frame.Area, cache.SnapshotFromCS(frame.POC, m.Type.String(), tempCS))

	r.sbt.Record(frame.Area, cache.SbtAttempt{PuSse: tempCS.Dist()})
}

func (r *Recorder) emitDatasetRows(frame *ctxstack.ComprCUCtx, m mode.EncTestMode, cost float64) {
	a := frame.Area
	r.sink.WriteCostRow(frame.POC, a.Height, a.Width, a.X, a.Y, frame.SplitSeries, m.Type.String(), cost)

	if m.Type == mode.ETMPostDontSplit {
		if frame.QTMTTFeatures != nil {
			r.sink.WriteFeatureRow(frame.POC, a.Height, a.Width, a.X, a.Y, frame.SplitSeries, dataset.FeatureKindQTMTT, frame.QTMTTFeatures)
		}
		if frame.HorVerFeatures != nil {
			r.sink.WriteFeatureRow(frame.POC, a.Height, a.Width, a.X, a.Y, frame.SplitSeries, dataset.FeatureKindHorVer, frame.HorVerFeatures)
		}
	}
}

// maxSubDepth approximates MAX_QT_SUB_DEPTH as the largest power-of-two
// halving distance between the parent area and any reported child
// (spec.md §4.7). The true recursive depth is owned by the opaque RD
// driver; this is the best proxy available through the CodingStructure
// contract.
func maxSubDepth(parent area.CodingUnitArea, children []area.CodingUnitArea) int {
	maxDepth := 0
	for _, c := range children {
		if d := halvings(parent.Width, c.Width); d > maxDepth {
			maxDepth = d
		}
		if d := halvings(parent.Height, c.Height); d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth
}

func halvings(parent, child int) int {
	d := 0
	for child > 0 && child < parent {
		child *= 2
		d++
	}
	return d
}

// hitsMinorChildThreshold reports whether any reported child's dimension
// along the split axis has fallen below half the parent's, per spec.md
// §4.7's "either child < half the parent dimension" rule. A driver that
// reports no child dims is treated conservatively (threshold hit, TT
// disabled).
func hitsMinorChildThreshold(parent area.CodingUnitArea, children []area.CodingUnitArea, horizontal bool) bool {
	if len(children) == 0 {
		return true
	}
	halfW := parent.Width / 2
	halfH := parent.Height / 2
	for _, c := range children {
		if horizontal && c.Height < halfH {
			return true
		}
		if !horizontal && c.Width < halfW {
			return true
		}
	}
	return false
}
