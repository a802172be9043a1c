package simulate

import (
	"fmt"
	"time"

	"github.com/five82/splitforest/internal/area"
	"github.com/five82/splitforest/internal/cache"
	"github.com/five82/splitforest/internal/candidate"
	"github.com/five82/splitforest/internal/classify"
	"github.com/five82/splitforest/internal/codec"
	"github.com/five82/splitforest/internal/config"
	"github.com/five82/splitforest/internal/ctxstack"
	"github.com/five82/splitforest/internal/dataset"
	"github.com/five82/splitforest/internal/forest"
	"github.com/five82/splitforest/internal/gate"
	"github.com/five82/splitforest/internal/mode"
	"github.com/five82/splitforest/internal/record"
	"github.com/five82/splitforest/internal/reporter"
	"github.com/five82/splitforest/internal/stats"
	"github.com/five82/splitforest/internal/tryfilter"
)

// Params bounds a simulated run: picture/CTU geometry and the recursion
// depth simulate is willing to explore. These stand in for the real
// encoder's sequence/tile configuration, which is out of this module's
// scope (spec.md §1).
type Params struct {
	PictureWidth  int
	PictureHeight int
	CTUSize       int
	MaxQTDepth    int
	MaxMTDepth    int
	BitDepth      int
	Seed          uint64
	BaseQP        int
	TLayer        int
}

// DefaultParams returns a small, fast-to-run picture geometry: a 2x2 grid
// of 32x32 CTUs.
func DefaultParams() Params {
	return Params{
		PictureWidth:  64,
		PictureHeight: 64,
		CTUSize:       32,
		MaxQTDepth:    2,
		MaxMTDepth:    2,
		BitDepth:      10,
		Seed:          1,
		BaseQP:        32,
		TLayer:        3,
	}
}

// runState bundles the collaborators shared across every recursive
// compressArea call in one simulated run: the CandidateEnumerator,
// TryModeFilter, ResultRecorder and Classifier are all stateless with
// respect to which CU they're called for, so one instance of each serves
// the whole picture (spec.md §5, "forest data is loaded once... and
// read-only thereafter"; the geometry-keyed caches are likewise shared
// and reset once per simulated slice).
type runState struct {
	params Params
	rep    reporter.Reporter
	cfg    *config.Config

	enumerator *candidate.Enumerator
	filter     *tryfilter.Filter
	recorder   *record.Recorder
	classifier *classify.Classifier

	blockInfo *cache.BlockInfoCache
	bestEnc   *cache.BestEncInfoCache
	sbt       *cache.SbtSaveLoad
	statsSink *stats.Sink
	sink      *dataset.Sink

	forced, forbidden, undecided int
	ctusProcessed                int
}

// Run drives CandidateEnumerator -> PartitionContextStack -> TryModeFilter
// -> (synthetic RD) -> ResultRecorder over a deterministic synthetic
// picture, reporting progress through rep, exactly exercising the
// pipeline spec.md §2 describes end to end.
func Run(cfg *config.Config, params Params, evaluator *forest.Evaluator, rep reporter.Reporter) (reporter.RunSummary, error) {
	start := time.Now()

	blockInfo := cache.NewBlockInfoCache()
	bestEnc := cache.NewBestEncInfoCache()
	sbt := cache.NewSbtSaveLoad()
	statsSink := stats.NewSink()

	var sink *dataset.Sink
	if cfg.Mode == config.ModeCollect {
		sink = dataset.NewSink(cfg.DatasetDir, cfg.Basename, cfg.QP)
		defer func() { _ = sink.Close() }()
	}

	candCfg := candidate.Config{
		IBCEnabled:     true,
		PaletteEnabled: true,
		AffineEnabled:  true,
		SBTMVPEnabled:  true,
		GeoEnabled:     true,
		HashMEEnabled:  true,
		IMVEnabled:     true,
		DeltaQPEnabled: false,
		MinQP:          params.BaseQP,
		MaxQP:          params.BaseQP,
	}
	enumerator := candidate.NewEnumerator(candCfg, bestEnc)

	rs := &runState{
		params:     params,
		rep:        rep,
		cfg:        cfg,
		enumerator: enumerator,
		filter:     tryfilter.NewFilter(tryfilter.DefaultConfig(), blockInfo),
		recorder:   record.NewRecorder(record.Config{DatasetMode: cfg.Mode == config.ModeCollect}, blockInfo, bestEnc, sbt, sink, statsSink),
		classifier: classify.NewClassifier(evaluator, cfg),
		blockInfo:  blockInfo,
		bestEnc:    bestEnc,
		sbt:        sbt,
		statsSink:  statsSink,
		sink:       sink,
	}

	rep.RunStarted(reporter.RunConfig{
		Mode:       cfg.Mode.String(),
		Thresholds: cfg.Thresholds.String(),
		Workers:    cfg.Workers,
		Parallel:   cfg.Parallel,
		InputFile:  "(synthetic picture)",
	})

	pic := newSyntheticPicture(params.PictureWidth, params.PictureHeight, params.BitDepth, params.Seed)
	slice := &syntheticSlice{poc: 0, tLayer: params.TLayer, baseQP: params.BaseQP}

	var series uint64
	for y := 0; y < params.PictureHeight; y += params.CTUSize {
		for x := 0; x < params.PictureWidth; x += params.CTUSize {
			ctu := area.CodingUnitArea{X: x, Y: y, Width: params.CTUSize, Height: params.CTUSize}
			rep.CTUStarted(reporter.CTUInfo{POC: slice.poc, X: x, Y: y, Width: ctu.Width, Height: ctu.Height})

			series++
			if _, err := rs.compressArea(pic, slice, ctu, 0, 0, 0, series); err != nil {
				return reporter.RunSummary{}, fmt.Errorf("simulate: CTU (%d,%d): %w", x, y, err)
			}
			rs.ctusProcessed++
		}
	}

	summary := reporter.RunSummary{
		CTUsProcessed:  rs.ctusProcessed,
		ForcedCount:    rs.forced,
		ForbidCount:    rs.forbidden,
		UndecidedCount: rs.undecided,
		Elapsed:        time.Since(start),
	}
	if sink != nil {
		featureRows, costRows, bytesWritten := sink.Stats()
		summary.DatasetRows = featureRows + costRows
		rep.DatasetProgress(reporter.DatasetProgress{FeatureRows: featureRows, CostRows: costRows, BytesWritten: bytesWritten})
	}
	rep.RunComplete(summary)

	return summary, nil
}

// compressArea runs one CU's full candidate loop (spec.md §2's
// CandidateEnumerator -> PartitionContextStack -> TryModeFilter ->
// (RD) -> ResultRecorder cycle), recursing into children through the
// driver whenever a split mode is tried. As in Controller.CompressCU, the
// ETM_POST_DONT_SPLIT marker is not sent to the driver: the frame's best
// result so far is recorded under it instead.
func (rs *runState) compressArea(pic *syntheticPicture, slice *syntheticSlice, a area.CodingUnitArea, qtDepth, mtDepth, btDepth int, series uint64) (codec.CodingStructure, error) {
	part := &syntheticPartitioner{
		area:       a,
		qtDepth:    qtDepth,
		mtDepth:    mtDepth,
		btDepth:    btDepth,
		maxQtDepth: rs.params.MaxQTDepth,
		maxMtDepth: rs.params.MaxMTDepth,
	}
	drv := &driver{pic: pic, slice: slice, runner: rs, a: a, qtDepth: qtDepth, mtDepth: mtDepth, btDepth: btDepth, series: series}

	stack := ctxstack.NewPartitionContextStack(rs.enumerator, rs.filter, rs.recorder)
	stack.SetClassifier(rs.classifier)

	frame := stack.BeginCU(a, slice, pic, part)
	frame.SplitSeries = series
	frame.QTBeforeBT = qtDepth < 1

	for {
		m, ok := stack.NextMode(part)
		if !ok {
			break
		}
		if m.Type == mode.ETMPostDontSplit {
			if frame.BestCS != nil {
				stack.RecordResult(m, frame.BestCS)
			}
			continue
		}
		tempCS, err := drv.TryMode(m, part)
		if err != nil {
			continue
		}
		stack.RecordResult(m, tempCS)
	}

	rs.reportVerdicts(a, frame)

	best := frame.BestCS
	if err := stack.EndCU(); err != nil {
		return nil, err
	}
	if best != nil {
		rs.rep.CUDecision(reporter.CUDecisionEvent{Area: a.String(), Mode: "best", Cost: best.Cost(), Adopted: true})
	}
	return best, nil
}

func (rs *runState) reportVerdicts(a area.CodingUnitArea, frame *ctxstack.ComprCUCtx) {
	if !frame.IsFirstMode {
		return
	}
	flags := []struct {
		name string
		d    gate.Decision
	}{
		{"NO_SPLIT", frame.NoSplitFlag},
		{"QT", frame.QTFlag},
		{"HOR", frame.HorFlag},
	}
	for _, f := range flags {
		switch f.d {
		case gate.DecisionForce:
			rs.forced++
		case gate.DecisionForbid:
			rs.forbidden++
		default:
			rs.undecided++
		}
		rs.rep.Verdict(reporter.VerdictEvent{Area: a.String(), Flag: f.name, Decision: f.d.String()})
	}
}
