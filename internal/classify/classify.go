// Package classify implements the one-time-per-frame classifier trigger
// fired when ETM_POST_DONT_SPLIT pops (spec.md §4.4): feature extraction,
// cascaded forest evaluation, and threshold gating, wired together into a
// single ctxstack.Classifier.
//
// Grounded on the teacher's internal/tq/tracker.go CRFTracker.Predict
// pattern of feeding extracted signal through a trained model into a
// bounded decision, adapted here to the three-flag cascade spec.md §4.2
// and §4.3 describe.
package classify

import (
	"github.com/five82/splitforest/internal/config"
	"github.com/five82/splitforest/internal/ctxstack"
	"github.com/five82/splitforest/internal/feature"
	"github.com/five82/splitforest/internal/forest"
	"github.com/five82/splitforest/internal/gate"
)

// Classifier is the concrete ctxstack.Classifier tying FeatureExtractor,
// ForestEvaluator, and DecisionGate together.
type Classifier struct {
	evaluator *forest.Evaluator
	cfg       *config.Config
}

// NewClassifier wires the trained forests and the threshold/mode
// configuration that governs how their probabilities are used.
func NewClassifier(evaluator *forest.Evaluator, cfg *config.Config) *Classifier {
	return &Classifier{evaluator: evaluator, cfg: cfg}
}

// Classify implements ctxstack.Classifier. qp is the QP the
// ETM_POST_DONT_SPLIT candidate carried (spec.md §4.1's "qp" input).
//
// In config.ModeOff it is a no-op: flags stay DecisionUndecided, which
// TryModeFilter's classifierGates stage treats as "no opinion", so the
// full candidate set survives unpruned (spec.md §8's classifier-disabled
// testable property).
//
// Resolved open question: spec.md §4.2 names only two forests
// (QT-vs-MTT, Hor-vs-Ver) but §4.3 thresholds three flags
// (NO_SPLIT_FLAG, QT_FLAG, HOR_FLAG). The QT-vs-MTT forest's probability
// feeds both NO_SPLIT_FLAG (against Thresholds.NoSplit) and QT_FLAG
// (against Thresholds.QT) — it is the same underlying question ("should
// this CU split at all, and if so, with a quad split") read at two
// threshold points — while the Hor-vs-Ver forest feeds HOR_FLAG alone.
// See DESIGN.md.
func (c *Classifier) Classify(frame *ctxstack.ComprCUCtx, qp int) {
	if c.cfg.Mode == config.ModeOff {
		return
	}

	in := feature.Inputs{
		Area:    frame.Area,
		Picture: frame.Picture,
		TLayer:  frame.TLayer,
		QP:      qp,
	}
	if best := frame.BestCS; best != nil {
		in.IsIntra = best.IsIntra()
		in.IsInter = best.IsInter()
		in.IsMerge = best.IsMerge()
		in.IsGeo = best.IsGeo()
	}

	qtVec, hvVec, err := feature.Extract(in)
	if err != nil {
		// InsufficientArea or SingularFeatures: leave every flag at its
		// NewComprCUCtx-initialized DecisionUndecided (spec.md §4.1).
		return
	}
	frame.QTMTTFeatures = qtVec[:]
	frame.HorVerFeatures = hvVec[:]

	// Dataset-collection mode only needs the cached feature vectors for
	// DatasetSink rows; it must not prune, so the gates below are skipped.
	if c.cfg.Mode != config.ModePredict {
		return
	}

	thresholds := c.cfg.ThresholdsFor(frame.Area.Width, frame.Area.Height)

	if forest.IsSupported(forest.KindQTMTT, frame.Area.Width, frame.Area.Height) {
		if p, err := c.evaluator.Evaluate(forest.KindQTMTT, frame.Area.Width, frame.Area.Height, frame.QTMTTFeatures); err == nil {
			frame.NoSplitFlag = gate.Evaluate(p, thresholds.NoSplit)
			// spec.md §4.3: QT_FLAG is queried only if NO_SPLIT_FLAG != force.
			if frame.NoSplitFlag != gate.DecisionForce {
				frame.QTFlag = gate.Evaluate(p, thresholds.QT)
			}
		}
	}

	// spec.md §4.3: HOR_FLAG is queried only if QT_FLAG != force.
	if frame.QTFlag == gate.DecisionForce {
		return
	}
	if forest.IsSupported(forest.KindHorVer, frame.Area.Width, frame.Area.Height) {
		if p, err := c.evaluator.Evaluate(forest.KindHorVer, frame.Area.Width, frame.Area.Height, frame.HorVerFeatures); err == nil {
			frame.HorFlag = gate.Evaluate(p, thresholds.Hor)
		}
	}
}
