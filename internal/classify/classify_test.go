package classify

import (
	"testing"

	"github.com/five82/splitforest/internal/area"
	"github.com/five82/splitforest/internal/config"
	"github.com/five82/splitforest/internal/ctxstack"
	"github.com/five82/splitforest/internal/feature"
	"github.com/five82/splitforest/internal/forest"
	"github.com/five82/splitforest/internal/gate"
)

// linearPicture is a synthetic 64x64 picture whose luma/MV/SAD planes
// vary linearly with position, which keeps every ratio feature's
// denominator away from zero (spec.md §4.1's division policy) without
// needing a real decoded frame.
type linearPicture struct{}

func (linearPicture) Width() int         { return 64 }
func (linearPicture) Height() int        { return 64 }
func (linearPicture) BitDepth() int      { return 8 }
func (linearPicture) Luma(x, y int) int  { return x + 2*y }
func (linearPicture) MV(x, y int) (int, int) { return x + 1, 2*y + 1 }
func (linearPicture) SAD(x, y int) int   { return x + y + 1 }

func leaf(p float64) *forest.Node {
	return &forest.Node{Leaf: true, Probability: p}
}

func newFrame() *ctxstack.ComprCUCtx {
	frame := ctxstack.NewComprCUCtx(area.CodingUnitArea{X: 0, Y: 0, Width: 32, Height: 32})
	frame.Picture = linearPicture{}
	return frame
}

func TestClassifyModeOffSkipsEverything(t *testing.T) {
	cfg := config.NewConfig("clip", 32)
	cfg.Mode = config.ModeOff
	c := NewClassifier(forest.NewEvaluator(), cfg)

	frame := newFrame()
	c.Classify(frame, 32)

	if frame.QTMTTFeatures != nil || frame.HorVerFeatures != nil {
		t.Fatal("expected no feature extraction in ModeOff")
	}
	if frame.NoSplitFlag != gate.DecisionUndecided || frame.QTFlag != gate.DecisionUndecided || frame.HorFlag != gate.DecisionUndecided {
		t.Fatal("expected every flag undecided in ModeOff")
	}
}

func TestClassifyModeCollectExtractsButDoesNotGate(t *testing.T) {
	evaluator := forest.NewEvaluator()
	evaluator.Register(forest.KindQTMTT, forest.Shape{Width: 32, Height: 32}, []int{0}, []*forest.Tree{{Root: leaf(0.99)}})

	cfg := config.NewConfig("clip", 32)
	cfg.Mode = config.ModeCollect
	c := NewClassifier(evaluator, cfg)

	frame := newFrame()
	c.Classify(frame, 32)

	if len(frame.QTMTTFeatures) != 34 || len(frame.HorVerFeatures) != 45 {
		t.Fatalf("expected cached feature vectors of the spec lengths, got %d/%d",
			len(frame.QTMTTFeatures), len(frame.HorVerFeatures))
	}
	if frame.NoSplitFlag != gate.DecisionUndecided || frame.QTFlag != gate.DecisionUndecided || frame.HorFlag != gate.DecisionUndecided {
		t.Fatal("expected collect mode to leave flags undecided despite a trained forest")
	}
}

func TestClassifyQTMTTForestFeedsBothNoSplitAndQTFlags(t *testing.T) {
	evaluator := forest.NewEvaluator()
	evaluator.Register(forest.KindQTMTT, forest.Shape{Width: 32, Height: 32}, []int{0}, []*forest.Tree{{Root: leaf(0.9)}})

	cfg := config.NewConfig("clip", 32)
	cfg.Thresholds = config.Thresholds{NoSplit: 0.95, QT: 0.75, Hor: 0.6}
	c := NewClassifier(evaluator, cfg)

	frame := newFrame()
	c.Classify(frame, 32)

	if frame.NoSplitFlag != gate.DecisionUndecided {
		t.Fatalf("expected NoSplitFlag undecided (p=0.9 within (0.05,0.95)), got %v", frame.NoSplitFlag)
	}
	if frame.QTFlag != gate.DecisionForce {
		t.Fatalf("expected QTFlag force (p=0.9 > 0.75), got %v", frame.QTFlag)
	}
	if frame.HorFlag != gate.DecisionUndecided {
		t.Fatal("expected HorFlag short-circuited to undecided once QTFlag forced")
	}
}

func TestClassifyHorVerForestOnlyConsultedWhenQTUndecided(t *testing.T) {
	evaluator := forest.NewEvaluator()
	evaluator.Register(forest.KindQTMTT, forest.Shape{Width: 32, Height: 32}, []int{0}, []*forest.Tree{{Root: leaf(0.9)}})
	evaluator.Register(forest.KindHorVer, forest.Shape{Width: 32, Height: 32}, []int{0}, []*forest.Tree{{Root: leaf(0.8)}})

	cfg := config.NewConfig("clip", 32)
	cfg.Thresholds = config.Thresholds{NoSplit: 0.99, QT: 0.99, Hor: 0.55}
	c := NewClassifier(evaluator, cfg)

	frame := newFrame()
	c.Classify(frame, 32)

	if frame.QTFlag != gate.DecisionUndecided {
		t.Fatalf("expected QTFlag undecided (p=0.9 within (0.01,0.99)), got %v", frame.QTFlag)
	}
	if frame.HorFlag != gate.DecisionForce {
		t.Fatalf("expected HorFlag force (p=0.8 > 0.55), got %v", frame.HorFlag)
	}
}

func TestClassifyUsesBestCSForPredictionInputBooleans(t *testing.T) {
	evaluator := forest.NewEvaluator()
	c := NewClassifier(evaluator, config.NewConfig("clip", 32))

	frame := newFrame()
	frame.TryAdopt(fakeCS{isInter: true, isMerge: true})
	c.Classify(frame, 32)

	if frame.QTMTTFeatures[feature.QTIsInter] != 1 {
		t.Fatal("expected QTMTTFeatures' isInter field derived from frame.BestCS")
	}
}

type fakeCS struct {
	isIntra, isInter, isMerge, isGeo bool
}

func (f fakeCS) Area() area.CodingUnitArea        { return area.CodingUnitArea{Width: 32, Height: 32} }
func (f fakeCS) Cost() float64                    { return 0 }
func (f fakeCS) FracBits() float64                { return 0 }
func (f fakeCS) Dist() float64                    { return 0 }
func (f fakeCS) IsIntra() bool                    { return f.isIntra }
func (f fakeCS) IsInter() bool                    { return f.isInter }
func (f fakeCS) IsMerge() bool                    { return f.isMerge }
func (f fakeCS) IsGeo() bool                      { return f.isGeo }
func (f fakeCS) IsSkip() bool                     { return false }
func (f fakeCS) IsIBC() bool                      { return false }
func (f fakeCS) BcwIdx() int                      { return 0 }
func (f fakeCS) ChildDims() []area.CodingUnitArea { return nil }
