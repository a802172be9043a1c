package forest

import (
	"github.com/five82/splitforest/internal/cuerrors"
)

// Kind identifies which of the two cascaded classifiers an Evaluate call
// targets.
type Kind int

const (
	KindQTMTT Kind = iota
	KindHorVer
)

func (k Kind) String() string {
	if k == KindQTMTT {
		return "QT_MTT"
	}
	return "HOR_VER"
}

// UndecidedProbability is the sentinel returned for shapes with no trained
// classifier, meaning "undecided" once thresholded by DecisionGate.
const UndecidedProbability = 0.5

// Shape is a trained (width, height) key.
type Shape struct {
	Width, Height int
}

// entry is the trained resource for one (kind, shape): a feature selector
// and the trees of the ensemble.
type entry struct {
	selectorIndices []int
	trees           []*Tree
}

// Evaluator owns the trained forests for both classifier kinds, keyed by
// CU shape. It is read-only after construction; forest data is loaded once
// at startup per spec.md §5.
type Evaluator struct {
	entries map[Kind]map[Shape]*entry
}

// NewEvaluator returns an empty evaluator. Use Register to load trees.
func NewEvaluator() *Evaluator {
	return &Evaluator{entries: make(map[Kind]map[Shape]*entry)}
}

// Register installs the trained ensemble for one (kind, shape) pair.
// selectorIndices is the ordered list of feature-vector indices the trees
// were trained against, in the order tree nodes' FeatureOrdinal refers to.
func (e *Evaluator) Register(kind Kind, shape Shape, selectorIndices []int, trees []*Tree) {
	m, ok := e.entries[kind]
	if !ok {
		m = make(map[Shape]*entry)
		e.entries[kind] = m
	}
	m[shape] = &entry{selectorIndices: selectorIndices, trees: trees}
}

// supportedQTMTTShapes and supportedHorVerShapes enumerate the CU shapes
// the classifiers were trained on, per spec.md §4.2.
var supportedQTMTTShapes = func() map[Shape]struct{} {
	m := make(map[Shape]struct{})
	for _, s := range []int{16, 32, 64, 128} {
		m[Shape{Width: s, Height: s}] = struct{}{}
	}
	return m
}()

var supportedHorVerShapes = func() map[Shape]struct{} {
	m := make(map[Shape]struct{})
	sizes := []int{8, 16, 32, 64}
	for _, w := range sizes {
		for _, h := range sizes {
			m[Shape{Width: w, Height: h}] = struct{}{}
		}
	}
	m[Shape{Width: 128, Height: 128}] = struct{}{}
	return m
}()

// IsSupported reports whether kind has a trained classifier for the given
// shape.
func IsSupported(kind Kind, width, height int) bool {
	shape := Shape{Width: width, Height: height}
	if kind == KindQTMTT {
		_, ok := supportedQTMTTShapes[shape]
		return ok
	}
	_, ok := supportedHorVerShapes[shape]
	return ok
}

// Evaluate projects features through the trained selector for (kind,
// width, height), averages the per-tree leaf probabilities, and returns
// the result in [0,1]. For an untrained shape it returns the sentinel 0.5
// alongside an UntrainedShape error (spec.md §4.2/§7); callers treat that
// as "all flags undecided" rather than a fatal condition.
func (e *Evaluator) Evaluate(kind Kind, width, height int, features []float64) (float64, error) {
	shape := Shape{Width: width, Height: height}
	m, ok := e.entries[kind]
	if !ok {
		return UndecidedProbability, cuerrors.NewUntrainedShape(width, height)
	}
	ent, ok := m[shape]
	if !ok {
		return UndecidedProbability, cuerrors.NewUntrainedShape(width, height)
	}

	sub := make([]float64, len(ent.selectorIndices))
	for i, idx := range ent.selectorIndices {
		sub[i] = features[idx]
	}

	if len(ent.trees) == 0 {
		return UndecidedProbability, nil
	}
	var sum float64
	for _, tree := range ent.trees {
		sum += tree.Eval(sub)
	}
	return sum / float64(len(ent.trees)), nil
}
