package ctxstack

import (
	"github.com/five82/splitforest/internal/area"
	"github.com/five82/splitforest/internal/codec"
	"github.com/five82/splitforest/internal/cuerrors"
	"github.com/five82/splitforest/internal/mode"
)

// Enumerator populates a freshly pushed frame's candidate stack
// (spec.md §4.5). Implemented by internal/candidate.
type Enumerator interface {
	Enumerate(frame *ComprCUCtx, slice codec.Slice, part codec.Partitioner)
}

// ModeFilter decides whether a popped candidate should be tried
// (spec.md §4.6). Implemented by internal/tryfilter.
type ModeFilter interface {
	Allow(frame *ComprCUCtx, m mode.EncTestMode, part codec.Partitioner) bool
}

// Recorder updates frame state after an RD attempt (spec.md §4.7).
// Implemented by internal/record.
type Recorder interface {
	Record(frame *ComprCUCtx, m mode.EncTestMode, tempCS codec.CodingStructure) bool
}

// Classifier runs the one-time-per-frame feature extraction and cascaded
// forest evaluation triggered when ETM_POST_DONT_SPLIT pops (spec.md
// §4.4), populating frame's NoSplitFlag/QTFlag/HorFlag and cached feature
// vectors. Implemented by internal/classify. A nil Classifier leaves every
// flag at DecisionUndecided, degrading to the classifier-disabled
// candidate set (spec.md §8's testable property for that case).
type Classifier interface {
	Classify(frame *ComprCUCtx, qp int)
}

// PartitionContextStack is the per-CTU LIFO stack of ComprCUCtx frames
// (spec.md §4.4).
//
// Grounded on the teacher's internal/tq/state.go push/pop discipline,
// extended here with the begin/end balancing invariant spec.md §3 and §7
// require (InvariantViolation on imbalance is fatal).
type PartitionContextStack struct {
	frames     []*ComprCUCtx
	enumerator Enumerator
	filter     ModeFilter
	recorder   Recorder
	classifier Classifier
	current    mode.EncTestMode
}

// NewPartitionContextStack wires the three collaborators that drive
// candidate population, filtering, and result recording.
func NewPartitionContextStack(e Enumerator, f ModeFilter, r Recorder) *PartitionContextStack {
	return &PartitionContextStack{enumerator: e, filter: f, recorder: r}
}

// SetClassifier wires the optional Classifier collaborator. Left unset
// (e.g. for config.ModeOff or in tests that drive the stack directly),
// NextMode simply never computes the classifier flags.
func (s *PartitionContextStack) SetClassifier(c Classifier) {
	s.classifier = c
}

// Depth returns the number of active frames (>1 while a split's children
// are being processed beneath their parent's still-open frame).
func (s *PartitionContextStack) Depth() int {
	return len(s.frames)
}

// Empty reports whether the stack holds no active frames. Callers must
// observe Empty()==true at slice start and end (spec.md §3/§7).
func (s *PartitionContextStack) Empty() bool {
	return len(s.frames) == 0
}

func (s *PartitionContextStack) top() *ComprCUCtx {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// BeginCU pushes a new frame for a, populating its candidate list via the
// wired Enumerator (spec.md §4.4). pic is captured on the frame so the
// classifier trigger at ETM_POST_DONT_SPLIT can run FeatureExtractor
// without its own copy of the codec data-plane handle.
func (s *PartitionContextStack) BeginCU(a area.CodingUnitArea, slice codec.Slice, pic codec.Picture, part codec.Partitioner) *ComprCUCtx {
	frame := NewComprCUCtx(a)
	frame.Picture = pic
	if slice != nil {
		frame.TLayer = slice.TLayer()
		frame.POC = slice.POC()
	}
	s.enumerator.Enumerate(frame, slice, part)
	s.frames = append(s.frames, frame)
	return frame
}

// EndCU pops the top frame, balancing the matching BeginCU. Returns
// InvariantViolation if the stack is empty or the top frame still holds
// unfiltered candidates (spec.md §7).
func (s *PartitionContextStack) EndCU() error {
	top := s.top()
	if top == nil {
		return cuerrors.NewInvariantViolation("endCU called with no active frame")
	}
	if !top.Empty() {
		return cuerrors.NewInvariantViolation("endCU called while candidates remain on the top frame")
	}
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// NextMode pops candidates from the top frame, filtering each through the
// wired ModeFilter, until one passes or the frame is exhausted
// (spec.md §4.4).
func (s *PartitionContextStack) NextMode(part codec.Partitioner) (mode.EncTestMode, bool) {
	frame := s.top()
	if frame == nil {
		return mode.EncTestMode{}, false
	}
	for {
		m, ok := frame.Pop()
		if !ok {
			return mode.EncTestMode{}, false
		}
		if m.Type == mode.ETMPostDontSplit {
			frame.IsFirstMode = true
			if s.classifier != nil {
				s.classifier.Classify(frame, m.QP)
			}
		}
		if s.filter.Allow(frame, m, part) {
			s.current = m
			return m, true
		}
	}
}

// CurrentMode returns the last mode returned by NextMode.
func (s *PartitionContextStack) CurrentMode() mode.EncTestMode {
	return s.current
}

// RecordResult delegates to the wired Recorder against the top frame,
// reporting whether tempCS was adopted as the frame's new best
// (spec.md §4.7).
func (s *PartitionContextStack) RecordResult(m mode.EncTestMode, tempCS codec.CodingStructure) bool {
	frame := s.top()
	if frame == nil {
		return false
	}
	return s.recorder.Record(frame, m, tempCS)
}

// TopFrame exposes the active frame for read-only inspection by callers
// orchestrating recursive descent (e.g. to read classifier flags before
// recursing into split children).
func (s *PartitionContextStack) TopFrame() *ComprCUCtx {
	return s.top()
}
