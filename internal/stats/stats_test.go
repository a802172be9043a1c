package stats

import (
	"testing"

	"github.com/five82/splitforest/internal/mode"
)

func TestCountAndGet(t *testing.T) {
	s := NewSink()
	shape := Shape{Width: 32, Height: 32}

	s.Count(shape, mode.ETMSplitQT, 2, "adopted")
	s.Count(shape, mode.ETMSplitQT, 2, "adopted")
	s.Count(shape, mode.ETMSplitBTH, 2, "adopted")

	if got := s.Get(shape, mode.ETMSplitQT, 2, "adopted"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := s.Get(shape, mode.ETMSplitBTH, 2, "adopted"); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := s.Get(shape, mode.ETMSplitQT, 3, "adopted"); got != 0 {
		t.Errorf("expected 0 for an unrecorded depth, got %d", got)
	}
}

func TestTotal(t *testing.T) {
	s := NewSink()
	shape := Shape{Width: 16, Height: 16}
	s.Count(shape, mode.ETMIntra, 1, "tried")
	s.Count(shape, mode.ETMInterME, 1, "tried")
	s.Count(shape, mode.ETMInterME, 1, "tried")

	if got := s.Total(); got != 3 {
		t.Errorf("expected total 3, got %d", got)
	}
}
