// Package stats implements StatsSink: the observability counter
// capability spec.md §9 calls for in place of the baseline encoder's
// global stats-counter arrays ("size*_H_btDepth__2[…]").
//
// Grounded on the teacher's internal/reporter's "pass a capability by
// reference, never reach for a global" discipline; here the capability
// is a single counting map rather than an event fan-out, since stats are
// pure in-process observability with no persistence across runs
// (spec.md §9).
package stats

import (
	"sync"

	"github.com/five82/splitforest/internal/mode"
)

// Shape is the (width, height) a counter is bucketed by.
type Shape struct {
	Width  int
	Height int
}

type key struct {
	shape    Shape
	split    mode.Type
	depth    int
	category string
}

// Sink is an in-process (shape, split, depth, category) -> counter map.
// It never persists across runs: a new Sink is created per encoder
// invocation.
type Sink struct {
	mu     sync.Mutex
	counts map[key]int64
}

// NewSink returns an empty counter sink.
func NewSink() *Sink {
	return &Sink{counts: make(map[key]int64)}
}

// Count increments the counter for (shape, split, depth, category) by one.
func (s *Sink) Count(shape Shape, split mode.Type, depth int, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key{shape, split, depth, category}]++
}

// Get returns the current counter value for (shape, split, depth, category).
func (s *Sink) Get(shape Shape, split mode.Type, depth int, category string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[key{shape, split, depth, category}]
}

// Total returns the sum of every counter recorded, regardless of bucket.
func (s *Sink) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, v := range s.counts {
		total += v
	}
	return total
}
