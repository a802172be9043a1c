// Package controller implements the single-CU driver loop spec.md §2
// describes: CandidateEnumerator pushes onto PartitionContextStack, then
// pop/filter/RD/record repeats until the stack is exhausted.
//
// Grounded on the teacher's internal/tq/state.go round-trip ("pop work,
// run it, record the result, ask for more") rather than its concurrent
// encode_tq.go pipeline: per-CU RD evaluation here is a single external
// callback (codec.RDDriver), not a fan-out of independent work, so no
// worker pool belongs at this layer. Concurrency across sibling splits is
// internal/speculate's concern, one level up, where the caller already
// holds several candidate split CodingStructures to evaluate at once.
package controller

import (
	"github.com/five82/splitforest/internal/area"
	"github.com/five82/splitforest/internal/codec"
	"github.com/five82/splitforest/internal/ctxstack"
	"github.com/five82/splitforest/internal/mode"
)

// Controller drives one CU's candidate-mode exploration against an
// external RD driver, via the wired PartitionContextStack (spec.md §2's
// `CandidateEnumerator → PartitionContextStack` loop).
type Controller struct {
	stack     *ctxstack.PartitionContextStack
	rd        codec.RDDriver
	lastFrame *ctxstack.ComprCUCtx
}

// New wires a PartitionContextStack (itself already carrying its
// Enumerator/ModeFilter/Recorder/Classifier collaborators) to the
// external RD callback.
func New(stack *ctxstack.PartitionContextStack, rd codec.RDDriver) *Controller {
	return &Controller{stack: stack, rd: rd}
}

// CompressCU runs one CU's full candidate loop: BeginCU populates the
// candidate stack, then NextMode/TryMode/RecordResult repeats until the
// stack empties, and EndCU balances the frame (spec.md §2, §4.4).
//
// ETM_POST_DONT_SPLIT is a marker, not an RD candidate: it is never sent to
// the RD driver. When it pops, the frame's best result so far (the best
// non-split result, since split candidates sit beneath the marker) is
// recorded under it, so the recorder can finalize that result; the marker
// itself is never adopted as the best CU.
//
// A per-candidate RD error is non-fatal: spec.md's RD-driver contract
// names only the opaque cost computation, not a recovery policy, so a
// failing candidate is treated as "not worth recording" and exploration
// continues with the next candidate rather than aborting the whole CU.
// EndCU's InvariantViolation (stack imbalance, leftover candidates) is
// the only error CompressCU propagates.
func (c *Controller) CompressCU(a area.CodingUnitArea, slice codec.Slice, pic codec.Picture, part codec.Partitioner) (codec.CodingStructure, error) {
	frame := c.stack.BeginCU(a, slice, pic, part)

	for {
		m, ok := c.stack.NextMode(part)
		if !ok {
			break
		}
		if m.Type == mode.ETMPostDontSplit {
			if frame.BestCS != nil {
				c.stack.RecordResult(m, frame.BestCS)
			}
			continue
		}
		tempCS, err := c.rd.TryMode(m, part)
		if err != nil {
			continue
		}
		c.stack.RecordResult(m, tempCS)
	}

	best := frame.BestCS
	if err := c.stack.EndCU(); err != nil {
		return nil, err
	}
	return best, nil
}
