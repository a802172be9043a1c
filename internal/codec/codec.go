// Package codec declares the interfaces the splitforest controller consumes
// from the surrounding VVC codec. Every type here is an external
// collaborator per spec.md §1/§6: bitstream syntax, entropy coding,
// transform/quantization and intra/inter prediction are opaque behind
// these contracts and are never implemented by this module.
package codec

import (
	"github.com/five82/splitforest/internal/area"
	"github.com/five82/splitforest/internal/mode"
)

// SliceType mirrors the VVC slice-type enumeration relevant to candidate
// enumeration (I/P/B).
type SliceType int

const (
	SliceI SliceType = iota
	SliceP
	SliceB
)

// Slice exposes the subset of slice-header state the controller needs.
type Slice interface {
	POC() int
	IsIntra() bool
	SliceType() SliceType
	TLayer() int
	BaseQP() int
}

// Picture exposes picture-wide analysis-pass outputs: the luma plane, the
// 4x4-granular motion-vector field, and the 4x4-granular SAD error map.
// Populated by a prior analysis pass that is itself out of scope.
type Picture interface {
	Width() int
	Height() int
	// Luma returns the original luma sample at (x,y), bit-depth per
	// BitDepth(). Samples outside picture bounds are never queried.
	Luma(x, y int) int
	BitDepth() int
	// MV returns the 4x4-granular motion vector covering pixel (x,y), in
	// quarter-pel units.
	MV(x, y int) (horQPel, verQPel int)
	// SAD returns the 4x4-granular SAD error covering pixel (x,y).
	SAD(x, y int) int
}

// CodingStructure is the RD-evaluation result container: the opaque
// product of invoking the external RD driver for a given mode.
type CodingStructure interface {
	Area() area.CodingUnitArea
	Cost() float64
	FracBits() float64
	Dist() float64
	IsIntra() bool
	IsInter() bool
	IsMerge() bool
	IsGeo() bool
	IsSkip() bool
	IsIBC() bool
	BcwIdx() int
	// ChildDims reports the coding-tree dimensions of the two (BT/TT) or
	// four (QT) children produced by a split mode, in split order. Empty
	// for non-split modes. Used by ResultRecorder to derive
	// MAX_QT_SUB_DEPTH and DO_TRIH/V_SPLIT (spec.md §4.7).
	ChildDims() []area.CodingUnitArea
}

// Partitioner exposes partition-tree traversal state and the legality
// oracle for candidate split types.
type Partitioner interface {
	CurrQtDepth() int
	CurrMtDepth() int
	CurrBtDepth() int
	CanSplit(kind mode.Type) bool
	ImplicitSplit() mode.Type // mode.ETMInvalid if none
	IsConsIntra() bool
	IsConsInter() bool
}

// RDDriver is the opaque RD-evaluation callback: given an encoding test
// mode, a partial coding structure and a partitioner, it returns a
// temporary coding structure with (distortion, fracBits, cost) populated.
// This is the only point at which actual RD search happens; the
// controller never computes cost itself.
type RDDriver interface {
	TryMode(m mode.EncTestMode, partitioner Partitioner) (CodingStructure, error)
}
