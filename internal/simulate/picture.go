// Package simulate drives the CU controller over a synthetic picture, in
// place of the real VVC codec this module never implements (spec.md §1's
// "treated as opaque RD evaluators"). It exists to give `cmd/splitforest
// simulate` something genuine to exercise: FeatureExtractor, ForestEvaluator,
// DecisionGate, PartitionContextStack, CandidateEnumerator, TryModeFilter and
// ResultRecorder, wired exactly as a real encoder would wire them, driven
// against deterministic synthetic luma/MV/SAD planes instead of a real
// analysis pass.
package simulate

import (
	"math"

	"github.com/five82/splitforest/internal/codec"
)

// syntheticPicture is a deterministic codec.Picture: luma, MV and SAD
// values are all pure functions of position and a seed, so two runs with
// the same seed produce byte-identical dataset CSV output (spec.md §8's
// round-trip property).
type syntheticPicture struct {
	width, height int
	bitDepth      int
	seed          uint64
}

func newSyntheticPicture(width, height, bitDepth int, seed uint64) *syntheticPicture {
	return &syntheticPicture{width: width, height: height, bitDepth: bitDepth, seed: seed}
}

func (p *syntheticPicture) Width() int    { return p.width }
func (p *syntheticPicture) Height() int   { return p.height }
func (p *syntheticPicture) BitDepth() int { return p.bitDepth }

// splitmix64 is a fixed, well-known integer hash: deterministic, fast, and
// free of any dependency on wall-clock time or global PRNG state.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

func (p *syntheticPicture) hash(x, y int, salt uint64) uint64 {
	return splitmix64(uint64(x)*2654435761 ^ uint64(y)*40503 ^ p.seed ^ salt)
}

// Luma returns a smoothly varying synthetic sample with a left-to-right
// gradient plus low-amplitude hashed texture, so left and right quadrants
// differ in a controlled, reproducible way while top and bottom quadrants
// differ only by the hashed texture (useful for exercising the Hor-vs-Ver
// classifier's ratio features).
func (p *syntheticPicture) Luma(x, y int) int {
	maxVal := (1 << p.bitDepth) - 1
	base := maxVal / 2
	gradient := int(math.Round(float64(x) / float64(max(p.width, 1)) * float64(maxVal) / 4))
	texture := int(p.hash(x, y, 1) % 17)
	v := base + gradient - maxVal/8 + texture
	if v < 0 {
		v = 0
	}
	if v > maxVal {
		v = maxVal
	}
	return v
}

// MV returns a quarter-pel motion vector for the 4x4 block covering
// (x,y): a slow horizontal drift plus hashed jitter, granular at 4x4.
func (p *syntheticPicture) MV(x, y int) (horQPel, verQPel int) {
	bx, by := x&^3, y&^3
	hor := int(p.hash(bx, by, 2)%33) - 16 + bx/16
	ver := int(p.hash(bx, by, 3)%17) - 8
	return hor, ver
}

// SAD returns the 4x4-granular SAD error map value at (x,y).
func (p *syntheticPicture) SAD(x, y int) int {
	bx, by := x&^3, y&^3
	return int(p.hash(bx, by, 4) % 256)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// syntheticSlice is a minimal codec.Slice: one inter (B) slice at a fixed
// temporal layer and base QP, the common case the spec's split-pruning
// subsystem targets (spec.md §1, "every non-leaf inter-slice CU").
type syntheticSlice struct {
	poc    int
	tLayer int
	baseQP int
}

func (s *syntheticSlice) POC() int    { return s.poc }
func (s *syntheticSlice) IsIntra() bool {
	return false
}

// SliceType satisfies codec.Slice; simulate always drives inter (B)
// slices, the case spec.md §1 targets.
func (s *syntheticSlice) SliceType() codec.SliceType { return codec.SliceB }

func (s *syntheticSlice) TLayer() int { return s.tLayer }
func (s *syntheticSlice) BaseQP() int { return s.baseQP }
