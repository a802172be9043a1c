// Package area defines the rectangular coding-unit geometry shared by the
// rest of the splitforest controller.
package area

import "fmt"

// ValidSizes enumerates the legal power-of-two CU side lengths in luma
// samples, from the smallest 4x4 leaf to a 128x128 CTU.
var ValidSizes = [...]int{4, 8, 16, 32, 64, 128}

// CodingUnitArea is a rectangle in luma samples. Width and height are
// always powers of two in {4,8,16,32,64,128}.
type CodingUnitArea struct {
	X, Y          int
	Width, Height int
}

// IsPowerOfTwoSize reports whether v is one of the legal CU side lengths.
func IsPowerOfTwoSize(v int) bool {
	for _, s := range ValidSizes {
		if s == v {
			return true
		}
	}
	return false
}

// Valid reports whether the area's own geometry is well-formed: positive,
// power-of-two sized, and square-or-rectangular within the legal sizes.
func (a CodingUnitArea) Valid() bool {
	return IsPowerOfTwoSize(a.Width) && IsPowerOfTwoSize(a.Height) && a.X >= 0 && a.Y >= 0
}

// FitsWithin reports whether the area's +width/+height stays within a
// picture of the given dimensions (the spec's "x+width <= pictureWidth,
// y+height <= pictureHeight" invariant).
func (a CodingUnitArea) FitsWithin(pictureWidth, pictureHeight int) bool {
	return a.X+a.Width <= pictureWidth && a.Y+a.Height <= pictureHeight
}

// HalfDims returns the quadrant half-width/half-height used by
// FeatureExtractor's quadrant partitioning: max(dim/2, 4).
func (a CodingUnitArea) HalfDims() (halfW, halfH int) {
	halfW = a.Width / 2
	if halfW < 4 {
		halfW = 4
	}
	halfH = a.Height / 2
	if halfH < 4 {
		halfH = 4
	}
	return halfW, halfH
}

// String renders the area as "WxH@(X,Y)" for logging.
func (a CodingUnitArea) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", a.Width, a.Height, a.X, a.Y)
}

// Key identifies an area's shape/position for the BlockInfoCache-style
// 4-tuple lookups: positions in 4-sample units, width/height as dense
// enumeration indices computed by the caller.
type Key struct {
	XIdx, YIdx         int
	WidthIdx, HeightIdx int
}

// SizeIndex returns the dense index of a legal CU side length within
// ValidSizes, or -1 if v is not a legal size.
func SizeIndex(v int) int {
	for i, s := range ValidSizes {
		if s == v {
			return i
		}
	}
	return -1
}

// KeyFor builds the 4-D cache key for an area: positions in 4-sample
// units, sizes as dense ValidSizes indices.
func KeyFor(a CodingUnitArea) (Key, bool) {
	wIdx := SizeIndex(a.Width)
	hIdx := SizeIndex(a.Height)
	if wIdx < 0 || hIdx < 0 {
		return Key{}, false
	}
	return Key{
		XIdx:     a.X / 4,
		YIdx:     a.Y / 4,
		WidthIdx: wIdx,
		HeightIdx: hIdx,
	}, true
}
