package feature

import (
	"testing"

	"github.com/five82/splitforest/internal/area"
	"github.com/five82/splitforest/internal/cuerrors"
)

// fakePicture is a minimal codec.Picture backed by plain slices, letting
// tests construct exact pixel/MV/SAD fixtures instead of relying on the
// simulate package's hashed synthetic plane.
type fakePicture struct {
	width, height int
	bitDepth      int
	luma          func(x, y int) int
	mv            func(x, y int) (int, int)
	sad           func(x, y int) int
}

func (p *fakePicture) Width() int    { return p.width }
func (p *fakePicture) Height() int   { return p.height }
func (p *fakePicture) BitDepth() int { return p.bitDepth }
func (p *fakePicture) Luma(x, y int) int {
	if p.luma != nil {
		return p.luma(x, y)
	}
	return 0
}
func (p *fakePicture) MV(x, y int) (int, int) {
	if p.mv != nil {
		return p.mv(x, y)
	}
	return 0, 0
}
func (p *fakePicture) SAD(x, y int) int {
	if p.sad != nil {
		return p.sad(x, y)
	}
	return 0
}

func flatPicture(width, height, value int) *fakePicture {
	return &fakePicture{
		width: width, height: height, bitDepth: 8,
		luma: func(x, y int) int { return value },
	}
}

func TestExtract_InsufficientArea(t *testing.T) {
	pic := flatPicture(32, 32, 128)
	a := area.CodingUnitArea{X: 16, Y: 16, Width: 32, Height: 32}
	_, _, err := Extract(Inputs{Area: a, Picture: pic})
	if !cuerrors.IsKind(err, cuerrors.KindInsufficientArea) {
		t.Fatalf("expected InsufficientArea, got %v", err)
	}
}

func TestExtract_FlatRegionSingularFeatures(t *testing.T) {
	// Constant luma, zero MV, zero SAD everywhere: every ratio denominator
	// and the eigen-difference trace are exactly zero (spec.md §8 scenario 1).
	pic := flatPicture(64, 64, 128)
	a := area.CodingUnitArea{X: 0, Y: 0, Width: 8, Height: 8}
	_, _, err := Extract(Inputs{Area: a, Picture: pic})
	if !cuerrors.IsKind(err, cuerrors.KindSingularFeatures) {
		t.Fatalf("expected SingularFeatures, got %v", err)
	}
}

func TestExtract_VectorLengthsAndOrder(t *testing.T) {
	pic := &fakePicture{
		width: 64, height: 64, bitDepth: 8,
		luma: func(x, y int) int { return (x*7 + y*13) % 256 },
		mv: func(x, y int) (int, int) {
			bx, by := x&^3, y&^3
			return (bx % 17) - 8, (by % 11) - 5
		},
		sad: func(x, y int) int {
			bx, by := x&^3, y&^3
			return (bx*3 + by*5) % 200
		},
	}
	a := area.CodingUnitArea{X: 0, Y: 0, Width: 16, Height: 16}
	qt, hv, err := Extract(Inputs{
		Area: a, Picture: pic, TLayer: 3, QP: 32,
		IsIntra: false, IsInter: true, IsMerge: true, IsGeo: false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qt) != QTMTTLen {
		t.Fatalf("QT-vs-MTT vector length = %d, want %d", len(qt), QTMTTLen)
	}
	if len(hv) != HorVerLen {
		t.Fatalf("Hor-vs-Ver vector length = %d, want %d", len(hv), HorVerLen)
	}
	if qt[QTTLayer] != 3 {
		t.Errorf("qt[QTTLayer] = %v, want 3", qt[QTTLayer])
	}
	if qt[QTQP] != 32 {
		t.Errorf("qt[QTQP] = %v, want 32", qt[QTQP])
	}
	if qt[QTIsInter] != 1 || qt[QTIsIntra] != 0 || qt[QTIsMerge] != 1 {
		t.Errorf("qt boolean fields wrong: isInter=%v isIntra=%v isMerge=%v",
			qt[QTIsInter], qt[QTIsIntra], qt[QTIsMerge])
	}
	if hv[HVIsGeo] != 0 {
		t.Errorf("hv[HVIsGeo] = %v, want 0", hv[HVIsGeo])
	}
	if hv[HVTLayer] != 3 || hv[HVQP] != 32 {
		t.Errorf("hv leading fields mismatch: %v %v", hv[HVTLayer], hv[HVQP])
	}
	// The two vectors share their pixel/gradient moments for the whole CU.
	if qt[QTVar] != hv[HVVar] {
		t.Errorf("qt/hv whole-block variance mismatch: %v vs %v", qt[QTVar], hv[HVVar])
	}
}

func TestExtract_HorizontalGradientBiasesRatios(t *testing.T) {
	// A strong horizontal ramp plus a weaker vertical wobble: gradHor
	// dominates gradVer (about twice as large with these values) without
	// either collapsing to exactly zero.
	pic := &fakePicture{
		width: 64, height: 64, bitDepth: 8,
		luma: func(x, y int) int { return x*3 + y%4 },
		mv: func(x, y int) (int, int) {
			bx, by := x&^3, y&^3
			return bx % 13, (by % 7) - 3
		},
		sad: func(x, y int) int { return (x + y) % 64 },
	}
	a := area.CodingUnitArea{X: 0, Y: 0, Width: 64, Height: 64}
	qt, _, err := Extract(Inputs{Area: a, Picture: pic, TLayer: 1, QP: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qt[QTGradHor] <= qt[QTGradVer] {
		t.Errorf("expected gradHor > gradVer, got gradHor=%v gradVer=%v", qt[QTGradHor], qt[QTGradVer])
	}
}

func TestExtract_RatioDenominatorZeroIsSingular(t *testing.T) {
	// Luma varies only along x, never along y: the vertical gradient sum is
	// exactly zero, so gradHor/gradVer's denominator collapses to zero
	// (spec.md §4.1's division-by-zero policy: abort with SingularFeatures).
	pic := &fakePicture{
		width: 16, height: 16, bitDepth: 8,
		luma: func(x, y int) int {
			if x < 8 {
				return (x * 17) % 256
			}
			return 100
		},
		mv:  func(x, y int) (int, int) { return 1, 1 },
		sad: func(x, y int) int { return 5 },
	}
	a := area.CodingUnitArea{X: 0, Y: 0, Width: 16, Height: 16}
	_, _, err := Extract(Inputs{Area: a, Picture: pic})
	if !cuerrors.IsKind(err, cuerrors.KindSingularFeatures) {
		t.Fatalf("expected SingularFeatures from zero ratio denominator, got %v", err)
	}
}
