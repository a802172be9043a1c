package area

import "testing"

func TestIsPowerOfTwoSize(t *testing.T) {
	for _, v := range ValidSizes {
		if !IsPowerOfTwoSize(v) {
			t.Errorf("IsPowerOfTwoSize(%d) = false, want true", v)
		}
	}
	for _, v := range []int{0, 1, 3, 6, 96, 256} {
		if IsPowerOfTwoSize(v) {
			t.Errorf("IsPowerOfTwoSize(%d) = true, want false", v)
		}
	}
}

func TestCodingUnitArea_Valid(t *testing.T) {
	tests := []struct {
		name string
		a    CodingUnitArea
		want bool
	}{
		{"legal 16x16", CodingUnitArea{X: 0, Y: 0, Width: 16, Height: 16}, true},
		{"legal rectangular", CodingUnitArea{X: 4, Y: 8, Width: 32, Height: 8}, true},
		{"negative x", CodingUnitArea{X: -1, Y: 0, Width: 16, Height: 16}, false},
		{"non-power-of-two width", CodingUnitArea{X: 0, Y: 0, Width: 24, Height: 16}, false},
		{"zero height", CodingUnitArea{X: 0, Y: 0, Width: 16, Height: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodingUnitArea_FitsWithin(t *testing.T) {
	a := CodingUnitArea{X: 96, Y: 96, Width: 32, Height: 32}
	if !a.FitsWithin(128, 128) {
		t.Error("expected area to fit exactly within 128x128 picture")
	}
	if a.FitsWithin(127, 128) {
		t.Error("expected area to exceed a 127-wide picture")
	}
	if a.FitsWithin(128, 127) {
		t.Error("expected area to exceed a 127-tall picture")
	}
}

func TestCodingUnitArea_HalfDims(t *testing.T) {
	tests := []struct {
		w, h         int
		halfW, halfH int
	}{
		{16, 16, 8, 8},
		{8, 8, 4, 4},
		{4, 4, 4, 4}, // floor at 4 per spec.md §4.1's max(dim/2, 4)
		{128, 64, 64, 32},
	}
	for _, tt := range tests {
		a := CodingUnitArea{Width: tt.w, Height: tt.h}
		gotW, gotH := a.HalfDims()
		if gotW != tt.halfW || gotH != tt.halfH {
			t.Errorf("HalfDims(%dx%d) = (%d,%d), want (%d,%d)", tt.w, tt.h, gotW, gotH, tt.halfW, tt.halfH)
		}
	}
}

func TestKeyFor(t *testing.T) {
	a := CodingUnitArea{X: 20, Y: 8, Width: 16, Height: 32}
	key, ok := KeyFor(a)
	if !ok {
		t.Fatal("expected KeyFor to succeed for a legal size")
	}
	wantWIdx := SizeIndex(16)
	wantHIdx := SizeIndex(32)
	if key.XIdx != 5 || key.YIdx != 2 || key.WidthIdx != wantWIdx || key.HeightIdx != wantHIdx {
		t.Errorf("KeyFor(%v) = %+v, want XIdx=5 YIdx=2 WidthIdx=%d HeightIdx=%d",
			a, key, wantWIdx, wantHIdx)
	}

	bad := CodingUnitArea{X: 0, Y: 0, Width: 24, Height: 16}
	if _, ok := KeyFor(bad); ok {
		t.Error("expected KeyFor to fail for an illegal width")
	}
}

func TestKeyFor_DistinctPositionsDistinctKeys(t *testing.T) {
	a1 := CodingUnitArea{X: 0, Y: 0, Width: 16, Height: 16}
	a2 := CodingUnitArea{X: 16, Y: 0, Width: 16, Height: 16}
	k1, _ := KeyFor(a1)
	k2, _ := KeyFor(a2)
	if k1 == k2 {
		t.Error("expected distinct positions to produce distinct cache keys")
	}
}
