package mode

import "testing"

func TestType_IsSplit(t *testing.T) {
	split := []Type{ETMSplitQT, ETMSplitBTH, ETMSplitBTV, ETMSplitTTH, ETMSplitTTV}
	for _, tp := range split {
		if !tp.IsSplit() {
			t.Errorf("%v.IsSplit() = false, want true", tp)
		}
	}
	nonSplit := []Type{ETMIntra, ETMInterME, ETMMergeSkip, ETMPostDontSplit, ETMRecoCached}
	for _, tp := range nonSplit {
		if tp.IsSplit() {
			t.Errorf("%v.IsSplit() = true, want false", tp)
		}
	}
}

func TestType_HorizontalVerticalSplit(t *testing.T) {
	if !ETMSplitBTH.IsHorizontalSplit() || !ETMSplitTTH.IsHorizontalSplit() {
		t.Error("expected BT_H/TT_H to be horizontal splits")
	}
	if !ETMSplitBTV.IsVerticalSplit() || !ETMSplitTTV.IsVerticalSplit() {
		t.Error("expected BT_V/TT_V to be vertical splits")
	}
	if ETMSplitBTH.IsVerticalSplit() || ETMSplitQT.IsHorizontalSplit() || ETMSplitQT.IsVerticalSplit() {
		t.Error("QT and cross-axis checks should not misclassify split direction")
	}
}

func TestWithIMV_RoundTrips(t *testing.T) {
	for precision := uint8(0); precision < 4; precision++ {
		opts := WithIMV(ETOStandard, precision)
		if got := IMVPrecision(opts); got != precision {
			t.Errorf("IMVPrecision(WithIMV(.., %d)) = %d, want %d", precision, got, precision)
		}
	}
}

func TestWithIMV_PreservesStandardBit(t *testing.T) {
	opts := WithIMV(ETOStandard, 2)
	if opts&ETOStandard == 0 {
		t.Error("expected ETOStandard bit to survive WithIMV")
	}
}

func TestNewWithIMV(t *testing.T) {
	m := NewWithIMV(ETMInterME, 22, 3)
	if m.Type != ETMInterME || m.QP != 22 || IMVPrecision(m.Opts) != 3 {
		t.Errorf("NewWithIMV produced %+v, want Type=ETM_INTER_ME QP=22 IMV=3", m)
	}
	if m.Opts&ETOStandard == 0 {
		t.Error("expected NewWithIMV to carry ETOStandard")
	}
}

func TestNew_DefaultsToZeroIMV(t *testing.T) {
	m := New(ETMSplitQT, 30)
	if IMVPrecision(m.Opts) != 0 {
		t.Errorf("New() IMV precision = %d, want 0", IMVPrecision(m.Opts))
	}
}

func TestEncTestMode_StringNonEmpty(t *testing.T) {
	m := New(ETMIntra, 32)
	if m.String() == "" {
		t.Error("expected a non-empty String() rendering")
	}
}

func TestType_String_UnknownIsInvalid(t *testing.T) {
	if Type(999).String() != "ETM_INVALID" {
		t.Errorf("Type(999).String() = %q, want ETM_INVALID", Type(999).String())
	}
}
