package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFeatureRowFormat(t *testing.T) {
	dir := t.TempDir()
	s := NewSink(dir, "clip", 32)
	defer s.Close()

	if err := s.WriteFeatureRow(7, 16, 16, 32, 48, 0xABCD, FeatureKindQTMTT, []float64{1.5, 2.0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "split_features_clip_QP_32.csv"))
	if err != nil {
		t.Fatalf("expected features file to exist: %v", err)
	}
	line := string(data)
	if !strings.HasPrefix(line, "7;16;16;32;48;43981;0;") {
		t.Fatalf("unexpected row prefix: %q", line)
	}
	if !strings.Contains(line, "1.500000;2.000000;") {
		t.Fatalf("expected formatted floats in row: %q", line)
	}
}

func TestWriteCostRowFormat(t *testing.T) {
	dir := t.TempDir()
	s := NewSink(dir, "clip", 32)
	defer s.Close()

	if err := s.WriteCostRow(7, 16, 16, 32, 48, 99, "ETM_SPLIT_QT", 123.456); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "split_cost_clip_QP_32.csv"))
	if err != nil {
		t.Fatalf("expected cost file to exist: %v", err)
	}
	want := "7;16;16;32;48;99;ETM_SPLIT_QT;123.456000;\n"
	if string(data) != want {
		t.Fatalf("got %q, want %q", string(data), want)
	}
}

func TestAppendAcrossMultipleRows(t *testing.T) {
	dir := t.TempDir()
	s := NewSink(dir, "clip", 32)
	defer s.Close()

	for i := 0; i < 3; i++ {
		if err := s.WriteCostRow(i, 16, 16, 0, 0, 0, "ETM_INTRA", float64(i)); err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "split_cost_clip_QP_32.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 appended rows, got %d: %v", len(lines), lines)
	}
}

func TestStatsTracksRowsAndBytes(t *testing.T) {
	dir := t.TempDir()
	s := NewSink(dir, "clip", 32)
	defer s.Close()

	_ = s.WriteCostRow(0, 16, 16, 0, 0, 0, "ETM_INTRA", 1.0)
	_ = s.WriteFeatureRow(0, 16, 16, 0, 0, 0, FeatureKindQTMTT, []float64{1.0})

	featureRows, costRows, bytesWritten := s.Stats()
	if featureRows != 1 || costRows != 1 {
		t.Fatalf("got featureRows=%d costRows=%d, want 1, 1", featureRows, costRows)
	}
	if bytesWritten == 0 {
		t.Fatalf("expected bytesWritten > 0")
	}
}
