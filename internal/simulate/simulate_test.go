package simulate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/splitforest/internal/config"
	"github.com/five82/splitforest/internal/forest"
	"github.com/five82/splitforest/internal/reporter"
)

func smallParams() Params {
	p := DefaultParams()
	p.PictureWidth = 32
	p.PictureHeight = 32
	p.CTUSize = 32
	p.MaxQTDepth = 1
	p.MaxMTDepth = 1
	return p
}

func TestRunPredictModeCompletesAndBalancesStack(t *testing.T) {
	cfg := config.NewConfig("test", 32)
	evaluator := forest.NewEvaluator()
	rep := reporter.NullReporter{}

	summary, err := Run(cfg, smallParams(), evaluator, rep)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.CTUsProcessed != 1 {
		t.Fatalf("CTUsProcessed = %d, want 1", summary.CTUsProcessed)
	}
	// With no trained forests loaded, every classifier flag must be
	// undecided (spec.md §4.2's UntrainedShape fallback).
	if summary.ForcedCount != 0 || summary.ForbidCount != 0 {
		t.Fatalf("expected no forced/forbidden verdicts with an empty evaluator, got forced=%d forbid=%d", summary.ForcedCount, summary.ForbidCount)
	}
	if summary.UndecidedCount == 0 {
		t.Fatalf("expected at least one undecided verdict")
	}
}

func TestRunDeterministicAcrossRuns(t *testing.T) {
	cfg := config.NewConfig("test", 32)
	evaluator := forest.NewEvaluator()
	rep := reporter.NullReporter{}
	params := smallParams()

	s1, err := Run(cfg, params, evaluator, rep)
	if err != nil {
		t.Fatalf("Run 1: %v", err)
	}
	s2, err := Run(cfg, params, evaluator, rep)
	if err != nil {
		t.Fatalf("Run 2: %v", err)
	}
	if s1.CTUsProcessed != s2.CTUsProcessed || s1.ForcedCount != s2.ForcedCount ||
		s1.ForbidCount != s2.ForbidCount || s1.UndecidedCount != s2.UndecidedCount {
		t.Fatalf("two runs with the same seed diverged: %+v vs %+v", s1, s2)
	}
}

func TestRunCollectModeWritesDatasetRows(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig("ds", 32)
	cfg.Mode = config.ModeCollect
	cfg.DatasetDir = dir
	evaluator := forest.NewEvaluator()
	rep := reporter.NullReporter{}

	summary, err := Run(cfg, smallParams(), evaluator, rep)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.DatasetRows == 0 {
		t.Fatalf("expected dataset rows to be written in collect mode")
	}

	featuresPath := filepath.Join(dir, "split_features_ds_QP_32.csv")
	if _, err := os.Stat(featuresPath); err != nil {
		t.Fatalf("expected features CSV to exist: %v", err)
	}
	costPath := filepath.Join(dir, "split_cost_ds_QP_32.csv")
	if _, err := os.Stat(costPath); err != nil {
		t.Fatalf("expected cost CSV to exist: %v", err)
	}
}

func TestCompressAreaRecursesIntoSplitChildren(t *testing.T) {
	cfg := config.NewConfig("test", 32)
	evaluator := forest.NewEvaluator()
	params := smallParams()
	params.MaxQTDepth = 2
	params.MaxMTDepth = 2
	params.CTUSize = 64
	params.PictureWidth = 64
	params.PictureHeight = 64

	rep := reporter.NullReporter{}
	summary, err := Run(cfg, params, evaluator, rep)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.CTUsProcessed != 1 {
		t.Fatalf("CTUsProcessed = %d, want 1", summary.CTUsProcessed)
	}
}
