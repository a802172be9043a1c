// Package config provides configuration types and defaults for the
// splitforest CU controller.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects whether the controller prunes candidates, only records
// training data, or runs with the classifier disabled entirely.
type Mode int

const (
	ModePredict Mode = iota
	ModeCollect
	ModeOff
)

func (m Mode) String() string {
	switch m {
	case ModePredict:
		return "predict"
	case ModeCollect:
		return "collect"
	default:
		return "off"
	}
}

var ErrInvalidMode = errors.New("config: invalid mode")

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "predict":
		return ModePredict, nil
	case "collect":
		return ModeCollect, nil
	case "off":
		return ModeOff, nil
	default:
		return ModeOff, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Thresholds are the DecisionGate thresholds for each of the three
// cascaded classifier branches (spec.md §4.3/§6).
type Thresholds struct {
	NoSplit float64
	QT      float64
	Hor     float64
}

// DefaultThreshold is the compile-time selector default (spec.md §6 lists
// {0.50, 0.75, 0.85, 0.90, 0.95, 0.975, PCA_TABLE}).
const DefaultThreshold = 0.5

// DefaultThresholds returns the uniform default-threshold bundle.
func DefaultThresholds() Thresholds {
	return Thresholds{NoSplit: DefaultThreshold, QT: DefaultThreshold, Hor: DefaultThreshold}
}

func (t Thresholds) String() string {
	return fmt.Sprintf("noSplit=%.3f, qt=%.3f, hor=%.3f", t.NoSplit, t.QT, t.Hor)
}

// Validate checks a threshold bundle is within [0.5, 1.0], the legal range
// for DecisionGate's force/forbid split point (spec.md §6 lists 0.50 as a
// legal selector value alongside 0.75/0.85/0.90/0.95/0.975).
func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{"noSplit": t.NoSplit, "qt": t.QT, "hor": t.Hor} {
		if v < 0.5 || v > 1.0 {
			return fmt.Errorf("%w: threshold %s must be in [0.5, 1.0], got %g", ErrInvalidThreshold, name, v)
		}
	}
	return nil
}

var ErrInvalidThreshold = errors.New("config: invalid threshold")

// PCAShapeKey identifies a CU shape for a per-shape PCA threshold lookup.
type PCAShapeKey struct {
	Width, Height int
}

// PCAShapeThresholds is a single shape's PCA-derived threshold pair
// (spec.md §6 "pcaThresholdQT, pcaThresholdHor").
type PCAShapeThresholds struct {
	QT  float64
	Hor float64
}

// Default worker-pool sizing fractions for speculative split evaluation.
const (
	DefaultMemoryFraction = 0.5
)

// Config holds all configuration for a splitforest controller run.
type Config struct {
	// Mode selects predict/collect/off behavior.
	Mode Mode

	// Thresholds are applied uniformly to all CU shapes unless PCAThresholds
	// supplies a per-shape override.
	Thresholds Thresholds

	// PCAThresholds is an optional per-shape threshold table (spec.md §9,
	// Open Question: "the exact PCA-threshold table is not present inline").
	// Nil means the uniform Thresholds bundle applies to every shape.
	PCAThresholds map[PCAShapeKey]PCAShapeThresholds

	// Parallel records whether optional split-level speculative RD fan-out
	// (spec.md §5, "off by default") is requested. It is validated and
	// reported; no driver in this module reads it to start a
	// speculate.Runner.
	Parallel bool
	// Workers bounds the number of concurrent speculative RD evaluations.
	Workers int

	// DatasetDir is the directory dataset-mode CSV sinks are written into.
	DatasetDir string
	// Basename and QP identify the dataset sink file-name tuple
	// (spec.md §6, "split_features_<basename>_QP_<qp>.csv").
	Basename string
	QP       int

	// Verbose enables extra diagnostic logging.
	Verbose bool
}

// NewConfig creates a new Config with default values for the given
// dataset basename and QP.
func NewConfig(basename string, qp int) *Config {
	return &Config{
		Mode:       ModePredict,
		Thresholds: DefaultThresholds(),
		Parallel:   false,
		Workers:    1,
		DatasetDir: ".",
		Basename:   basename,
		QP:         qp,
	}
}

// ThresholdsFor returns the effective threshold bundle for a CU shape,
// preferring a PCA-table entry over the uniform Thresholds.
func (c *Config) ThresholdsFor(width, height int) Thresholds {
	if c.PCAThresholds != nil {
		if pca, ok := c.PCAThresholds[PCAShapeKey{Width: width, Height: height}]; ok {
			return Thresholds{NoSplit: c.Thresholds.NoSplit, QT: pca.QT, Hor: pca.Hor}
		}
	}
	return c.Thresholds
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.Parallel && c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1 when parallel is enabled, got %d", ErrInvalidWorkers, c.Workers)
	}
	if c.Mode == ModeCollect && c.DatasetDir == "" {
		return fmt.Errorf("%w: dataset_dir required in collect mode", ErrInvalidDatasetDir)
	}
	return nil
}

var (
	ErrInvalidWorkers    = errors.New("config: invalid worker count")
	ErrInvalidDatasetDir = errors.New("config: invalid dataset directory")
)
