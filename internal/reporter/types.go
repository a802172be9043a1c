// Package reporter provides progress reporting interfaces and
// implementations for the splitforest CU controller.
package reporter

import "time"

// RunConfig summarizes the controller configuration at startup.
type RunConfig struct {
	Mode       string // "predict", "collect", "off"
	Thresholds string // rendered "noSplit=.., qt=.., hor=.."
	Workers    int
	Parallel   bool
	InputFile  string
}

// CTUInfo identifies a CTU about to be processed.
type CTUInfo struct {
	POC    int
	X, Y   int
	Width  int
	Height int
}

// VerdictEvent reports one DecisionGate verdict for a CU branch.
type VerdictEvent struct {
	Area        string
	Flag        string // "NO_SPLIT", "QT", "HOR"
	Decision    string // "force", "forbid", "undecided"
	Probability float64
}

// CUDecisionEvent reports the outcome of trying one candidate mode.
type CUDecisionEvent struct {
	Area    string
	Mode    string
	Cost    float64
	Adopted bool
}

// DatasetProgress reports cumulative dataset-sink row counts and the
// total bytes appended to the feature/cost CSV files so far.
type DatasetProgress struct {
	FeatureRows  int
	CostRows     int
	BytesWritten uint64
}

// RunSummary contains final run statistics.
type RunSummary struct {
	CTUsProcessed  int
	ForcedCount    int
	ForbidCount    int
	UndecidedCount int
	DatasetRows    int
	Elapsed        time.Duration
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}
