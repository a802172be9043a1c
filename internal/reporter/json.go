package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs NDJSON events, one per line.
type JSONReporter struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{writer: os.Stdout}
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) RunStarted(config RunConfig) {
	r.write(map[string]interface{}{
		"type":       "run_started",
		"input_file": config.InputFile,
		"mode":       config.Mode,
		"thresholds": config.Thresholds,
		"workers":    config.Workers,
		"parallel":   config.Parallel,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) CTUStarted(info CTUInfo) {
	r.write(map[string]interface{}{
		"type":      "ctu_started",
		"poc":       info.POC,
		"x":         info.X,
		"y":         info.Y,
		"width":     info.Width,
		"height":    info.Height,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Verdict(event VerdictEvent) {
	r.write(map[string]interface{}{
		"type":        "verdict",
		"area":        event.Area,
		"flag":        event.Flag,
		"decision":    event.Decision,
		"probability": event.Probability,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) CUDecision(event CUDecisionEvent) {
	r.write(map[string]interface{}{
		"type":      "cu_decision",
		"area":      event.Area,
		"mode":      event.Mode,
		"cost":      event.Cost,
		"adopted":   event.Adopted,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) DatasetProgress(progress DatasetProgress) {
	r.write(map[string]interface{}{
		"type":          "dataset_progress",
		"feature_rows":  progress.FeatureRows,
		"cost_rows":     progress.CostRows,
		"bytes_written": progress.BytesWritten,
		"timestamp":     r.timestamp(),
	})
}

func (r *JSONReporter) RunComplete(summary RunSummary) {
	r.write(map[string]interface{}{
		"type":            "run_complete",
		"ctus_processed":  summary.CTUsProcessed,
		"forced_count":    summary.ForcedCount,
		"forbid_count":    summary.ForbidCount,
		"undecided_count": summary.UndecidedCount,
		"dataset_rows":    summary.DatasetRows,
		"elapsed_seconds": summary.Elapsed.Seconds(),
		"timestamp":       r.timestamp(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":      "warning",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]interface{}{
		"type":      "verbose",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}
