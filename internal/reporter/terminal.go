package reporter

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/splitforest/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu       sync.Mutex
	progress *progressbar.ProgressBar
	cyan     *color.Color
	green    *color.Color
	yellow   *color.Color
	red      *color.Color
	magenta  *color.Color
	bold     *color.Color
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter() *TerminalReporter {
	return &TerminalReporter{
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
	}
}

// printLabel prints a bold label with fixed width padding followed by a value.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) RunStarted(config RunConfig) {
	fmt.Println()
	_, _ = r.cyan.Println("RUN")
	r.printLabel(12, "Input:", config.InputFile)
	r.printLabel(12, "Mode:", config.Mode)
	r.printLabel(12, "Thresholds:", config.Thresholds)
	parallel := "off"
	if config.Parallel {
		parallel = fmt.Sprintf("on (%d workers)", config.Workers)
	}
	r.printLabel(12, "Speculation:", parallel)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = progressbar.NewOptions(
		-1,
		progressbar.OptionSetDescription("CTUs"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) CTUStarted(info CTUInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Add(1)
		r.progress.Describe(fmt.Sprintf("CTU poc=%d (%d,%d)", info.POC, info.X, info.Y))
	}
}

func (r *TerminalReporter) Verdict(event VerdictEvent) {
	var annotated string
	switch event.Decision {
	case "force":
		annotated = r.green.Sprint("force")
	case "forbid":
		annotated = r.red.Sprint("forbid")
	default:
		annotated = r.yellow.Sprint("undecided")
	}
	fmt.Printf("  %-8s %-10s %s (p=%.3f)\n", event.Area, event.Flag, annotated, event.Probability)
}

func (r *TerminalReporter) CUDecision(event CUDecisionEvent) {
	if !event.Adopted {
		return
	}
	fmt.Printf("  %s %s -> %s (cost=%.2f)\n", r.magenta.Sprint("›"), event.Area, event.Mode, event.Cost)
}

func (r *TerminalReporter) DatasetProgress(progress DatasetProgress) {
	fmt.Printf("  dataset rows: %d feature, %d cost (%s written)\n",
		progress.FeatureRows, progress.CostRows, util.FormatBytes(progress.BytesWritten))
}

func (r *TerminalReporter) RunComplete(summary RunSummary) {
	r.mu.Lock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.mu.Unlock()

	fmt.Println()
	_, _ = r.cyan.Println("SUMMARY")
	r.printLabel(12, "CTUs:", fmt.Sprintf("%d", summary.CTUsProcessed))
	r.printLabel(12, "Forced:", r.green.Sprintf("%d", summary.ForcedCount))
	r.printLabel(12, "Forbidden:", r.red.Sprintf("%d", summary.ForbidCount))
	r.printLabel(12, "Undecided:", r.yellow.Sprintf("%d", summary.UndecidedCount))
	if summary.DatasetRows > 0 {
		r.printLabel(12, "Dataset rows:", fmt.Sprintf("%d", summary.DatasetRows))
	}
	r.printLabel(12, "Elapsed:", util.FormatDurationFromSecs(int64(summary.Elapsed.Seconds())))
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) Verbose(message string) {
	_, _ = color.New(color.Faint).Println(message)
}
