package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/splitforest/internal/config"
	"github.com/five82/splitforest/internal/forest"
	"github.com/five82/splitforest/internal/logging"
	"github.com/five82/splitforest/internal/reporter"
	"github.com/five82/splitforest/internal/simulate"
)

func newSimulateCmd() *cobra.Command {
	var (
		mode        string
		threshold   float64
		forestsDir  string
		datasetDir  string
		basename    string
		qp          int
		width       int
		height      int
		ctuSize     int
		maxMTDepth  int
		maxQTDepth  int
		seed        uint64
		jsonOutput  bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the CU controller over a synthetic picture",
		Long: "simulate drives CandidateEnumerator, PartitionContextStack, TryModeFilter\n" +
			"and ResultRecorder over a deterministic synthetic luma/MV/SAD plane,\n" +
			"standing in for the real VVC analysis pass and RD driver this module\n" +
			"treats as opaque external collaborators.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(logging.LevelInfo, cmd.ErrOrStderr())
			if verbose {
				logging.Init(logging.LevelDebug, cmd.ErrOrStderr())
			}

			m, err := config.ParseMode(mode)
			if err != nil {
				return err
			}

			cfg := config.NewConfig(basename, qp)
			cfg.Mode = m
			cfg.Thresholds = config.Thresholds{NoSplit: threshold, QT: threshold, Hor: threshold}
			cfg.DatasetDir = datasetDir
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			evaluator := forest.NewEvaluator()
			if forestsDir != "" {
				if _, err := evaluator.LoadDir(forestsDir); err != nil {
					return fmt.Errorf("loading forests: %w", err)
				}
			}

			params := simulate.DefaultParams()
			if width > 0 {
				params.PictureWidth = width
			}
			if height > 0 {
				params.PictureHeight = height
			}
			if ctuSize > 0 {
				params.CTUSize = ctuSize
			}
			if maxMTDepth > 0 {
				params.MaxMTDepth = maxMTDepth
			}
			if maxQTDepth > 0 {
				params.MaxQTDepth = maxQTDepth
			}
			params.Seed = seed
			params.BaseQP = qp

			var rep reporter.Reporter
			if jsonOutput {
				rep = reporter.NewJSONReporter()
			} else {
				rep = reporter.NewTerminalReporter()
			}

			_, err = simulate.Run(cfg, params, evaluator, rep)
			return err
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "predict", "controller mode: predict, collect, or off")
	cmd.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "uniform DecisionGate threshold in [0.5, 1.0]")
	cmd.Flags().StringVar(&forestsDir, "forests-dir", "", "directory of *.gob trained forest bundles (none: shapes evaluate as undecided)")
	cmd.Flags().StringVar(&datasetDir, "dataset-dir", ".", "directory dataset-mode CSV sinks are written into")
	cmd.Flags().StringVar(&basename, "basename", "sim", "dataset CSV filename basename")
	cmd.Flags().IntVar(&qp, "qp", 32, "base QP for the simulated slice")
	cmd.Flags().IntVar(&width, "width", 0, "picture width in luma samples (0: use default)")
	cmd.Flags().IntVar(&height, "height", 0, "picture height in luma samples (0: use default)")
	cmd.Flags().IntVar(&ctuSize, "ctu-size", 0, "CTU side length (0: use default)")
	cmd.Flags().IntVar(&maxMTDepth, "max-mt-depth", 0, "max BT/TT recursion depth (0: use default)")
	cmd.Flags().IntVar(&maxQTDepth, "max-qt-depth", 0, "max QT recursion depth (0: use default)")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "synthetic picture seed")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit NDJSON events instead of terminal output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}
