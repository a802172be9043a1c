// Package main provides the splitforest CLI entry point: a small Cobra
// root command wiring the teacher's promised-but-unwired cobra dependency
// (spec.md's ambient CLI stack, SPEC_FULL.md §1) into real subcommands
// over the CU-controller core.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const appVersion = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "splitforest",
		Short:         "Learning-assisted block-partitioning fast-decision subsystem",
		Long:          "splitforest drives the CU mode controller's candidate enumeration, classifier gating, and result recording against a synthetic or dataset-collection workload.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newSimulateCmd())
	root.AddCommand(newForestsCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the splitforest version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "splitforest version %s\n", appVersion)
			return nil
		},
	}
}
