package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/splitforest/internal/forest"
)

func newForestsCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "forests",
		Short: "List the trained forest bundles in a directory",
		Long:  "forests loads every *.gob Bundle under --dir and prints its (kind, shape, tree count) summary, the same resource splitforest simulate consumes via --forests-dir.",
		RunE: func(cmd *cobra.Command, args []string) error {
			evaluator := forest.NewEvaluator()
			loaded, err := evaluator.LoadDir(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "loaded %d bundle(s) from %s\n", loaded, dir)
			for _, d := range evaluator.Describe() {
				fmt.Fprintf(out, "  %-8s %dx%-4d trees=%-4d selectors=%d\n", d.Kind, d.Shape.Width, d.Shape.Height, d.NumTrees, d.Selectors)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "directory of *.gob trained forest bundles")

	return cmd
}
