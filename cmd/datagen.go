package cmd

import (
	"github.com/mirlab/InlinerTester/datagen"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
)

func newDatagenCmd() *cobra.Command {
	var condition string
	var dir string
	var funcs int
	cmd := &cobra.Command{
		Use:   "datagen",
		Short: "Decision Log Generator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if condition == "" || dir == "" {
				return errors.Errorf("invalid arguments")
			}
			return datagen.Generate(condition, dir, funcs)
		},
	}
	cmd.Flags().StringVar(&condition, "condition", "", "Condition to generate, or 'all'")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to store decision logs")
	cmd.Flags().IntVar(&funcs, "funcs", 50, "Number of synthetic functions per size")
	return cmd
}
