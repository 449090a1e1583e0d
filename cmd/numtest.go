package cmd

import (
	"github.com/mirlab/InlinerTester/numtest"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
)

func newNUMTestCmd() *cobra.Command {
	var conf string
	cmd := &cobra.Command{
		Use:   "numtest",
		Short: "NUM Hypothesis Test",
		RunE: func(cmd *cobra.Command, args []string) error {
			if conf == "" {
				return errors.New("no config")
			}
			return numtest.RunNUMTestWithConfig(conf)
		},
	}
	cmd.Flags().StringVar(&conf, "config", "", "NUMTester config path")
	return cmd
}
