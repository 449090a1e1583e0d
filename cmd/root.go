package cmd

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "inliner-tester",
		Short: "MIR NUM Inliner Tester",
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize()
	rootCmd.AddCommand(newNUMTestCmd())
	rootCmd.AddCommand(newDatagenCmd())
}
