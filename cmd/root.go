package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "drt",
	Short:         "Demand responsive transport passenger engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file, empty to use only K_ environment variables")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
