package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/drt/core/passenger"
	"github.com/kilianp07/drt/sim"
)

var validateCmd = &cobra.Command{
	Use:   "validate SCENARIO...",
	Short: "Check scenario files without running them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  validateScenarios,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateScenarios(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		if err := validateScenario(path); err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios are invalid", failed, len(args))
	}
	return nil
}

// validateScenario also builds the simulation so link and facility
// references are resolved against the network.
func validateScenario(path string) error {
	sc, err := sim.LoadScenario(path)
	if err != nil {
		return err
	}
	_, err = sim.Build(sc, sim.Config{}, passenger.Config{}, nil, nil)
	return err
}
