package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/drt/app"
	"github.com/kilianp07/drt/config"
	"github.com/kilianp07/drt/infra/logger"
)

var (
	runScenario string
	runServe    bool
	runStrict   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario through the passenger engine",
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringVarP(&runScenario, "scenario", "s", "", "scenario file, overrides simulation.scenario")
	runCmd.Flags().BoolVar(&runServe, "serve", false, "keep the HTTP endpoints up after the run until interrupted")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "fail when the outcome differs from the scenario expectations")
	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runScenario != "" {
		cfg.Simulation.Scenario = runScenario
	}
	if cfg.Simulation.Scenario == "" {
		return fmt.Errorf("no scenario: set simulation.scenario or pass --scenario")
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	sum, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(sum); err != nil {
		return err
	}
	if runStrict {
		if err := svc.Expected().Check(sum); err != nil {
			return fmt.Errorf("unexpected outcome: %w", err)
		}
	}
	if runServe {
		<-ctx.Done()
	}
	return nil
}
