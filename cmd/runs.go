package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/drt/config"
	"github.com/kilianp07/drt/infra/kpi"
)

var (
	runsScenario string
	runsSince    time.Duration
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the recorded outcome of previous runs",
	RunE:  listRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsScenario, "scenario", "", "only runs of this scenario name")
	runsCmd.Flags().DurationVar(&runsSince, "since", 0, "only runs finished within this duration, 0 for all")
	rootCmd.AddCommand(runsCmd)
}

func listRuns(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.KPI.Path == "" {
		return fmt.Errorf("run history is disabled, set kpi.path")
	}
	store, err := kpi.NewSQLiteStore(cfg.KPI.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	var start time.Time
	if runsSince > 0 {
		start = time.Now().Add(-runsSince)
	}
	runs, err := store.Query(runsScenario, start, time.Time{})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSCENARIO\tMODE\tFINISHED\tPASSENGERS\tARRIVED\tSTUCK\tREJECTED\tMEAN WAIT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%.0fs\n",
			r.RunID, r.Scenario, r.Mode, r.FinishedAt.Format(time.RFC3339),
			r.Passengers, r.Arrived, r.Stuck, r.Rejected, r.MeanWait)
	}
	return tw.Flush()
}
