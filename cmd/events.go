package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/drt/config"
	"github.com/kilianp07/drt/core/eventlog"
	"github.com/kilianp07/drt/core/model"
	infraeventlog "github.com/kilianp07/drt/infra/eventlog"
	"github.com/kilianp07/drt/pkg/export"
)

var eventsQuery struct {
	typ, mode, agent, request string
	from, to                  float64
	limit                     int
	format                    string
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Query the event log of previous runs",
	RunE:  queryEvents,
}

func init() {
	f := eventsCmd.Flags()
	f.StringVar(&eventsQuery.typ, "type", "", "event type, e.g. PersonStuck")
	f.StringVar(&eventsQuery.mode, "mode", "", "leg mode")
	f.StringVar(&eventsQuery.agent, "agent", "", "agent id")
	f.StringVar(&eventsQuery.request, "request", "", "request id")
	f.Float64Var(&eventsQuery.from, "from", 0, "earliest simulation time in seconds")
	f.Float64Var(&eventsQuery.to, "to", 0, "latest simulation time in seconds, 0 for no bound")
	f.IntVar(&eventsQuery.limit, "limit", 0, "maximum number of records")
	f.StringVar(&eventsQuery.format, "format", "jsonl", "output format: jsonl or csv")
	rootCmd.AddCommand(eventsCmd)
}

func queryEvents(cmd *cobra.Command, _ []string) error {
	if eventsQuery.format != "jsonl" && eventsQuery.format != "csv" {
		return fmt.Errorf("unknown format %q", eventsQuery.format)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := infraeventlog.Open(cfg.EventLog)
	if err != nil {
		return fmt.Errorf("event log: %w", err)
	}
	if store == nil {
		return fmt.Errorf("event log is disabled")
	}
	defer store.Close()

	recs, err := store.Query(cmd.Context(), eventlog.Query{
		Type:      eventsQuery.typ,
		Mode:      eventsQuery.mode,
		AgentID:   model.AgentID(eventsQuery.agent),
		RequestID: model.RequestID(eventsQuery.request),
		From:      eventsQuery.from,
		To:        eventsQuery.to,
		Limit:     eventsQuery.limit,
	})
	if err != nil {
		return err
	}
	if eventsQuery.format == "csv" {
		return export.WriteCSV(cmd.OutOrStdout(), recs)
	}
	return export.WriteJSONL(cmd.OutOrStdout(), recs)
}
