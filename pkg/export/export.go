package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/drt/core/events"
)

// WriteJSONL writes one JSON record per line to w.
func WriteJSONL(w io.Writer, recs []events.Record) error {
	enc := json.NewEncoder(w)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

var csvHeader = []string{"time", "type", "mode", "request_id", "agent_id", "vehicle_id", "link_id", "to_link_id", "cause"}

// WriteCSV writes the records to w in CSV format with a header row.
func WriteCSV(w io.Writer, recs []events.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			strconv.FormatFloat(r.Time, 'f', -1, 64),
			r.Type,
			r.Mode,
			string(r.RequestID),
			string(r.AgentID),
			string(r.VehicleID),
			string(r.LinkID),
			string(r.ToLinkID),
			r.Cause,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
