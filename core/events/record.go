package events

import (
	"fmt"

	"github.com/kilianp07/drt/core/model"
)

// Record is the flat, serialisable form of an Event shared by the event
// log, MQTT and stream adapters.
type Record struct {
	Time      float64         `json:"time"`
	Type      string          `json:"type"`
	Mode      string          `json:"mode,omitempty"`
	RequestID model.RequestID `json:"request_id,omitempty"`
	AgentID   model.AgentID   `json:"agent_id,omitempty"`
	VehicleID model.VehicleID `json:"vehicle_id,omitempty"`
	LinkID    model.LinkID    `json:"link_id,omitempty"`
	ToLinkID  model.LinkID    `json:"to_link_id,omitempty"`
	Cause     string          `json:"cause,omitempty"`
}

// ToRecord flattens ev.
func ToRecord(ev Event) Record {
	r := Record{Time: ev.SimTime(), Type: ev.Type()}
	switch e := ev.(type) {
	case RequestSubmitted:
		r.Mode, r.RequestID, r.AgentID, r.LinkID, r.ToLinkID = e.Mode, e.RequestID, e.AgentID, e.FromLink, e.ToLink
	case RequestRejected:
		r.Mode, r.RequestID, r.Cause = e.Mode, e.RequestID, e.Cause
	case PersonStuck:
		r.Mode, r.AgentID, r.LinkID = e.Mode, e.AgentID, e.LinkID
	case PersonEntersVehicle:
		r.AgentID, r.VehicleID = e.AgentID, e.VehicleID
	case PersonLeavesVehicle:
		r.AgentID, r.VehicleID = e.AgentID, e.VehicleID
	}
	return r
}

// FromRecord rebuilds the typed event of a record.
func FromRecord(r Record) (Event, error) {
	switch r.Type {
	case TypeRequestSubmitted:
		return RequestSubmitted{Time: r.Time, Mode: r.Mode, RequestID: r.RequestID, AgentID: r.AgentID, FromLink: r.LinkID, ToLink: r.ToLinkID}, nil
	case TypeRequestRejected:
		return RequestRejected{Time: r.Time, Mode: r.Mode, RequestID: r.RequestID, Cause: r.Cause}, nil
	case TypePersonStuck:
		return PersonStuck{Time: r.Time, AgentID: r.AgentID, LinkID: r.LinkID, Mode: r.Mode}, nil
	case TypePersonEntersVehicle:
		return PersonEntersVehicle{Time: r.Time, AgentID: r.AgentID, VehicleID: r.VehicleID}, nil
	case TypePersonLeavesVehicle:
		return PersonLeavesVehicle{Time: r.Time, AgentID: r.AgentID, VehicleID: r.VehicleID}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", r.Type)
	}
}
