package passenger

import "github.com/kilianp07/drt/core/model"

// DefaultRequestCreator builds plain requests for a mode.
type DefaultRequestCreator struct {
	Mode string
}

func (c DefaultRequestCreator) CreateRequest(id model.RequestID, passenger PassengerAgent, from, to model.LinkID, departure, now float64) *model.Request {
	return &model.Request{
		ID:                id,
		Mode:              c.Mode,
		PassengerID:       passenger.ID(),
		FromLink:          from,
		ToLink:            to,
		EarliestStartTime: departure,
		SubmissionTime:    now,
	}
}
