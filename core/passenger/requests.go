package passenger

import (
	"strings"

	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/core/model"
)

const causeOptimizer = "rejected_by_optimizer"

// createValidateAndSubmit must be called with e.mu held.
func (e *Engine) createValidateAndSubmit(agent PassengerAgent, from, to model.LinkID, departure, now float64) *model.Request {
	id := model.NewRequestID(e.mode, e.nextID)
	e.nextID++
	req := e.creator.CreateRequest(id, agent, from, to, departure, now)

	if violations := e.validator.Validate(req); len(violations) > 0 {
		req.Reject(strings.Join(violations, ", "))
		e.notifyRejected(req, stageValidation)
		return req
	}

	e.passengers[req.ID] = &tracked{agent: agent}
	if e.emitSubmitted {
		e.sink.ProcessEvent(events.RequestSubmitted{
			Time:      req.SubmissionTime,
			Mode:      e.mode,
			RequestID: req.ID,
			AgentID:   req.PassengerID,
			FromLink:  req.FromLink,
			ToLink:    req.ToLink,
		})
	}
	requestsSubmitted.WithLabelValues(e.mode).Inc()
	e.optimizer.Submit(req)
	if req.IsRejected() {
		delete(e.passengers, req.ID)
		e.notifyRejected(req, stageOptimizer)
	}
	return req
}

// RejectRequest lets an optimizer reject a request after Submit returned.
// The booking or parked pickup of the request is dropped and the usual
// rejection events are emitted. It returns false if the request was
// already rejected.
func (e *Engine) RejectRequest(req *model.Request, cause string) bool {
	if !req.Reject(cause) {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.passengers, req.ID)
	e.advance.Remove(req)
	e.awaiting.Retrieve(req.ID)
	e.notifyRejected(req, stageOptimizer)
	return true
}

// notifyRejected must be called with e.mu held and req already rejected.
func (e *Engine) notifyRejected(req *model.Request, stage string) {
	cause := req.RejectionCause()
	if cause == "" {
		cause = causeOptimizer
	}
	e.logger.Warnf("request %s of mode %s will not be served, agent %s gets stuck (%s): %s",
		req.ID, e.mode, req.PassengerID, stage, cause)
	requestsRejected.WithLabelValues(e.mode, stage).Inc()
	e.sink.ProcessEvent(events.RequestRejected{
		Time:      req.SubmissionTime,
		Mode:      e.mode,
		RequestID: req.ID,
		Cause:     cause,
	})
	e.sink.ProcessEvent(events.PersonStuck{
		Time:    req.SubmissionTime,
		AgentID: req.PassengerID,
		LinkID:  req.FromLink,
		Mode:    e.mode,
	})
}
