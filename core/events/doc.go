// Package events defines the notifications emitted by the passenger engine.
//
// Available event types:
//   - RequestSubmitted: request accepted by the validator and handed to the optimizer
//   - RequestRejected: request rejected by the validator or the optimizer
//   - PersonStuck: the requesting agent will not travel on this mode
//   - PersonEntersVehicle: passenger picked up
//   - PersonLeavesVehicle: passenger dropped off
package events
