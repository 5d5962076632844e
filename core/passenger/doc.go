// Package passenger implements the passenger engine of a demand-responsive
// transport mode: it turns agent departures and advance bookings into
// requests, submits them to an optimizer and performs the pickup and
// dropoff handshake between vehicles and passengers.
//
// All state keyed by request identity (advance bookings, parked pickups,
// the passenger of each live request) is owned by Engine and mutated only
// under its lock.
package passenger
