package passenger

import "github.com/prometheus/client_golang/prometheus"

const (
	stageValidation = "validation"
	stageOptimizer  = "optimizer"
)

var (
	requestsSubmitted *prometheus.CounterVec
	requestsRejected  *prometheus.CounterVec
	pickupsTotal      *prometheus.CounterVec
	dropoffsTotal     *prometheus.CounterVec
	advanceBookings   *prometheus.GaugeVec
	awaitingPickups   *prometheus.GaugeVec
)

func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.GaugeVec, *prometheus.GaugeVec) {
	sub := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "passenger_requests_submitted_total",
		Help: "Requests handed to the optimizer",
	}, []string{"mode"})
	rej := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "passenger_requests_rejected_total",
		Help: "Rejected requests by decision stage",
	}, []string{"mode", "stage"})
	pick := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "passenger_pickups_total",
		Help: "Pickup attempts by outcome",
	}, []string{"mode", "outcome"})
	drop := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "passenger_dropoffs_total",
		Help: "Completed dropoffs",
	}, []string{"mode"})
	book := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "passenger_advance_bookings",
		Help: "Advance bookings waiting for their departure",
	}, []string{"mode"})
	await := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "passenger_awaiting_pickups",
		Help: "Vehicles parked at a pickup waiting for their passenger",
	}, []string{"mode"})
	return sub, rej, pick, drop, book, await
}

func init() {
	requestsSubmitted, requestsRejected, pickupsTotal, dropoffsTotal, advanceBookings, awaitingPickups = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers engine metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(requestsSubmitted, requestsRejected, pickupsTotal, dropoffsTotal, advanceBookings, awaitingPickups)
}

// ResetMetrics reinitializes the collectors for testing purposes and
// registers them on reg if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	requestsSubmitted, requestsRejected, pickupsTotal, dropoffsTotal, advanceBookings, awaitingPickups = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
