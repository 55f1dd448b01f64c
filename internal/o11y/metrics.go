package o11y

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts marketplace events. A nil *Metrics is a no-op.
type Metrics struct {
	RidesRequested prometheus.Counter
	RidesDeleted   prometheus.Counter
	BidsSubmitted  prometheus.Counter
	BidsAccepted   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RidesRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ride_marketplace",
			Name:      "rides_requested_total",
			Help:      "Ride requests created",
		}),
		RidesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ride_marketplace",
			Name:      "rides_deleted_total",
			Help:      "Ride requests deleted",
		}),
		BidsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ride_marketplace",
			Name:      "bids_submitted_total",
			Help:      "Bids appended to rides",
		}),
		BidsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ride_marketplace",
			Name:      "bids_accepted_total",
			Help:      "Bid acceptances recorded",
		}),
	}
	reg.MustRegister(m.RidesRequested, m.RidesDeleted, m.BidsSubmitted, m.BidsAccepted)
	return m
}

func (m *Metrics) IncRidesRequested() {
	if m != nil {
		m.RidesRequested.Inc()
	}
}

func (m *Metrics) IncRidesDeleted() {
	if m != nil {
		m.RidesDeleted.Inc()
	}
}

func (m *Metrics) IncBidsSubmitted() {
	if m != nil {
		m.BidsSubmitted.Inc()
	}
}

func (m *Metrics) IncBidsAccepted() {
	if m != nil {
		m.BidsAccepted.Inc()
	}
}
