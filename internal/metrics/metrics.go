// Package metrics defines the Prometheus collectors for the wager engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wagers"

// Metrics holds the engine's collectors.
type Metrics struct {
	BetsCreated  prometheus.Counter
	WagersPlaced *prometheus.CounterVec // side
	PointsStaked prometheus.Counter
	BetsSettled  *prometheus.CounterVec // status
	PointsPaid   *prometheus.CounterVec // kind (PAYOUT, REFUND)
	Rejections   *prometheus.CounterVec // op, reason
}

// New creates the collectors and registers them on reg.
// A nil reg leaves them unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BetsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bets_created_total",
			Help:      "Bets created.",
		}),
		WagersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wagers_placed_total",
			Help:      "Wagers placed, by side.",
		}, []string{"side"}),
		PointsStaked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_staked_total",
			Help:      "Points moved into bet pools.",
		}),
		BetsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bets_settled_total",
			Help:      "Bets that left OPEN, by final status.",
		}, []string{"status"}),
		PointsPaid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_paid_total",
			Help:      "Points credited back to users at settlement, by kind.",
		}, []string{"kind"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Lifecycle operations rejected by a guard.",
		}, []string{"op", "reason"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.BetsCreated,
			m.WagersPlaced,
			m.PointsStaked,
			m.BetsSettled,
			m.PointsPaid,
			m.Rejections,
		)
	}
	return m
}
