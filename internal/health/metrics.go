// Package health serves the liveness and metrics endpoint beside the bot.
package health

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters the bot updates while handling traffic.
type Metrics struct {
	Interactions *prometheus.CounterVec
	Throttled    prometheus.Counter
	Grants       prometheus.Counter
	Revocations  prometheus.Counter
}

// NewMetrics registers the counters against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Interactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gatebot_interactions_total",
			Help: "Inbound interactions handled, by update kind.",
		}, []string{"kind"}),
		Throttled: factory.NewCounter(prometheus.CounterOpts{
			Name: "gatebot_throttled_total",
			Help: "Interactions rejected by the admission gate.",
		}),
		Grants: factory.NewCounter(prometheus.CounterOpts{
			Name: "gatebot_channel_grants_total",
			Help: "Successful channel membership grants.",
		}),
		Revocations: factory.NewCounter(prometheus.CounterOpts{
			Name: "gatebot_channel_revocations_total",
			Help: "Completed scheduled membership revocations.",
		}),
	}
}
