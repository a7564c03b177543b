package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// sessionsActive tracks the number of live dashboard sessions.
	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "evalboard",
			Subsystem: "dashboard",
			Name:      "sessions",
			Help:      "Number of live dashboard sessions",
		},
	)

	sessionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "evalboard",
			Subsystem: "dashboard",
			Name:      "sessions_expired_total",
			Help:      "Total number of sessions removed after being idle",
		},
	)
)
