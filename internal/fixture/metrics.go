package fixture

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// requestsTotal counts fixture API requests.
// Labels:
//   - route: list, count, get, version
//   - status: HTTP status code
var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "evalboard",
		Subsystem: "fixture",
		Name:      "requests_total",
		Help:      "Total number of requests served by the fixture evaluator",
	},
	[]string{"route", "status"},
)

func recordRequest(route string, status int) {
	requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
