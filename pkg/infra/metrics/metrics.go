package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	RequestsBlocked = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_requests_blocked_total",
			Help: "Requests rejected by the blocklist or rate limiter",
		},
		[]string{"cause"},
	)

	TarpitsServed = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_tarpits_total",
			Help: "Responses delayed by the tarpit",
		},
	)

	HoneytokenHits = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_honeytoken_hits_total",
			Help: "Honeytoken accesses observed",
		},
	)

	IncidentsRecorded = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_incidents_total",
			Help: "Security incidents recorded by type",
		},
		[]string{"type"},
	)

	CountermeasuresApplied = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_countermeasures_total",
			Help: "Countermeasures applied by action",
		},
		[]string{"action"},
	)
)

// Handler exposes the private registry for the metrics side server.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
