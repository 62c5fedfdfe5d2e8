package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	GatewayRequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatekeeper_requests_total",
			Help: "Total number of requests processed",
		},
		[]string{"method", "status"},
	)

	RateLimitDecisionTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatekeeper_rate_limit_decisions_total",
			Help: "Rate-limit admission decisions by policy class",
		},
		[]string{"policy", "decision"},
	)

	CacheOpTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatekeeper_cache_ops_total",
			Help: "Cache operations by backend and result",
		},
		[]string{"op", "backend", "result"},
	)

	BackendFailoverTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "gatekeeper_backend_failover_total",
			Help: "Times the durable backend was bypassed for the in-process fallback",
		},
	)
)

func Initialize() {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}
