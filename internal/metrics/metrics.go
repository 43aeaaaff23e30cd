package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "book_assistant_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "book_assistant_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	ChatTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "book_assistant_chat_turns_total",
		Help: "Chat turns answered, by routing path",
	}, []string{"path"})

	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "book_assistant_upstream_requests_total",
		Help: "Calls to the catalog and generative APIs",
	}, []string{"service", "outcome"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "book_assistant_upstream_duration_seconds",
		Help:    "Latency of calls to upstream APIs in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "book_assistant_active_sessions",
		Help: "Chat sessions currently held in memory",
	})

	SessionsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "book_assistant_sessions_evicted_total",
		Help: "Idle sessions dropped to stay under the session cap",
	})
)

// Outcome labels for UpstreamRequestsTotal.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)
