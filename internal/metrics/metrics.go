package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors of the portfolio service.
type Metrics struct {
	// Store boundary
	StoreCalls    *prometheus.CounterVec   // labels: op, result
	StoreDuration *prometheus.HistogramVec // labels: op
	StoreRetries  *prometheus.CounterVec   // labels: op
	BreakerState  prometheus.Gauge         // 0=closed, 1=half-open, 2=open

	// HTTP
	HTTPRequests *prometheus.CounterVec   // labels: method, route, status
	HTTPDuration *prometheus.HistogramVec // labels: method, route

	// Portfolio state, refreshed on every net position read
	NetQuantity   *prometheus.GaugeVec // labels: contract
	NetExposure   *prometheus.GaugeVec // labels: contract
	UnrealizedPnL *prometheus.GaugeVec // labels: contract

	// Jobs
	OrphansRemoved prometheus.Counter
	JobRuns        *prometheus.CounterVec // labels: job, result
}

// NewMetrics builds the collectors and registers them on reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StoreCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_store_calls_total",
			Help: "Store calls by operation and result",
		}, []string{"op", "result"}),
		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portfolio_store_call_duration_seconds",
			Help:    "Store call latency including retries",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		StoreRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_store_retries_total",
			Help: "Retried store read attempts",
		}, []string{"op"}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_store_circuit_breaker_state",
			Help: "Store circuit breaker state (0=closed, 1=half-open, 2=open)",
		}),

		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		NetQuantity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "portfolio_net_quantity_contracts",
			Help: "Signed net quantity per contract",
		}, []string{"contract"}),
		NetExposure: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "portfolio_net_exposure",
			Help: "Net exposure per contract",
		}, []string{"contract"}),
		UnrealizedPnL: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "portfolio_unrealized_pnl",
			Help: "Unrealized P&L per contract",
		}, []string{"contract"}),

		OrphansRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_orphaned_positions_removed_total",
			Help: "Positions removed because no transaction references them",
		}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_job_runs_total",
			Help: "Scheduled job runs by job and result",
		}, []string{"job", "result"}),
	}

	reg.MustRegister(
		m.StoreCalls,
		m.StoreDuration,
		m.StoreRetries,
		m.BreakerState,
		m.HTTPRequests,
		m.HTTPDuration,
		m.NetQuantity,
		m.NetExposure,
		m.UnrealizedPnL,
		m.OrphansRemoved,
		m.JobRuns,
	)
	return m
}

// Handler exposes the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
