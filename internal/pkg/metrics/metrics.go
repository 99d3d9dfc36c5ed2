package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Department id allocation outcomes
const (
	AllocationAllocated        = "allocated"
	AllocationCapacityExceeded = "capacity_exceeded"
	AllocationPolicyViolation  = "policy_violation"
)

// Registry owns the process collectors. Each Registry has its own
// prometheus registry so tests can create as many as they like.
type Registry struct {
	reg             *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	allocations     *prometheus.CounterVec
	revocations     *prometheus.CounterVec
}

// NewRegistry creates and registers all collectors
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	f := promauto.With(reg)
	return &Registry{
		reg: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniadmin",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "uniadmin",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		allocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniadmin",
			Name:      "department_id_allocations_total",
			Help:      "Department id allocation attempts by outcome.",
		}, []string{"outcome"}),
		revocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniadmin",
			Name:      "token_revocations_total",
			Help:      "Refresh token revocations by reason.",
		}, []string{"reason"}),
	}
}

// ObserveRequest records one served request
func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncAllocation counts a department id allocation outcome
func (r *Registry) IncAllocation(outcome string) {
	if r == nil {
		return
	}
	r.allocations.WithLabelValues(outcome).Inc()
}

// IncRevocation counts a refresh token that was newly blacklisted
func (r *Registry) IncRevocation(reason string) {
	if r == nil {
		return
	}
	r.revocations.WithLabelValues(reason).Inc()
}

// Gatherer exposes the underlying registry
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
