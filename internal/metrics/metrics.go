// ABOUTME: Prometheus collectors for gateway requests and upstream call latency
// ABOUTME: Nil-safe methods so metrics can be disabled by passing a nil *Metrics

package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus collectors on a private
// registry. A nil *Metrics is valid and turns every method into a
// no-op, so callers never branch on whether metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	upstream *prometheus.HistogramVec
}

// New creates and registers the gateway collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Responses returned by the gateway, by trust tier and status code.",
		}, []string{"tier", "code"}),
		upstream: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_upstream_seconds",
			Help:    "Latency of outbound Admin API calls, by call type.",
			Buckets: prometheus.DefBuckets,
		}, []string{"call"}),
	}
	m.registry.MustRegister(m.requests, m.upstream)
	return m
}

// ObserveRequest counts one gateway response.
func (m *Metrics) ObserveRequest(tier string, code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(tier, strconv.Itoa(code)).Inc()
}

// ObserveUpstream records the duration of one outbound call.
// call is "identity" or "forward".
func (m *Metrics) ObserveUpstream(call string, seconds float64) {
	if m == nil {
		return
	}
	m.upstream.WithLabelValues(call).Observe(seconds)
}

// Handler returns the exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
