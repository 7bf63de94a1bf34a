package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the console service.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Upstream HCCC API calls. Labels: method, route, status
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec

	// Token adjustments. Labels: outcome (issued|confirmed|failed|coalesced|stale)
	Adjustments *prometheus.CounterVec

	// Live WebSocket views. Labels: view
	LiveConnections *prometheus.GaugeVec

	// Payment status polls. Labels: bucket
	PaymentPolls *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Calls made to the HCCC API",
			},
			[]string{"method", "route", "status"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "HCCC API call duration in seconds",
				Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		Adjustments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_adjustments_total",
				Help:      "Token adjustments by outcome",
			},
			[]string{"outcome"},
		),
		LiveConnections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "live_connections",
				Help:      "Open live view WebSocket connections",
			},
			[]string{"view"},
		),
		PaymentPolls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_polls_total",
				Help:      "Payment status polls by final bucket",
			},
			[]string{"bucket"},
		),
	}

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.Adjustments,
		m.LiveConnections,
		m.PaymentPolls,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveUpstream matches the hccc.Observer signature.
func (m *Metrics) ObserveUpstream(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.UpstreamRequests.WithLabelValues(method, route, label).Inc()
	m.UpstreamDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

// IncAdjustment is nil-safe so view-models can run without metrics in tests.
func (m *Metrics) IncAdjustment(outcome string) {
	if m == nil {
		return
	}
	m.Adjustments.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LiveOpened(view string) {
	if m == nil {
		return
	}
	m.LiveConnections.WithLabelValues(view).Inc()
}

func (m *Metrics) LiveClosed(view string) {
	if m == nil {
		return
	}
	m.LiveConnections.WithLabelValues(view).Dec()
}

func (m *Metrics) IncPaymentPoll(bucket string) {
	if m == nil {
		return
	}
	m.PaymentPolls.WithLabelValues(bucket).Inc()
}
