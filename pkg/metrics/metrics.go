package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service's Prometheus instruments behind a private
// registry so tests can create independent collectors.
type Collector struct {
	registry *prometheus.Registry

	chatRequests    *prometheus.CounterVec
	chatDuration    prometheus.Histogram
	toolInvocations *prometheus.CounterVec
}

// NewCollector creates and registers all service metrics.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		chatRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_requests_total",
				Help:      "Total number of chat requests by outcome status",
			},
			[]string{"status"},
		),
		chatDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "chat_request_duration_seconds",
				Help:      "End-to-end chat request latency in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		toolInvocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_invocations_total",
				Help:      "Total number of tool invocations by tool name and outcome",
			},
			[]string{"tool", "outcome"},
		),
	}

	c.registry.MustRegister(
		c.chatRequests,
		c.chatDuration,
		c.toolInvocations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// RecordChat counts one finished chat request and its latency.
func (c *Collector) RecordChat(status string, elapsed time.Duration) {
	c.chatRequests.WithLabelValues(status).Inc()
	c.chatDuration.Observe(elapsed.Seconds())
}

// RecordTool counts one tool invocation.
func (c *Collector) RecordTool(tool, outcome string) {
	c.toolInvocations.WithLabelValues(tool, outcome).Inc()
}

// Handler exposes the registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
