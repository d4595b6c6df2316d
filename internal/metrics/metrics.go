// Package metrics holds the Prometheus collectors of the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeSuccess labels calls that returned a result.
const OutcomeSuccess = "success"

var (
	// toolCalls counts MCP tool calls.
	// Labels: tool, outcome (success or the error kind)
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "provstats",
		Subsystem: "tool",
		Name:      "calls_total",
		Help:      "Total MCP tool calls by outcome",
	}, []string{"tool", "outcome"})

	// toolLatency measures MCP tool call latency.
	// Labels: tool
	toolLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "provstats",
		Subsystem: "tool",
		Name:      "latency_seconds",
		Help:      "MCP tool call latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"tool"})

	// httpRequests counts requests served by the HTTP router.
	// Labels: route, code
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "provstats",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route and status code",
	}, []string{"route", "code"})
)

// RecordToolCall records one tool call.
func RecordToolCall(tool, outcome string, durationSec float64) {
	toolCalls.WithLabelValues(tool, outcome).Inc()
	toolLatency.WithLabelValues(tool).Observe(durationSec)
}

// RecordHTTPRequest records one HTTP request.
func RecordHTTPRequest(route, code string) {
	httpRequests.WithLabelValues(route, code).Inc()
}

// ToolCalls returns the counter of tool calls for tool and outcome.
func ToolCalls(tool, outcome string) prometheus.Counter {
	return toolCalls.WithLabelValues(tool, outcome)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
