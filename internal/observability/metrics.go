package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Turns                *prometheus.CounterVec
	ToolCalls            *prometheus.CounterVec
	CompletionRetries    prometheus.Counter
	DegradedHistoryLoads prometheus.Counter
	KnowledgeFallbacks   prometheus.Counter
	TurnLatency          prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Turns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns by outcome.",
		}, []string{"outcome"}),
		ToolCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool and status.",
		}, []string{"tool", "status"}),
		CompletionRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_retries_total",
			Help:      "Completion requests retried after a transient failure.",
		}),
		DegradedHistoryLoads: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_history_loads_total",
			Help:      "Turns served with empty history because session storage was unavailable.",
		}),
		KnowledgeFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "knowledge_fallbacks_total",
			Help:      "Knowledge queries answered by keyword search instead of the vector backend.",
		}),
		TurnLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_ms",
			Help:      "End to end latency of one conversation turn in milliseconds.",
			Buckets:   []float64{200, 500, 1000, 2000, 4000, 8000, 15000, 30000},
		}),
	}
}

func (m *Metrics) ObserveTurnLatency(d time.Duration) {
	m.TurnLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
