package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ComandaMetrics records ledger and tab activity. A nil *ComandaMetrics is a
// valid no-op recorder.
type ComandaMetrics struct {
	adds           *prometheus.CounterVec
	mergeConflicts prometheus.Counter
	transitions    *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewComandaMetrics registers the comanda metrics on the provided registerer.
func NewComandaMetrics(reg prometheus.Registerer) *ComandaMetrics {
	if reg == nil {
		return &ComandaMetrics{}
	}
	adds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comanda_pedido_item_adds_total",
		Help: "Pedido item additions by outcome (created or merged).",
	}, []string{"resultado"})
	mergeConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comanda_merge_conflicts_total",
		Help: "Concurrent inserts of the same pedido item that had to be retried.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comanda_transitions_total",
		Help: "Comanda status transitions.",
	}, []string{"de", "para"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "comanda_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(adds, mergeConflicts, transitions, httpDuration)
	return &ComandaMetrics{
		adds:           adds,
		mergeConflicts: mergeConflicts,
		transitions:    transitions,
		httpDuration:   httpDuration,
	}
}

func (m *ComandaMetrics) IncAdd(resultado string) {
	if m == nil || m.adds == nil {
		return
	}
	m.adds.WithLabelValues(normalizeLabel(resultado)).Inc()
}

func (m *ComandaMetrics) IncMergeConflict() {
	if m == nil || m.mergeConflicts == nil {
		return
	}
	m.mergeConflicts.Inc()
}

func (m *ComandaMetrics) IncTransition(de, para string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(de), normalizeLabel(para)).Inc()
}

// ObserveRequest records the latency of one HTTP request. Route is the
// matched gin path template, not the raw URL.
func (m *ComandaMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil || m.httpDuration == nil {
		return
	}
	m.httpDuration.
		WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).
		Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
