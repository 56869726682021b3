package spreadsheet

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "sheet"

// write results, used as the "result" label of WritesTotal
const (
	writeResultOK       = "ok"
	writeResultCircular = "circular"
	writeResultSyntax   = "syntax"
	writeResultPosition = "position"
)

// Metrics holds the Prometheus collectors of a sheet. a nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// WritesTotal counts SetCell and ClearCell calls by result.
	// Labels: result (ok, circular, syntax, position)
	WritesTotal *prometheus.CounterVec

	// EvaluationsTotal counts formula evaluations (cache misses).
	EvaluationsTotal prometheus.Counter

	// CacheHitsTotal counts formula reads served from the memoized value.
	CacheHitsTotal prometheus.Counter

	// InvalidationsTotal counts memoized values dropped after a write.
	InvalidationsTotal prometheus.Counter

	// AutovivifiedTotal counts empty cells created because a formula
	// referenced them.
	AutovivifiedTotal prometheus.Counter
}

// NewMetrics creates the sheet collectors and registers them with reg.
// passing a fresh prometheus.NewRegistry() keeps sheets isolated from each
// other and from the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WritesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "writes_total",
			Help:      "Total cell writes by result",
		}, []string{"result"}),
		EvaluationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "formula_evaluations_total",
			Help:      "Total formula evaluations (memoization misses)",
		}),
		CacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "formula_cache_hits_total",
			Help:      "Total formula reads served from the memoized value",
		}),
		InvalidationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "invalidations_total",
			Help:      "Total memoized formula values dropped after writes",
		}),
		AutovivifiedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "autovivified_cells_total",
			Help:      "Total empty cells created because a formula referenced them",
		}),
	}
}

func (m *Metrics) write(result string) {
	if m == nil {
		return
	}
	m.WritesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) evaluated() {
	if m == nil {
		return
	}
	m.EvaluationsTotal.Inc()
}

func (m *Metrics) cacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) invalidated(n int) {
	if m == nil || n == 0 {
		return
	}
	m.InvalidationsTotal.Add(float64(n))
}

func (m *Metrics) autovivified() {
	if m == nil {
		return
	}
	m.AutovivifiedTotal.Inc()
}
