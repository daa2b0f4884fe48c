package vm

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics counts wrapper activity for one VM. Each VM registers its
// collectors in a private registry so several VMs can coexist in one
// process.
type Metrics struct {
	registry *prometheus.Registry

	wrappers    *prometheus.CounterVec
	handlers    *prometheus.CounterVec
	comparisons *prometheus.CounterVec
	steps       prometheus.Counter
	wrapDepth   prometheus.Histogram
}

// NewMetrics creates and registers the VM collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		wrappers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaperone_wrappers_created_total",
				Help: "Wrappers created, by kind and strength",
			},
			[]string{"kind", "strength"},
		),
		handlers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaperone_handler_invocations_total",
				Help: "Interposition handler invocations, by intercepted operation",
			},
			[]string{"operation"},
		),
		comparisons: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaperone_comparisons_total",
				Help: "Top-level equivalence comparisons, by relation",
			},
			[]string{"mode"},
		),
		steps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chaperone_equal_steps_total",
				Help: "Individual comparison steps taken by the equivalence engine",
			},
		),
		wrapDepth: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chaperone_wrapper_depth",
				Help:    "Number of wrapper layers at creation time",
				Buckets: prometheus.LinearBuckets(1, 1, 8),
			},
		),
	}
	m.registry.MustRegister(m.wrappers, m.handlers, m.comparisons, m.steps, m.wrapDepth)
	return m
}

// Registry returns the registry holding the VM collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Gather collects the current metric families.
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}

func (m *Metrics) wrapperCreated(w Wrapper) {
	m.wrappers.WithLabelValues(w.Kind().String(), w.Strength().String()).Inc()
	m.wrapDepth.Observe(float64(Depth(w)))
}

func (m *Metrics) handlerInvoked(op string) {
	m.handlers.WithLabelValues(op).Inc()
}

func (m *Metrics) comparison(mode EqualMode) {
	m.comparisons.WithLabelValues(mode.String()).Inc()
}

func (m *Metrics) equalStep() {
	m.steps.Inc()
}

// WrappersCreated returns the counter for one kind and strength.
func (m *Metrics) WrappersCreated(kind Kind, strength Strength) prometheus.Counter {
	return m.wrappers.WithLabelValues(kind.String(), strength.String())
}

// HandlerInvocations returns the counter for one intercepted operation.
func (m *Metrics) HandlerInvocations(op string) prometheus.Counter {
	return m.handlers.WithLabelValues(op)
}

// Comparisons returns the counter for one relation.
func (m *Metrics) Comparisons(mode EqualMode) prometheus.Counter {
	return m.comparisons.WithLabelValues(mode.String())
}

// EqualSteps returns the step counter.
func (m *Metrics) EqualSteps() prometheus.Counter { return m.steps }
