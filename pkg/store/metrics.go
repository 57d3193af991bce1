package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors of a Metrics set.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vstore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures a Metrics set.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vstore",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors shared by any number of stores.
// Every series carries a "store" label with the store's name.
type Metrics struct {
	writesTotal         *prometheus.CounterVec
	notificationsTotal  *prometheus.CounterVec
	listeners           *prometheus.GaugeVec
	selectorEvaluations *prometheus.CounterVec
	asyncInflight       *prometheus.GaugeVec
	listenerPanics      *prometheus.CounterVec
}

// Write results.
const (
	resultAccepted   = "accepted"
	resultSuppressed = "suppressed"
	resultRejected   = "rejected"
)

// Selector evaluation results.
const (
	resultChanged   = "changed"
	resultUnchanged = "unchanged"
)

// NewMetrics registers the store collectors.
//
// Registering twice against the same registry panics, as with promauto.
// Tests should pass a fresh prometheus.NewRegistry().
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		writesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "writes_total",
			Help:        "Total number of store writes by result",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "result"}),

		notificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of listener invocations",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		listeners: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "listeners",
			Help:        "Number of registered listeners, selectors included",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		selectorEvaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "selector_evaluations_total",
			Help:        "Total number of selector recomputations by result",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "result"}),

		asyncInflight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "async_inflight",
			Help:        "Number of unresolved asynchronous writes",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		listenerPanics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "listener_panics_total",
			Help:        "Total number of recovered listener and hook panics",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),
	}
}

// The recorders below accept a nil receiver so stores without metrics skip
// the nil checks.

func (m *Metrics) recordWrite(store, result string) {
	if m == nil {
		return
	}
	m.writesTotal.WithLabelValues(store, result).Inc()
}

func (m *Metrics) recordNotification(store string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(store).Inc()
}

func (m *Metrics) setListeners(store string, n int) {
	if m == nil {
		return
	}
	m.listeners.WithLabelValues(store).Set(float64(n))
}

func (m *Metrics) recordSelector(store string, changed bool) {
	if m == nil {
		return
	}
	result := resultUnchanged
	if changed {
		result = resultChanged
	}
	m.selectorEvaluations.WithLabelValues(store, result).Inc()
}

func (m *Metrics) asyncStarted(store string) {
	if m == nil {
		return
	}
	m.asyncInflight.WithLabelValues(store).Inc()
}

func (m *Metrics) asyncFinished(store string) {
	if m == nil {
		return
	}
	m.asyncInflight.WithLabelValues(store).Dec()
}

func (m *Metrics) recordPanic(store string) {
	if m == nil {
		return
	}
	m.listenerPanics.WithLabelValues(store).Inc()
}
