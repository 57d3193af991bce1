package store

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Option is a functional option for configuring a store.
type Option[T any] func(*config[T])

// config holds the construction-time settings of a store.
type config[T any] struct {
	name       string
	onChange   func(T)
	comparator func(a, b any) bool
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer
	onPanic    func(error)
}

// WithOnChange registers a hook called once per accepted write, after every
// listener of that write has been notified. Suppressed writes never call it.
func WithOnChange[T any](fn func(T)) Option[T] {
	return func(c *config[T]) {
		c.onChange = fn
	}
}

// WithComparator replaces the structural equality used by the change gate
// and by selectors. The default is equal.Deep.
//
// Example:
//
//	s := store.New(math.NaN(), store.WithComparator[float64](equal.Shallow))
func WithComparator[T any](fn func(a, b any) bool) Option[T] {
	return func(c *config[T]) {
		c.comparator = fn
	}
}

// WithName names the store in logs, metrics and spans.
func WithName[T any](name string) Option[T] {
	return func(c *config[T]) {
		c.name = name
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(c *config[T]) {
		c.logger = logger
	}
}

// WithMetrics reports the store's activity to m.
func WithMetrics[T any](m *Metrics) Option[T] {
	return func(c *config[T]) {
		c.metrics = m
	}
}

// WithTracer sets the tracer used for SetAsync spans.
// Default: the global otel tracer provider.
func WithTracer[T any](tracer trace.Tracer) Option[T] {
	return func(c *config[T]) {
		c.tracer = tracer
	}
}

// WithPanicHandler receives every recovered listener or hook panic as a
// *ListenerPanicError. The default handler logs it at error level.
func WithPanicHandler[T any](fn func(error)) Option[T] {
	return func(c *config[T]) {
		c.onPanic = fn
	}
}

// SetConfig holds per-write settings.
type SetConfig struct {
	// Partial merges the candidate shallowly onto the current value instead
	// of replacing it. Default: false.
	Partial bool
}

// SetOption configures a single write.
type SetOption func(*SetConfig)

// Partial requests a shallow merge of the candidate onto the current value.
//
// Candidates that are *value.Object, Go maps with string keys, Go structs or
// pointers to structs are merged. Any other candidate replaces the value
// wholesale.
func Partial() SetOption {
	return WithPartial(true)
}

// WithPartial sets the partial flag explicitly.
func WithPartial(partial bool) SetOption {
	return func(c *SetConfig) {
		c.Partial = partial
	}
}

func applySetOptions(opts []SetOption) SetConfig {
	var cfg SetConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
