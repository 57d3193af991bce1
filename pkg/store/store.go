package store

import (
	"log/slog"
	"runtime/debug"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vstore/pkg/equal"
	"github.com/vango-dev/vstore/pkg/freeze"
)

// tracerName is the instrumentation scope of the default tracer.
const tracerName = "github.com/vango-dev/vstore"

// defaultName is used in logs and metrics for stores created without WithName.
const defaultName = "store"

// Store is an observable value cell. The zero value is not usable; create
// stores with New or NewFunc.
//
// Store is safe for concurrent use. Writers are serialized; reads never
// block on notification.
type Store[T any] struct {
	name       string
	onChange   func(T)
	comparator func(a, b any) bool
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer
	onPanic    func(error)

	// writeMu serializes write pipelines from candidate to enqueue.
	writeMu sync.Mutex

	// mu protects value and version.
	mu      sync.RWMutex
	value   T
	version uint64

	subs registry[T]

	// qmu protects queue and draining.
	qmu      sync.Mutex
	queue    []round[T]
	draining bool
}

// round is the notification pass of one accepted write.
type round[T any] struct {
	version uint64
	value   T
	subs    []*subscription[T]
}

// New creates a store holding initial, frozen.
func New[T any](initial T, opts ...Option[T]) *Store[T] {
	var cfg config[T]
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.name == "" {
		cfg.name = defaultName
	}
	if cfg.comparator == nil {
		cfg.comparator = equal.Deep
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer(tracerName)
	}

	s := &Store[T]{
		name:       cfg.name,
		onChange:   cfg.onChange,
		comparator: cfg.comparator,
		logger:     cfg.logger.With("store", cfg.name),
		metrics:    cfg.metrics,
		tracer:     cfg.tracer,
		onPanic:    cfg.onPanic,
		value:      freeze.Deep(freeze.Copy(initial)),
	}
	if s.onPanic == nil {
		s.onPanic = s.logPanic
	}
	s.metrics.setListeners(s.name, 0)
	return s
}

// NewFunc creates a store whose initial value is produced by init.
func NewFunc[T any](init func() T, opts ...Option[T]) *Store[T] {
	return New(init(), opts...)
}

// Name returns the store's name.
func (s *Store[T]) Name() string {
	return s.name
}

// Get returns the current value. It never triggers computation or
// notification. Plain Go containers in the value are returned as a copy, so
// mutating them does not affect the store.
func (s *Store[T]) Get() T {
	return freeze.Copy(s.load())
}

// load returns the published value itself.
func (s *Store[T]) load() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// snapshot returns a copy of the current value with the version that
// published it.
func (s *Store[T]) snapshot() (T, uint64) {
	s.mu.RLock()
	v, version := s.value, s.version
	s.mu.RUnlock()
	return freeze.Copy(v), version
}

// Set replaces the current value with v, or merges v onto it with Partial.
// It reports whether the write was accepted; writes equal to the current
// value are dropped without notification.
func (s *Store[T]) Set(v T, opts ...SetOption) bool {
	accepted, _ := s.write(func(T) (T, error) { return v, nil }, applySetOptions(opts))
	s.deliver()
	return accepted
}

// Update computes the next value from the current one. A panic in fn
// propagates to the caller and leaves the store unchanged. fn must not write
// to the same store.
func (s *Store[T]) Update(fn func(prev T) T, opts ...SetOption) bool {
	accepted, _ := s.write(func(prev T) (T, error) { return fn(prev), nil }, applySetOptions(opts))
	s.deliver()
	return accepted
}

// TryUpdate is Update for producers that can fail. An error from fn is
// returned as is and leaves the store unchanged.
func (s *Store[T]) TryUpdate(fn func(prev T) (T, error), opts ...SetOption) (bool, error) {
	accepted, err := s.write(fn, applySetOptions(opts))
	s.deliver()
	return accepted, err
}

// Subscribe registers fn to receive every accepted value. The returned
// function removes it; calling it more than once is a no-op.
func (s *Store[T]) Subscribe(fn func(T)) func() {
	sub := s.subscribe(func(_ uint64, v T) { fn(v) })
	return func() { s.unsubscribe(sub) }
}

// Listeners returns the number of registered listeners, selectors included.
func (s *Store[T]) Listeners() int {
	return s.subs.len()
}

func (s *Store[T]) subscribe(fn func(version uint64, v T)) *subscription[T] {
	sub := s.subs.add(fn)
	s.metrics.setListeners(s.name, s.subs.len())
	return sub
}

func (s *Store[T]) unsubscribe(sub *subscription[T]) {
	if s.subs.remove(sub) {
		s.metrics.setListeners(s.name, s.subs.len())
	}
}

// write runs the pipeline up to enqueueing the round. Delivery is left to
// the caller so that it happens after writeMu is released.
func (s *Store[T]) write(produce func(prev T) (T, error), cfg SetConfig) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next, err := produce(s.Get())
	if err != nil {
		s.metrics.recordWrite(s.name, resultRejected)
		return false, err
	}
	return s.commit(next, cfg), nil
}

// commit gates, freezes and publishes next. Must hold writeMu.
func (s *Store[T]) commit(next T, cfg SetConfig) bool {
	prev := s.load()
	if cfg.Partial {
		next = merge(prev, next)
	}
	if s.comparator(prev, next) {
		s.metrics.recordWrite(s.name, resultSuppressed)
		s.logger.Debug("write suppressed", "partial", cfg.Partial)
		return false
	}
	// Cut the caller's references to plain containers before publishing.
	next = freeze.Deep(freeze.Copy(next))

	s.mu.Lock()
	s.value = next
	s.version++
	version := s.version
	s.mu.Unlock()

	s.metrics.recordWrite(s.name, resultAccepted)
	s.logger.Debug("write accepted", "version", version, "partial", cfg.Partial)

	s.qmu.Lock()
	s.queue = append(s.queue, round[T]{version: version, value: next, subs: s.subs.snapshot()})
	s.qmu.Unlock()
	return true
}

// deliver drains the round queue unless another call is already draining
// it, in which case the pending rounds are left to that call.
func (s *Store[T]) deliver() {
	s.qmu.Lock()
	if s.draining || len(s.queue) == 0 {
		s.qmu.Unlock()
		return
	}
	s.draining = true
	s.qmu.Unlock()

	drained := false
	defer func() {
		// The panic handler itself panicked; let the next writer drain.
		if !drained {
			s.qmu.Lock()
			s.draining = false
			s.qmu.Unlock()
		}
	}()

	for {
		s.qmu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.qmu.Unlock()
			drained = true
			return
		}
		r := s.queue[0]
		s.queue[0] = round[T]{}
		s.queue = s.queue[1:]
		s.qmu.Unlock()

		s.notify(r)
	}
}

func (s *Store[T]) notify(r round[T]) {
	for _, sub := range r.subs {
		if !sub.active.Load() {
			continue
		}
		s.metrics.recordNotification(s.name)
		s.call(false, func() { sub.fn(r.version, freeze.Copy(r.value)) })
	}
	if s.onChange != nil {
		s.call(true, func() { s.onChange(freeze.Copy(r.value)) })
	}
}

// call runs fn, turning a panic into a ListenerPanicError for the handler.
func (s *Store[T]) call(hook bool, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			s.metrics.recordPanic(s.name)
			s.onPanic(newListenerPanic(s.name, hook, rec, debug.Stack()))
		}
	}()
	fn()
}

func (s *Store[T]) logPanic(err error) {
	attrs := []any{"error", err}
	if lp, ok := err.(*ListenerPanicError); ok {
		attrs = append(attrs, "hook", lp.Hook, "stack", string(lp.Stack))
	}
	s.logger.Error("listener panicked", attrs...)
}
