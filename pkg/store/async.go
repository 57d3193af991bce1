package store

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Pending is the completion of an asynchronous write.
type Pending struct {
	done     chan struct{}
	accepted bool
	err      error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(accepted bool, err error) {
	p.accepted = accepted
	p.err = err
	close(p.done)
}

// Done is closed once the write has been published, suppressed or rejected.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the write completes or ctx is done. It returns the
// producer's error, or ctx.Err() if ctx ended first. A context ending here
// does not cancel the write.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the producer's error once the write has completed, nil before.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Accepted reports whether the completed write changed the store.
func (p *Pending) Accepted() bool {
	select {
	case <-p.done:
		return p.accepted
	default:
		return false
	}
}

// SetAsync runs fn in a new goroutine and publishes its result when it
// returns. prev is the value current at the time of the call; the result is
// gated and, with Partial, merged against the value current at resolution.
// Nothing is notified before fn returns.
//
// Concurrent async writes are applied in the order they resolve. An error
// or panic from fn rejects the write; it is reported through the returned
// Pending only. ctx is handed to fn and is not watched by the store.
func (s *Store[T]) SetAsync(ctx context.Context, fn func(ctx context.Context, prev T) (T, error), opts ...SetOption) *Pending {
	cfg := applySetOptions(opts)
	prev := s.Get()
	p := newPending()

	ctx, span := s.tracer.Start(ctx, "vstore.SetAsync",
		trace.WithAttributes(
			attribute.String("vstore.store", s.name),
			attribute.Bool("vstore.partial", cfg.Partial),
		),
	)
	s.metrics.asyncStarted(s.name)

	go func() {
		finish := func(accepted bool, err error) {
			s.metrics.asyncFinished(s.name)
			span.End()
			p.resolve(accepted, err)
		}

		next, err := produceAsync(ctx, fn, prev)
		if err != nil {
			s.metrics.recordWrite(s.name, resultRejected)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			finish(false, err)
			return
		}

		accepted, _ := s.write(func(T) (T, error) { return next, nil }, cfg)
		s.deliver()
		span.SetAttributes(attribute.Bool("vstore.accepted", accepted))
		s.logger.Debug("async write resolved", "accepted", accepted)
		finish(accepted, nil)
	}()

	return p
}

func produceAsync[T any](ctx context.Context, fn func(context.Context, T) (T, error), prev T) (next T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newProducerPanic(r)
		}
	}()
	return fn(ctx, prev)
}
