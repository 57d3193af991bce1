package store

import (
	"sync"

	"github.com/vango-dev/vstore/pkg/freeze"
)

// Selection is a memoized projection of a store's value. It recomputes on
// every accepted write and propagates only when the derived result changes.
type Selection[R any] struct {
	mu      sync.Mutex
	last    R
	version uint64
	closed  bool

	onChange func(R)
	close    func()
}

// Select derives a Selection from s through conv. The initial result is
// computed immediately and available from Get; onChange, which may be nil,
// is called with every later result that differs from the previous one
// under the store's comparator.
//
// conv runs once per accepted write whether or not its result is used, and
// must not write to s. Derived results are frozen before being stored. A
// panic in the initial call of conv propagates and leaves s without the
// selection's listener.
func Select[T, R any](s *Store[T], conv func(T) R, onChange func(R)) *Selection[R] {
	sel := &Selection[R]{onChange: onChange}

	// Rounds delivered before the initial result is stored wait on sel.mu
	// and are then discarded as stale.
	sel.mu.Lock()
	defer sel.mu.Unlock()

	sub := s.subscribe(func(version uint64, v T) {
		next, changed, ok := sel.update(version, func() R { return derive(conv, v) }, s.comparator)
		if !ok {
			return
		}
		s.metrics.recordSelector(s.name, changed)
		if changed && sel.onChange != nil {
			sel.onChange(freeze.Copy(next))
		}
	})
	sel.close = func() { s.unsubscribe(sub) }

	ready := false
	defer func() {
		if !ready {
			sel.closed = true
			s.unsubscribe(sub)
		}
	}()

	v, version := s.snapshot()
	sel.version = version
	sel.last = derive(conv, v)
	ready = true
	return sel
}

func derive[T, R any](conv func(T) R, v T) R {
	return freeze.Deep(freeze.Copy(conv(v)))
}

// update evaluates compute for the round with the given version. ok is false
// when the selection is closed or the round is not newer than the last one
// evaluated.
func (sel *Selection[R]) update(version uint64, compute func() R, comparator func(a, b any) bool) (next R, changed, ok bool) {
	sel.mu.Lock()
	defer sel.mu.Unlock()

	if sel.closed || version <= sel.version {
		return next, false, false
	}
	sel.version = version
	next = compute()
	if comparator(sel.last, next) {
		return next, false, true
	}
	sel.last = next
	return next, true, true
}

// Get returns the last derived result. After Close it keeps returning the
// last result observed before closing.
func (sel *Selection[R]) Get() R {
	sel.mu.Lock()
	last := sel.last
	sel.mu.Unlock()
	return freeze.Copy(last)
}

// Close stops recomputation. It is idempotent.
func (sel *Selection[R]) Close() {
	sel.mu.Lock()
	if sel.closed {
		sel.mu.Unlock()
		return
	}
	sel.closed = true
	sel.mu.Unlock()

	sel.close()
}

// Closed reports whether Close has been called.
func (sel *Selection[R]) Closed() bool {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	return sel.closed
}
