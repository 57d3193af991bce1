package store

import (
	"sync"
	"sync/atomic"
)

// subscription is one registered listener. active is cleared on removal so
// that a round holding a stale snapshot skips it.
type subscription[T any] struct {
	id     uint64
	fn     func(version uint64, v T)
	active atomic.Bool
}

// registry is the set of listeners of one store.
type registry[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscription[T]
}

func (r *registry[T]) add(fn func(version uint64, v T)) *subscription[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subs == nil {
		r.subs = make(map[uint64]*subscription[T])
	}
	r.nextID++
	sub := &subscription[T]{id: r.nextID, fn: fn}
	sub.active.Store(true)
	r.subs[sub.id] = sub
	return sub
}

// remove deregisters sub. It reports false when sub was already removed.
func (r *registry[T]) remove(sub *subscription[T]) bool {
	if !sub.active.CompareAndSwap(true, false) {
		return false
	}
	r.mu.Lock()
	delete(r.subs, sub.id)
	r.mu.Unlock()
	return true
}

// snapshot copies the current listener set.
func (r *registry[T]) snapshot() []*subscription[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.subs) == 0 {
		return nil
	}
	subs := make([]*subscription[T], 0, len(r.subs))
	for _, sub := range r.subs {
		subs = append(subs, sub)
	}
	return subs
}

func (r *registry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
