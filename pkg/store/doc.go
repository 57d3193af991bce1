// Package store provides an observable value cell with structural change
// detection, read-only publication and memoized selectors.
//
// A Store holds exactly one current value. Every write goes through the same
// pipeline:
//
//  1. compute a candidate (literal, updater function or async producer)
//  2. optionally merge it shallowly onto the current value (Partial)
//  3. compare it to the current value; equal writes are dropped silently
//  4. freeze the candidate and publish it
//  5. notify every listener registered at publish time
//  6. call the OnChange hook
//
// # Read-only values
//
// Composites of package value are frozen on publish and shared with every
// reader. Plain Go containers (slices, maps and pointers) cannot be frozen,
// so the store publishes a private copy of them and every reader, listeners
// included, receives its own copy. Mutating what a store returned never
// changes the store; write the change back with Set or Update instead. A
// Shallow comparator therefore sees every write of such a value as a change.
//
// # Notification
//
// Notification never runs under the store's locks. Each accepted write
// enqueues a round, and rounds are delivered in commit order by whichever
// goroutine finds the queue idle. A listener may call Set again: the new
// value is published immediately and its round is delivered after the
// current one finishes.
//
// Listeners removed during a round are not called for that round. Listeners
// added during a round are first called on the next one.
//
// A panicking listener or OnChange hook does not abort the round. The panic
// is recovered, wrapped in a *ListenerPanicError and handed to the panic
// handler, which logs it by default.
//
// # Selectors
//
//	count := store.New(10)
//	doubled := store.Select(count, func(n int) int { return n * 2 }, func(v int) {
//	    fmt.Println("doubled:", v)
//	})
//	defer doubled.Close()
//
//	count.Set(10) // equal, nothing happens
//	count.Set(6)  // prints "doubled: 12"
//
// The converter runs once per accepted write. Its result is only propagated
// when it differs from the previous result under the store's comparator.
package store
