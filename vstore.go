// Package vstore provides the public API of the observable value store.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/vstore"
//
// Usage:
//
//	profile := vstore.New(vstore.Object("name", "Saiya", "age", 9))
//	unsubscribe := profile.Subscribe(func(p *value.Object) { ... })
//	profile.Set(vstore.Object("age", 10), vstore.Partial())
//
//	nameLength := vstore.Select(profile, func(p *value.Object) int {
//	    return len(p.Value("name").(string))
//	}, nil)
package vstore

import (
	"github.com/vango-dev/vstore/pkg/bind"
	"github.com/vango-dev/vstore/pkg/equal"
	"github.com/vango-dev/vstore/pkg/freeze"
	"github.com/vango-dev/vstore/pkg/store"
	"github.com/vango-dev/vstore/pkg/value"
)

// =============================================================================
// Store (re-export from pkg/store)
// =============================================================================

// Store is an observable value cell.
type Store[T any] = store.Store[T]

// Selection is a derived value of a store.
type Selection[R any] = store.Selection[R]

// Pending is the result of SetAsync.
type Pending = store.Pending

// Option configures a store at creation.
type Option[T any] = store.Option[T]

// SetOption configures a single write.
type SetOption = store.SetOption

// New creates a store holding initial.
func New[T any](initial T, opts ...Option[T]) *Store[T] {
	return store.New(initial, opts...)
}

// NewFunc creates a store whose initial value is produced by init.
func NewFunc[T any](init func() T, opts ...Option[T]) *Store[T] {
	return store.NewFunc(init, opts...)
}

// Select derives a value from s. See store.Select.
func Select[T, R any](s *Store[T], conv func(T) R, onChange func(R)) *Selection[R] {
	return store.Select(s, conv, onChange)
}

// WithOnChange sets a hook called once per accepted write.
func WithOnChange[T any](fn func(T)) Option[T] {
	return store.WithOnChange(fn)
}

// WithComparator replaces deep equality as the write gate.
func WithComparator[T any](fn func(a, b any) bool) Option[T] {
	return store.WithComparator[T](fn)
}

// Partial merges the written value onto the current one.
var Partial = store.Partial

// =============================================================================
// Values (re-export from pkg/value)
// =============================================================================

// Object is an insertion-ordered string-keyed record.
func Object(kv ...any) *value.Object {
	return value.ObjectOf(kv...)
}

// List is an ordered sequence.
func List(items ...any) *value.List {
	return value.NewList(items...)
}

// Parse decodes a JSON document into a value tree.
var Parse = value.Parse

// ErrFrozen is returned by every mutator of a published value.
var ErrFrozen = value.ErrFrozen

// =============================================================================
// Equality and freezing
// =============================================================================

// Equal reports whether a and b are structurally equal.
var Equal = equal.Deep

// Freeze marks v and everything reachable from it read-only.
func Freeze[T any](v T) T {
	return freeze.Deep(v)
}

// =============================================================================
// Binding (re-export from pkg/bind)
// =============================================================================

// Owner is the scope of a mounted component.
type Owner = bind.Owner

// UseStore returns the value of s and re-renders o on every change.
func UseStore[T any](o *Owner, s *Store[T]) T {
	return bind.UseStore(o, s)
}

// UseSelector returns conv(value of s) and re-renders o when it changes.
func UseSelector[T, R any](o *Owner, s *Store[T], conv func(T) R) R {
	return bind.UseSelector(o, s, conv)
}
