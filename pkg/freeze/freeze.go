// Package freeze marks value trees read-only before they are published.
//
// Only types implementing Freezable can actually be marked (every composite
// of package value does). Plain Go containers (slices, arrays, maps, structs
// and pointers) cannot be made read-only; Deep walks through them to reach
// nested freezables and leaves them otherwise untouched. Unexported struct
// fields are not visited.
//
// Holders of plain containers protect them with Copy instead: a store keeps
// a private copy of what it publishes and hands out copies of it.
//
// Graphs with reference cycles are not supported: a cycle made only of
// freezables terminates (already frozen children are skipped) but a cycle
// through plain Go pointers does not.
package freeze

import (
	"reflect"
	"sync"
)

// Freezable is a composite that can be marked read-only.
type Freezable interface {
	// IsFrozen reports whether the value is already read-only.
	IsFrozen() bool

	// MarkFrozen marks the value itself read-only, without touching children.
	MarkFrozen()

	// EachChild visits the own data children. Accessor (computed) properties
	// are not visited, so their results are never frozen eagerly.
	EachChild(fn func(child any))
}

// Deep marks v and everything reachable from it read-only and returns v.
// It is idempotent.
func Deep[T any](v T) T {
	deep(any(v))
	return v
}

func deep(v any) {
	if v == nil {
		return
	}
	if f, ok := v.(Freezable); ok {
		if isNil(f) || f.IsFrozen() {
			return
		}
		f.MarkFrozen()
		f.EachChild(deep)
		return
	}
	rv := reflect.ValueOf(v)
	if !mayHold(rv.Type()) {
		return
	}
	walk(rv)
}

// walk descends through plain Go containers looking for freezables.
func walk(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return
		}
		if rv.Kind() == reflect.Pointer && rv.CanInterface() {
			if f, ok := rv.Interface().(Freezable); ok {
				deep(f)
				return
			}
		}
		elem := rv.Elem()
		if rv.Kind() == reflect.Interface && elem.CanInterface() {
			deep(elem.Interface())
			return
		}
		walk(elem)
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			visit(rv.Index(i))
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			visit(iter.Key())
			visit(iter.Value())
		}
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			if rv.Type().Field(i).IsExported() {
				visit(rv.Field(i))
			}
		}
	}
}

func visit(rv reflect.Value) {
	if !rv.CanInterface() {
		return
	}
	if !mayHold(rv.Type()) {
		return
	}
	deep(rv.Interface())
}

func isNil(f Freezable) bool {
	rv := reflect.ValueOf(f)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// IsFrozen reports whether v is read-only: scalars, nil and frozen
// freezables are; unfrozen freezables and plain Go containers are not.
func IsFrozen(v any) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(Freezable); ok {
		return isNil(f) || f.IsFrozen()
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct,
		reflect.Pointer, reflect.Interface:
		return false
	}
	return true
}

var (
	freezableType = reflect.TypeOf((*Freezable)(nil)).Elem()
	holdsCache    sync.Map // map[reflect.Type]bool
)

// mayHold reports whether values of type t can reach a Freezable.
func mayHold(t reflect.Type) bool {
	if cached, ok := holdsCache.Load(t); ok {
		return cached.(bool)
	}
	holds := typeMayHold(t, map[reflect.Type]bool{})
	holdsCache.Store(t, holds)
	return holds
}

func typeMayHold(t reflect.Type, visiting map[reflect.Type]bool) bool {
	if t.Implements(freezableType) {
		return true
	}
	if visiting[t] {
		return false
	}
	visiting[t] = true

	switch t.Kind() {
	case reflect.Interface:
		return true
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return typeMayHold(t.Elem(), visiting)
	case reflect.Map:
		return typeMayHold(t.Key(), visiting) || typeMayHold(t.Elem(), visiting)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if f := t.Field(i); f.IsExported() && typeMayHold(f.Type, visiting) {
				return true
			}
		}
	}
	return false
}
