package freeze

import (
	"reflect"
	"regexp"
	"sync"
	"unsafe"
)

var (
	regexpType   = reflect.TypeOf((*regexp.Regexp)(nil))
	mutableCache sync.Map // map[reflect.Type]bool
)

// Copy returns v with every plain Go container reachable from it (slices,
// maps, pointers, interfaces holding them) replaced by a private copy.
// Freezables are shared, as are funcs, channels and unexported struct
// fields. Shared pointers and maps are copied once, so cycles through them
// terminate and aliasing inside v is preserved.
//
// Copy of a value whose type holds no plain container returns v itself.
func Copy[T any](v T) T {
	t := reflect.TypeFor[T]()
	if !Mutable(t) {
		return v
	}

	var out T
	c := copier{seen: map[seenKey]reflect.Value{}}
	reflect.ValueOf(&out).Elem().Set(c.copy(reflect.ValueOf(&v).Elem()))
	return out
}

// Mutable reports whether values of type t can reach a plain Go container
// that Copy would duplicate.
func Mutable(t reflect.Type) bool {
	if cached, ok := mutableCache.Load(t); ok {
		return cached.(bool)
	}
	m := typeMutable(t, map[reflect.Type]bool{})
	mutableCache.Store(t, m)
	return m
}

func typeMutable(t reflect.Type, visiting map[reflect.Type]bool) bool {
	if t == regexpType || t.Implements(freezableType) {
		return false
	}
	if visiting[t] {
		return false
	}
	visiting[t] = true

	switch t.Kind() {
	case reflect.Slice, reflect.Map, reflect.Pointer, reflect.Interface:
		return true
	case reflect.Array:
		return typeMutable(t.Elem(), visiting)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if f := t.Field(i); f.IsExported() && typeMutable(f.Type, visiting) {
				return true
			}
		}
	}
	return false
}

type seenKey struct {
	p unsafe.Pointer
	t reflect.Type
}

type copier struct {
	seen map[seenKey]reflect.Value
}

func (c *copier) copy(v reflect.Value) reflect.Value {
	t := v.Type()
	if !Mutable(t) {
		return v
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		elem := v.Elem()
		if !Mutable(elem.Type()) {
			return v
		}
		out := reflect.New(t).Elem()
		out.Set(c.copy(elem))
		return out

	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		key := seenKey{v.UnsafePointer(), t}
		if out, ok := c.seen[key]; ok {
			return out
		}
		out := reflect.New(t.Elem())
		c.seen[key] = out
		out.Elem().Set(c.copy(v.Elem()))
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		key := seenKey{v.UnsafePointer(), t}
		if out, ok := c.seen[key]; ok {
			return out
		}
		out := reflect.MakeMapWithSize(t, v.Len())
		c.seen[key] = out
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(c.copy(iter.Key()), c.copy(iter.Value()))
		}
		return out

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(t, v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(c.copy(v.Index(i)))
		}
		return out

	case reflect.Array:
		out := reflect.New(t).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(c.copy(v.Index(i)))
		}
		return out

	case reflect.Struct:
		out := reflect.New(t).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if f := t.Field(i); f.IsExported() && Mutable(f.Type) {
				out.Field(i).Set(c.copy(v.Field(i)))
			}
		}
		return out
	}
	return v
}
