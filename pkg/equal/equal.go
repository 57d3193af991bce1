package equal

import (
	"reflect"
	"regexp"
	"time"
	"unsafe"

	"github.com/vango-dev/vstore/pkg/value"
)

// Deep reports whether a and b are structurally equal. It is pure and always
// returns; it may not terminate on cyclic graphs.
func Deep(a, b any) bool {
	return deepValue(reflect.ValueOf(a), reflect.ValueOf(b))
}

// Shallow is strict identity: == for comparable values, false otherwise.
// NaN is not equal to itself. Use it as a store comparator when only
// reference changes should count.
func Shallow(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

func deepValue(a, b reflect.Value) bool {
	a, b = unwrap(a), unwrap(b)
	if !a.IsValid() || !b.IsValid() {
		return !a.IsValid() && !b.IsValid()
	}

	ka, kb := Classify(a), Classify(b)
	if ka == KindAbsent || kb == KindAbsent {
		return ka == kb && a.Type() == b.Type()
	}

	switch {
	case ka == KindBoxed && kb == KindPrimitive:
		return deepValue(unbox(a), b)
	case ka == KindPrimitive && kb == KindBoxed:
		return deepValue(a, unbox(b))
	case ka != kb:
		return false
	}

	if ka == KindTemporal {
		return temporalEqual(a, b)
	}
	if ka == KindBoxed {
		return deepValue(unbox(a), unbox(b))
	}
	if a.Type() != b.Type() {
		return false
	}

	if a.Kind() == reflect.Pointer && !special(a.Type()) {
		if a.Pointer() == b.Pointer() {
			return true
		}
		return deepValue(a.Elem(), b.Elem())
	}

	switch ka {
	case KindPrimitive:
		return primitiveEqual(a, b)
	case KindPattern:
		return ptr(a).(*regexp.Regexp).String() == ptr(b).(*regexp.Regexp).String()
	case KindMap:
		return mapEqual(a, b)
	case KindSet:
		return setEqual(ptr(a).(*value.Set), ptr(b).(*value.Set))
	case KindBinary:
		return binaryEqual(ptr(a).(value.Binary), ptr(b).(value.Binary))
	case KindSequence:
		return sequenceEqual(a, b)
	case KindObject:
		return objectEqual(a, b)
	default:
		return funcEqual(a, b)
	}
}

// funcEqual reports whether a and b are the same func value. A func value
// is one pointer to its closure, so copies of it compare equal while
// distinct closures do not. Closures capturing nothing are static and equal
// to every other func made from the same literal.
func funcEqual(a, b reflect.Value) bool {
	pa, okA := funcWord(a)
	pb, okB := funcWord(b)
	return okA && okB && pa == pb
}

func funcWord(v reflect.Value) (unsafe.Pointer, bool) {
	switch {
	case v.CanAddr():
		return *(*unsafe.Pointer)(unsafe.Pointer(v.UnsafeAddr())), true
	case v.CanInterface():
		// Func values are stored directly in the interface data word.
		i := v.Interface()
		return (*[2]unsafe.Pointer)(unsafe.Pointer(&i))[1], true
	}
	return nil, false
}

func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// iface returns v as an interface, reaching through unexported fields.
// Pointers and addressable values always succeed.
func iface(v reflect.Value) (any, bool) {
	switch {
	case v.CanInterface():
		return v.Interface(), true
	case v.Kind() == reflect.Pointer:
		return reflect.NewAt(v.Type().Elem(), v.UnsafePointer()).Interface(), true
	case v.CanAddr():
		return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem().Interface(), true
	}
	return nil, false
}

// ptr returns a pointer-typed operand as an interface.
func ptr(v reflect.Value) any {
	i, _ := iface(v)
	return i
}

func unbox(v reflect.Value) reflect.Value {
	return reflect.ValueOf(ptr(v).(*value.Boxed).Unwrap())
}

func temporalEqual(a, b reflect.Value) bool {
	ta, okA := toTime(a)
	tb, okB := toTime(b)
	if okA && okB {
		return ta.Equal(tb)
	}
	// Unreachable time.Time inside an unexported field: compare its fields.
	return a.Type() == b.Type() && fieldsEqual(a, b)
}

func toTime(v reflect.Value) (time.Time, bool) {
	i, ok := iface(v)
	if !ok {
		return time.Time{}, false
	}
	switch t := i.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		return *t, true
	}
	return time.Time{}, false
}

func primitiveEqual(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() == b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() == b.Uint()
	case reflect.Float32, reflect.Float64:
		return floatEqual(a.Float(), b.Float())
	case reflect.Complex64, reflect.Complex128:
		x, y := a.Complex(), b.Complex()
		return floatEqual(real(x), real(y)) && floatEqual(imag(x), imag(y))
	case reflect.String:
		return a.String() == b.String()
	case reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	}
	return false
}

func floatEqual(x, y float64) bool {
	return x == y || (x != x && y != y)
}

func mapEqual(a, b reflect.Value) bool {
	if a.Type() == mapType {
		return valueMapEqual(ptr(a).(*value.Map), ptr(b).(*value.Map))
	}
	if a.Len() != b.Len() {
		return false
	}
	if a.Pointer() == b.Pointer() {
		return true
	}

	iter := a.MapRange()
	for iter.Next() {
		k, va := iter.Key(), iter.Value()
		if vb := b.MapIndex(k); vb.IsValid() && deepValue(va, vb) {
			continue
		}
		if !mapHasEntry(b, k, va) {
			return false
		}
	}
	return true
}

// mapHasEntry scans m for an entry whose key and value are structurally
// equal to k and v. Used when a direct lookup misses (NaN or pointer keys).
func mapHasEntry(m, k, v reflect.Value) bool {
	iter := m.MapRange()
	for iter.Next() {
		if deepValue(k, iter.Key()) && deepValue(v, iter.Value()) {
			return true
		}
	}
	return false
}

func valueMapEqual(a, b *value.Map) bool {
	if a == b {
		return true
	}
	if a.Len() != b.Len() {
		return false
	}
	eb := b.Entries()
	for _, ea := range a.Entries() {
		found := false
		for _, e := range eb {
			if Deep(ea.Key, e.Key) && Deep(ea.Value, e.Value) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func setEqual(a, b *value.Set) bool {
	if a == b {
		return true
	}
	if a.Len() != b.Len() {
		return false
	}
	mb := b.Members()
	for _, m := range a.Members() {
		found := false
		for _, other := range mb {
			if Deep(m, other) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func binaryEqual(a, b value.Binary) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !Deep(a.ElementAt(i), b.ElementAt(i)) {
			return false
		}
	}
	return true
}

func sequenceEqual(a, b reflect.Value) bool {
	if a.Type() == listType {
		la, lb := ptr(a).(*value.List), ptr(b).(*value.List)
		if la == lb {
			return true
		}
		if la.Len() != lb.Len() {
			return false
		}
		for i := 0; i < la.Len(); i++ {
			if !Deep(la.At(i), lb.At(i)) {
				return false
			}
		}
		return true
	}

	if a.Len() != b.Len() {
		return false
	}
	if a.Kind() == reflect.Slice && a.Len() > 0 && a.Pointer() == b.Pointer() {
		return true
	}
	for i := 0; i < a.Len(); i++ {
		if !deepValue(a.Index(i), b.Index(i)) {
			return false
		}
	}
	return true
}

func objectEqual(a, b reflect.Value) bool {
	if a.Type() == objectType {
		return valueObjectEqual(ptr(a).(*value.Object), ptr(b).(*value.Object))
	}

	return fieldsEqual(addressable(a), addressable(b))
}

func fieldsEqual(a, b reflect.Value) bool {
	for i := 0; i < a.NumField(); i++ {
		if !deepValue(a.Field(i), b.Field(i)) {
			return false
		}
	}
	return true
}

// addressable returns an addressable copy of a struct value so the special
// types held in its unexported fields can be reached. Values that can be
// neither copied nor addressed are returned as they are.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() || !v.CanInterface() {
		return v
	}
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}

func valueObjectEqual(a, b *value.Object) bool {
	if a == b {
		return true
	}
	if a.Len() != b.Len() {
		return false
	}
	for _, k := range a.Keys() {
		vb, ok := b.Get(k)
		if !ok {
			return false
		}
		va, _ := a.Get(k)
		if !Deep(va, vb) {
			return false
		}
	}
	return true
}
