package store

import (
	"reflect"

	"github.com/vango-dev/vstore/pkg/value"
)

// merge overlays cand onto prev one level deep. Candidates that are not a
// mergeable composite of the same type as prev replace it wholesale.
func merge[T any](prev, cand T) T {
	if c, ok := any(cand).(*value.Object); ok {
		if p, ok := any(prev).(*value.Object); ok && p != nil && c != nil {
			return any(p.Assign(c)).(T)
		}
		return cand
	}

	pv, cv := reflect.ValueOf(any(prev)), reflect.ValueOf(any(cand))
	if !pv.IsValid() || !cv.IsValid() || pv.Type() != cv.Type() {
		return cand
	}

	var out reflect.Value
	switch cv.Kind() {
	case reflect.Map:
		if cv.Type().Key().Kind() != reflect.String || cv.IsNil() {
			return cand
		}
		out = mergeMap(pv, cv)
	case reflect.Struct:
		out = mergeStruct(pv, cv)
	case reflect.Pointer:
		if cv.Elem().Kind() != reflect.Struct || pv.IsNil() || cv.IsNil() {
			return cand
		}
		out = reflect.New(cv.Type().Elem())
		out.Elem().Set(mergeStruct(pv.Elem(), cv.Elem()))
	default:
		return cand
	}
	return out.Interface().(T)
}

func mergeMap(prev, cand reflect.Value) reflect.Value {
	out := reflect.MakeMapWithSize(cand.Type(), prev.Len()+cand.Len())
	for _, src := range []reflect.Value{prev, cand} {
		iter := src.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
	}
	return out
}

// mergeStruct copies prev and overwrites every exported field that is
// non-zero in cand. Unexported fields always keep their previous value.
func mergeStruct(prev, cand reflect.Value) reflect.Value {
	out := reflect.New(cand.Type()).Elem()
	out.Set(prev)
	for i := 0; i < cand.NumField(); i++ {
		f := out.Field(i)
		if !f.CanSet() {
			continue
		}
		if c := cand.Field(i); !c.IsZero() {
			f.Set(c)
		}
	}
	return out
}
