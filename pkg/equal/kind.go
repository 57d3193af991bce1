package equal

import (
	"reflect"
	"regexp"
	"time"

	"github.com/vango-dev/vstore/pkg/value"
)

// Kind is the value category an operand is compared under.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindPrimitive
	KindBoxed
	KindTemporal
	KindPattern
	KindMap
	KindSet
	KindBinary
	KindSequence
	KindObject
	KindFunction
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindPrimitive:
		return "primitive"
	case KindBoxed:
		return "boxed"
	case KindTemporal:
		return "temporal"
	case KindPattern:
		return "pattern"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	case KindBinary:
		return "binary"
	case KindSequence:
		return "sequence"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	timePtrType = reflect.TypeOf((*time.Time)(nil))
	regexpType  = reflect.TypeOf((*regexp.Regexp)(nil))
	boxedType   = reflect.TypeOf((*value.Boxed)(nil))
	objectType  = reflect.TypeOf((*value.Object)(nil))
	listType    = reflect.TypeOf((*value.List)(nil))
	mapType     = reflect.TypeOf((*value.Map)(nil))
	setType     = reflect.TypeOf((*value.Set)(nil))
	binaryType  = reflect.TypeOf((*value.Binary)(nil)).Elem()
)

// Of classifies a Go value.
func Of(v any) Kind {
	return Classify(reflect.ValueOf(v))
}

// Classify resolves v to its value category.
func Classify(v reflect.Value) Kind {
	if !v.IsValid() {
		return KindAbsent
	}

	if k, ok := classifySpecial(v); ok {
		return k
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return KindAbsent
		}
		return Classify(v.Elem())
	case reflect.Pointer:
		if v.IsNil() {
			return KindAbsent
		}
		return Classify(v.Elem())
	case reflect.Func:
		if v.IsNil() {
			return KindAbsent
		}
		return KindFunction
	case reflect.Map:
		return KindMap
	case reflect.Slice, reflect.Array:
		return KindSequence
	case reflect.Struct:
		return KindObject
	default:
		return KindPrimitive
	}
}

// classifySpecial recognizes the types with dedicated comparison rules.
// Nil pointers of those types are absent.
func classifySpecial(v reflect.Value) (Kind, bool) {
	t := v.Type()
	if t == timeType {
		return KindTemporal, true
	}

	var k Kind
	switch {
	case t == timePtrType:
		k = KindTemporal
	case t == regexpType:
		k = KindPattern
	case t == boxedType:
		k = KindBoxed
	case t == objectType:
		k = KindObject
	case t == listType:
		k = KindSequence
	case t == mapType:
		k = KindMap
	case t == setType:
		k = KindSet
	case t.Kind() == reflect.Pointer && t.Implements(binaryType):
		k = KindBinary
	default:
		return 0, false
	}
	if v.IsNil() {
		return KindAbsent, true
	}
	return k, true
}

// special reports whether t is compared by a dedicated rule rather than by
// dereferencing.
func special(t reflect.Type) bool {
	switch t {
	case timePtrType, regexpType, boxedType, objectType, listType, mapType, setType:
		return true
	}
	return t.Kind() == reflect.Pointer && t.Implements(binaryType)
}
