// Package value provides a dynamic value tree whose composites can be frozen.
//
// Go has no way to mark an arbitrary map or slice read-only, so values that
// must be published immutably through a store are built from the composites
// in this package:
//
//   - Object: keyed object with insertion-ordered own properties. Properties
//     are either data properties or accessor properties (getter/setter pair).
//   - List: ordered sequence.
//   - Map: map-like collection whose keys may be of any type.
//   - Set: set-like collection of distinct members.
//   - Buffer: homogeneous numeric sequence (a typed binary buffer).
//   - Boxed: a boxed bool, number or string.
//
// Every composite implements the freeze contract (IsFrozen, MarkFrozen,
// EachChild). Once frozen, every mutating method returns ErrFrozen and leaves
// the value unchanged. Reads are safe from any goroutine after freezing;
// unfrozen composites are owned by a single goroutine.
//
// Parse converts a JSON document into a tree of these composites, keeping
// object key order.
//
//	v, err := value.Parse([]byte(`{"name":"Saiya","age":10}`))
//	obj := v.(*value.Object)
//	age, _ := obj.Get("age") // float64(10)
package value
