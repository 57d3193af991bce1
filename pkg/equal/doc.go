// Package equal implements the structural equality used to decide whether a
// store write or a derived value actually changed.
//
// Each operand is resolved to exactly one Kind by Classify, then compared by
// the rules of that kind:
//
//   - Absent (nil interface, nil pointer, nil func): equal only to an absent
//     value of the same dynamic type.
//   - Primitive: same dynamic type and same value; NaN equals NaN.
//   - Boxed (*value.Boxed): unwrapped value; a boxed value also equals a bare
//     primitive of the same type.
//   - Temporal (time.Time): same instant.
//   - Pattern (*regexp.Regexp): same source, flags included.
//   - Map (Go maps, *value.Map): same size, keys matched structurally.
//   - Set (*value.Set): same size, members matched structurally.
//   - Binary (*value.Buffer): same element type and elements.
//   - Sequence (slices, arrays, *value.List): index-wise. A nil slice equals
//     an empty one.
//   - Object (structs, *value.Object): same keys, equal values.
//   - Function: the same func value. Copies of a func are equal; distinct
//     closures are not.
//
// Values of different kinds, and Go values of different dynamic types, are
// never equal. Cyclic graphs are not supported and may not terminate.
package equal
