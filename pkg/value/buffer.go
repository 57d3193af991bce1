package value

import "fmt"

// Element is the set of numeric element types a Buffer can hold.
type Element interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~float32 | ~float64
}

// Binary is implemented by every Buffer instantiation.
type Binary interface {
	Len() int
	ElementAt(i int) any
}

// Buffer is a homogeneous numeric sequence.
type Buffer[E Element] struct {
	frozenFlag

	data []E
}

// NewBuffer creates a buffer holding a copy of data.
func NewBuffer[E Element](data ...E) *Buffer[E] {
	return &Buffer[E]{data: append([]E(nil), data...)}
}

// Len returns the number of elements.
func (b *Buffer[E]) Len() int {
	return len(b.data)
}

// At returns the element at index i.
func (b *Buffer[E]) At(i int) E {
	return b.data[i]
}

// ElementAt returns the element at index i as an interface value.
func (b *Buffer[E]) ElementAt(i int) any {
	return b.data[i]
}

// Set replaces the element at index i.
func (b *Buffer[E]) Set(i int, v E) error {
	if err := b.checkWritable(fmt.Sprintf("buffer set %d", i)); err != nil {
		return err
	}
	if i < 0 || i >= len(b.data) {
		return fmt.Errorf("value: index %d out of range [0:%d]", i, len(b.data))
	}
	b.data[i] = v
	return nil
}

// Slice returns a copy of the elements.
func (b *Buffer[E]) Slice() []E {
	return append([]E(nil), b.data...)
}

// EachChild is a no-op: elements are scalars.
func (b *Buffer[E]) EachChild(func(child any)) {}

// Boxed wraps a bool, number or string in an object.
type Boxed struct {
	frozenFlag

	v any
}

// Box wraps v. It panics if v is not a bool, number or string.
func Box(v any) *Boxed {
	switch v.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return &Boxed{v: v}
	}
	panic(fmt.Sprintf("value: cannot box %T", v))
}

// Unwrap returns the primitive.
func (b *Boxed) Unwrap() any {
	return b.v
}

// EachChild is a no-op: the boxed primitive has no children.
func (b *Boxed) EachChild(func(child any)) {}

// String formats the primitive.
func (b *Boxed) String() string {
	return fmt.Sprint(b.v)
}
