package value

import "fmt"

// List is an ordered sequence.
type List struct {
	frozenFlag

	items []any
}

// NewList creates a list holding items. The argument slice is copied.
func NewList(items ...any) *List {
	return &List{items: append([]any(nil), items...)}
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.items)
}

// At returns the element at index i. It panics if i is out of range.
func (l *List) At(i int) any {
	return l.items[i]
}

// Items returns a copy of the elements.
func (l *List) Items() []any {
	return append([]any(nil), l.items...)
}

// Set replaces the element at index i.
func (l *List) Set(i int, v any) error {
	if err := l.checkWritable(fmt.Sprintf("set index %d", i)); err != nil {
		return err
	}
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("value: index %d out of range [0:%d]", i, len(l.items))
	}
	l.items[i] = v
	return nil
}

// Append adds elements to the end of the list.
func (l *List) Append(vs ...any) error {
	if err := l.checkWritable("append"); err != nil {
		return err
	}
	l.items = append(l.items, vs...)
	return nil
}

// Range calls fn for each element in order until fn returns false.
func (l *List) Range(fn func(i int, v any) bool) {
	for i, v := range l.items {
		if !fn(i, v) {
			return
		}
	}
}

// EachChild visits every element.
func (l *List) EachChild(fn func(child any)) {
	for _, v := range l.items {
		fn(v)
	}
}
