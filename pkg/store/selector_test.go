package store

import (
	"errors"
	"testing"

	"github.com/vango-dev/vstore/pkg/value"
)

func TestSelectMemoization(t *testing.T) {
	s := New(10)

	var observed []int
	sel := Select(s, func(v int) int { return v * 2 }, func(v int) {
		observed = append(observed, v)
	})
	defer sel.Close()
	observed = append(observed, sel.Get())

	s.Set(10)
	s.Set(6)

	if len(observed) != 2 || observed[0] != 20 || observed[1] != 12 {
		t.Errorf("observed = %v, want [20 12]", observed)
	}
}

func TestSelectUnchangedDerivedValue(t *testing.T) {
	s := New(value.ObjectOf("name", "a", "count", 1))

	evaluations := 0
	propagations := 0
	sel := Select(s, func(o *value.Object) any {
		evaluations++
		return o.Value("name")
	}, func(any) { propagations++ })
	defer sel.Close()

	s.Set(value.ObjectOf("count", 2), Partial())
	s.Set(value.ObjectOf("count", 3), Partial())
	s.Set(value.ObjectOf("name", "b"), Partial())

	// Initial evaluation plus one per accepted write.
	if evaluations != 4 {
		t.Errorf("evaluations = %d, want 4", evaluations)
	}
	if propagations != 1 {
		t.Errorf("propagations = %d, want 1", propagations)
	}
	if got := sel.Get(); got != "b" {
		t.Errorf("Get() = %v, want b", got)
	}
}

func TestSelectStructuralResult(t *testing.T) {
	s := New(value.ObjectOf("items", value.NewList(1, 2), "other", 0))

	propagations := 0
	sel := Select(s, func(o *value.Object) *value.List {
		// A fresh list on every call.
		return value.NewList(o.Value("items").(*value.List).Items()...)
	}, func(*value.List) { propagations++ })
	defer sel.Close()

	s.Set(value.ObjectOf("other", 1), Partial())
	if propagations != 0 {
		t.Errorf("structurally equal result propagated %d times", propagations)
	}

	if !sel.Get().IsFrozen() {
		t.Error("derived value should be frozen")
	}
	if err := sel.Get().Append(3); !errors.Is(err, value.ErrFrozen) {
		t.Errorf("Append on derived value = %v, want ErrFrozen", err)
	}
}

func TestSelectClose(t *testing.T) {
	s := New(1)

	evaluations := 0
	sel := Select(s, func(v int) int {
		evaluations++
		return v
	}, nil)

	if s.Listeners() != 1 {
		t.Errorf("Listeners() = %d, want 1", s.Listeners())
	}

	s.Set(2)
	sel.Close()
	sel.Close()
	s.Set(3)

	if !sel.Closed() {
		t.Error("Closed() = false after Close")
	}
	if evaluations != 2 {
		t.Errorf("evaluations = %d, want 2", evaluations)
	}
	if got := sel.Get(); got != 2 {
		t.Errorf("Get() after Close = %d, want last observed 2", got)
	}
	if s.Listeners() != 0 {
		t.Errorf("Listeners() = %d, want 0", s.Listeners())
	}
}

func TestSelectConverterPanicIsolated(t *testing.T) {
	var reported []error
	s := New(0, WithPanicHandler[int](func(err error) { reported = append(reported, err) }))

	sel := Select(s, func(v int) int {
		if v == 1 {
			panic("bad converter")
		}
		return v
	}, nil)
	defer sel.Close()

	s.Set(1)
	if len(reported) != 1 || !errors.Is(reported[0], ErrListenerPanic) {
		t.Fatalf("reported = %v, want one listener panic", reported)
	}

	s.Set(2)
	if got := sel.Get(); got != 2 {
		t.Errorf("Get() = %d, want 2 after recovering", got)
	}
}

func TestSelectInitialPanicReleasesListener(t *testing.T) {
	s := New(1)
	calls := 0

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Select did not propagate the converter panic")
			}
		}()
		Select(s, func(v int) int {
			calls++
			panic("bad converter")
		}, nil)
	}()

	if n := s.Listeners(); n != 0 {
		t.Errorf("Listeners() = %d, want 0", n)
	}
	s.Set(2)
	if calls != 1 {
		t.Errorf("converter calls = %d, want 1", calls)
	}
}

func TestSelectResultDetached(t *testing.T) {
	s := New(map[string][]int{"a": {1, 2}})
	var seen [][]int
	sel := Select(s, func(m map[string][]int) []int { return m["a"] }, func(v []int) {
		seen = append(seen, v)
		v[0] = -1
	})
	defer sel.Close()

	sel.Get()[0] = 99
	if got := sel.Get(); got[0] != 1 {
		t.Errorf("Get() = %v, want [1 2]", got)
	}

	s.Set(map[string][]int{"a": {3}})
	if got := sel.Get(); len(got) != 1 || got[0] != 3 {
		t.Errorf("Get() = %v, want [3]", got)
	}
	if len(seen) != 1 {
		t.Errorf("onChange calls = %d, want 1", len(seen))
	}
}

func TestSelectWritesFromCallback(t *testing.T) {
	s := New(1)
	log := New([]int(nil))

	sel := Select(s, func(v int) int { return v * 10 }, func(v int) {
		log.Update(func(prev []int) []int { return append(append([]int(nil), prev...), v) })
		if v < 30 {
			s.Update(func(n int) int { return n + 1 })
		}
	})
	defer sel.Close()

	s.Set(2)

	if got := s.Get(); got != 3 {
		t.Errorf("Get() = %d, want 3", got)
	}
	got := log.Get()
	if len(got) != 2 || got[0] != 20 || got[1] != 30 {
		t.Errorf("log = %v, want [20 30]", got)
	}
}
