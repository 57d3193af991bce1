package freeze

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vango-dev/vstore/pkg/value"
)

func TestDeepPrimitivesUnchanged(t *testing.T) {
	if Deep(1) != 1 {
		t.Error("Deep(1) != 1")
	}
	if Deep("x") != "x" {
		t.Error(`Deep("x") != "x"`)
	}
	var nilObj *value.Object
	if Deep(nilObj) != nil {
		t.Error("Deep(nil object) should return nil")
	}
	if !IsFrozen(3) || !IsFrozen(nil) {
		t.Error("scalars and nil should report frozen")
	}
}

func TestDeepObject(t *testing.T) {
	obj := value.ObjectOf("key", "value")
	frozen := Deep(obj)

	if frozen != obj {
		t.Error("Deep should return the same reference")
	}
	if !IsFrozen(frozen) {
		t.Error("object should be frozen")
	}
	if err := frozen.Set("newKey", "newValue"); !errors.Is(err, value.ErrFrozen) {
		t.Errorf("Set() on frozen object error = %v, want ErrFrozen", err)
	}
}

func TestDeepList(t *testing.T) {
	list := Deep(value.NewList(1, 2, 3))
	if err := list.Append(4); !errors.Is(err, value.ErrFrozen) {
		t.Errorf("Append() error = %v, want ErrFrozen", err)
	}
	if list.Len() != 3 {
		t.Errorf("Len() = %d, want 3", list.Len())
	}
}

func TestDeepNested(t *testing.T) {
	inner := value.ObjectOf("key", "value")
	outer := value.ObjectOf("inner", inner, "list", value.NewList(value.NewSet(1)))
	Deep(outer)

	if !inner.IsFrozen() {
		t.Error("nested object should be frozen")
	}
	if err := inner.Set("newKey", 1); !errors.Is(err, value.ErrFrozen) {
		t.Errorf("nested Set() error = %v", err)
	}
	set := outer.Value("list").(*value.List).At(0).(*value.Set)
	if !set.IsFrozen() {
		t.Error("set nested in list should be frozen")
	}
}

func TestDeepSkipsAccessors(t *testing.T) {
	obj := value.ObjectOf("a", 1, "c", value.ObjectOf("x", 1))
	_ = obj.Define("b", value.Accessor{Get: func() any { return value.ObjectOf("a", 2) }})
	Deep(obj)

	got := obj.Value("b").(*value.Object)
	if got.IsFrozen() {
		t.Error("getter results should not be frozen")
	}
	if !obj.Value("c").(*value.Object).IsFrozen() {
		t.Error("data property should be frozen")
	}
}

func TestDeepIdempotent(t *testing.T) {
	obj := value.ObjectOf("key", "value")
	Deep(obj)
	Deep(obj)
	if !obj.IsFrozen() {
		t.Error("object should stay frozen")
	}
}

func TestDeepFrozenCycle(t *testing.T) {
	a := value.NewObject()
	b := value.ObjectOf("a", a)
	_ = a.Set("b", b)

	Deep(a)
	if !a.IsFrozen() || !b.IsFrozen() {
		t.Error("both halves of the cycle should be frozen")
	}
}

type holder struct {
	Items  []*value.List
	ByName map[string]any
	Ptr    *value.Object
	hidden *value.Object
	Count  int
}

func TestDeepWalksPlainContainers(t *testing.T) {
	h := &holder{
		Items:  []*value.List{value.NewList(1)},
		ByName: map[string]any{"x": value.ObjectOf("y", 1)},
		Ptr:    value.NewObject(),
		hidden: value.NewObject(),
	}
	Deep(h)

	if !h.Items[0].IsFrozen() {
		t.Error("slice element should be frozen")
	}
	if !h.ByName["x"].(*value.Object).IsFrozen() {
		t.Error("map value should be frozen")
	}
	if !h.Ptr.IsFrozen() {
		t.Error("pointer field should be frozen")
	}
	if h.hidden.IsFrozen() {
		t.Error("unexported field should be left alone")
	}
	if IsFrozen(h) {
		t.Error("plain struct pointers cannot be frozen")
	}
}

func TestMayHold(t *testing.T) {
	type leaf struct{ A, B int }
	type node struct {
		Next *node
		V    int
	}
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"int", 1, false},
		{"leaf", leaf{}, false},
		{"recursive scalar node", node{}, false},
		{"slice of any", []any{}, true},
		{"object", value.NewObject(), true},
		{"map to lists", map[int]*value.List{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := typeMayHold(reflect.TypeOf(tt.v), map[reflect.Type]bool{}); got != tt.want {
				t.Errorf("typeMayHold() = %v, want %v", got, tt.want)
			}
		})
	}
}
