package vstore

import (
	"errors"
	"testing"

	"github.com/vango-dev/vstore/pkg/value"
)

func TestFacade(t *testing.T) {
	var changes []int
	profile := New(Object("name", "Saiya", "age", 9),
		WithOnChange(func(p *value.Object) { changes = append(changes, p.Value("age").(int)) }))

	var lengths []int
	nameLength := Select(profile, func(p *value.Object) int {
		return len(p.Value("name").(string))
	}, func(n int) { lengths = append(lengths, n) })
	defer nameLength.Close()

	if !profile.Set(Object("age", 10), Partial()) {
		t.Fatal("partial write was rejected")
	}
	if profile.Set(Object("age", 10), Partial()) {
		t.Error("equal partial write was accepted")
	}
	profile.Set(Object("name", "Goten"), Partial())

	if got := profile.Get(); !Equal(got, Object("name", "Goten", "age", 10)) {
		t.Errorf("Get() = %v, want {name: Goten, age: 10}", got)
	}
	if len(changes) != 2 || changes[0] != 10 {
		t.Errorf("onChange calls = %v, want [10 10]", changes)
	}
	if len(lengths) != 0 {
		t.Errorf("selector changes = %v, want none for same-length names", lengths)
	}
	if nameLength.Get() != 5 {
		t.Errorf("nameLength = %d, want 5", nameLength.Get())
	}

	if err := profile.Get().Set("age", 11); !errors.Is(err, ErrFrozen) {
		t.Errorf("mutating a published value: err = %v, want ErrFrozen", err)
	}
}

func TestFacadeParseAndFreeze(t *testing.T) {
	v, err := Parse([]byte(`{"items":[1,2]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	s := NewFunc(func() any { return v })
	if !Equal(s.Get(), Object("items", List(1.0, 2.0))) {
		t.Errorf("Get() = %v", s.Get())
	}

	l := Freeze(List(1))
	if err := l.Append(2); !errors.Is(err, ErrFrozen) {
		t.Errorf("Append on frozen list: err = %v, want ErrFrozen", err)
	}
}
