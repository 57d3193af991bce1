package value

import (
	"errors"
	"testing"

	verrors "github.com/vango-dev/vstore/internal/errors"
)

func TestParse(t *testing.T) {
	v, err := Parse([]byte(`{"b":1,"a":[true,null,"x"],"c":{"d":2.5}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	o, ok := v.(*Object)
	if !ok {
		t.Fatalf("Parse() = %T, want *Object", v)
	}

	keys := o.Keys()
	if len(keys) != 3 || keys[0] != "b" || keys[1] != "a" || keys[2] != "c" {
		t.Errorf("Keys() = %v, want document order", keys)
	}
	if o.Value("b") != float64(1) {
		t.Errorf("b = %v, want 1", o.Value("b"))
	}
	list := o.Value("a").(*List)
	if list.Len() != 3 || list.At(0) != true || list.At(1) != nil || list.At(2) != "x" {
		t.Errorf("a = %v", list.Items())
	}
	if o.Value("c").(*Object).Value("d") != 2.5 {
		t.Errorf("c.d = %v", o.Value("c"))
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"a":`))
	if verrors.Code(err) != "E002" {
		t.Errorf("Parse() error = %v, want E002", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	doc := `{"name":"Saiya","tags":["a","b"],"stats":{"hp":10}}`
	o := MustParse(doc).(*Object)

	data, err := o.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != doc {
		t.Errorf("MarshalJSON() = %s, want %s", data, doc)
	}
}

func TestMarshalCollections(t *testing.T) {
	tests := []struct {
		name string
		v    interface{ MarshalJSON() ([]byte, error) }
		want string
	}{
		{"map", NewMap(Entry{Key: 1, Value: "a"}), `[[1,"a"]]`},
		{"set", NewSet("x", "y"), `["x","y"]`},
		{"buffer", NewBuffer[int16](1, -2), `[1,-2]`},
		{"boxed", Box("s"), `"s"`},
		{"accessor", func() *Object {
			o := NewObject()
			_ = o.Define("g", Accessor{Get: func() any { return 7 }})
			return o
		}(), `{"g":7}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.v.MarshalJSON()
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestUnmarshalFrozen(t *testing.T) {
	o := NewObject()
	if err := o.UnmarshalJSON([]byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if o.Value("a") != float64(1) {
		t.Errorf("a = %v", o.Value("a"))
	}

	o.MarkFrozen()
	if err := o.UnmarshalJSON([]byte(`{"b":1}`)); !errors.Is(err, ErrFrozen) {
		t.Errorf("UnmarshalJSON on frozen object error = %v", err)
	}
}
