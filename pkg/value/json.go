package value

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	verrors "github.com/vango-dev/vstore/internal/errors"
)

// Parse converts a JSON document into a value tree. Objects become *Object
// (keys in document order), arrays become *List, numbers float64, null nil.
func Parse(data []byte) (any, error) {
	if !gjson.ValidBytes(data) {
		return nil, verrors.New("E002").WithDetail(fmt.Sprintf("%d bytes", len(data)))
	}
	return FromResult(gjson.ParseBytes(data)), nil
}

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(doc string) any {
	v, err := Parse([]byte(doc))
	if err != nil {
		panic(err)
	}
	return v
}

// FromResult converts a gjson result into a value tree.
func FromResult(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num
	case gjson.String:
		return r.Str
	}

	if r.IsArray() {
		l := &List{}
		r.ForEach(func(_, v gjson.Result) bool {
			l.items = append(l.items, FromResult(v))
			return true
		})
		return l
	}

	o := NewObject()
	r.ForEach(func(k, v gjson.Result) bool {
		o.put(k.Str, property{value: FromResult(v)})
		return true
	})
	return o
}

// UnmarshalJSON replaces the properties of an unfrozen object.
func (o *Object) UnmarshalJSON(data []byte) error {
	if err := o.checkWritable("unmarshal"); err != nil {
		return err
	}
	v, err := Parse(data)
	if err != nil {
		return err
	}
	parsed, ok := v.(*Object)
	if !ok {
		return verrors.New("E002").WithDetail(fmt.Sprintf("expected object, got %T", v))
	}
	o.keys, o.props = parsed.keys, parsed.props
	return nil
}

// MarshalJSON encodes the object with keys in insertion order. Accessor
// properties are encoded through their getter.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		v, _ := o.Get(k)
		if err := encodeInto(&buf, v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the list as an array.
func (l *List) MarshalJSON() ([]byte, error) {
	return encodeArray(l.items)
}

// MarshalJSON encodes the map as an array of [key, value] pairs.
func (m *Map) MarshalJSON() ([]byte, error) {
	pairs := make([]any, len(m.entries))
	for i, e := range m.entries {
		pairs[i] = []any{e.Key, e.Value}
	}
	return encodeArray(pairs)
}

// MarshalJSON encodes the set as an array of members.
func (s *Set) MarshalJSON() ([]byte, error) {
	return encodeArray(s.members)
}

// MarshalJSON encodes the buffer as an array of numbers.
func (b *Buffer[E]) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.data)
}

// MarshalJSON encodes the boxed primitive.
func (b *Boxed) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.v)
}

func encodeArray(items []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeInto(&buf, v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func encodeInto(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return verrors.New("E003").WithDetail(fmt.Sprintf("%T", v)).Wrap(err)
	}
	buf.Write(data)
	return nil
}
