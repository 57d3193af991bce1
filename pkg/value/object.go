package value

import "fmt"

// Accessor is a computed property. Get is evaluated on every read; Set, if
// non-nil, receives writes. Accessor results are never frozen eagerly since
// evaluating a getter may have side effects.
type Accessor struct {
	Get func() any
	Set func(any)
}

type property struct {
	value    any
	accessor *Accessor
}

// Object is a keyed object with insertion-ordered own properties.
type Object struct {
	frozenFlag

	keys  []string
	props map[string]property
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{props: make(map[string]property)}
}

// ObjectOf builds an object from alternating key/value arguments.
// It panics if a key is not a string or if a value is missing.
//
//	user := value.ObjectOf("name", "Saiya", "age", 10)
func ObjectOf(kv ...any) *Object {
	if len(kv)%2 != 0 {
		panic("value: ObjectOf requires key/value pairs")
	}
	o := NewObject()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("value: ObjectOf key %d is %T, not string", i/2, kv[i]))
		}
		o.put(key, property{value: kv[i+1]})
	}
	return o
}

func (o *Object) put(key string, p property) {
	if o.props == nil {
		o.props = make(map[string]property)
	}
	if _, exists := o.props[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.props[key] = p
}

// Len returns the number of own properties.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the own property names in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Has reports whether key is an own property.
func (o *Object) Has(key string) bool {
	_, ok := o.props[key]
	return ok
}

// IsAccessor reports whether key is defined through an Accessor.
func (o *Object) IsAccessor(key string) bool {
	p, ok := o.props[key]
	return ok && p.accessor != nil
}

// Get returns the property value. Accessor properties evaluate their getter;
// an accessor without a getter reads as nil.
func (o *Object) Get(key string) (any, bool) {
	p, ok := o.props[key]
	if !ok {
		return nil, false
	}
	if p.accessor != nil {
		if p.accessor.Get == nil {
			return nil, true
		}
		return p.accessor.Get(), true
	}
	return p.value, true
}

// Value is Get without the presence flag.
func (o *Object) Value(key string) any {
	v, _ := o.Get(key)
	return v
}

// Set assigns a data property, or calls the setter of an accessor property.
func (o *Object) Set(key string, v any) error {
	if err := o.checkWritable("set " + key); err != nil {
		return err
	}
	if p, ok := o.props[key]; ok && p.accessor != nil {
		if p.accessor.Set != nil {
			p.accessor.Set(v)
		}
		return nil
	}
	o.put(key, property{value: v})
	return nil
}

// Define installs an accessor property.
func (o *Object) Define(key string, acc Accessor) error {
	if err := o.checkWritable("define " + key); err != nil {
		return err
	}
	o.put(key, property{accessor: &acc})
	return nil
}

// Delete removes an own property. Deleting a missing key is a no-op.
func (o *Object) Delete(key string) error {
	if err := o.checkWritable("delete " + key); err != nil {
		return err
	}
	if _, ok := o.props[key]; !ok {
		return nil
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return nil
}

// Range calls fn for each own property in insertion order until fn returns
// false. Accessor properties are read through their getter.
func (o *Object) Range(fn func(key string, v any) bool) {
	for _, k := range o.keys {
		v, _ := o.Get(k)
		if !fn(k, v) {
			return
		}
	}
}

// Clone returns an unfrozen shallow copy. Children are shared, accessor
// definitions are copied as definitions.
func (o *Object) Clone() *Object {
	c := &Object{
		keys:  append([]string(nil), o.keys...),
		props: make(map[string]property, len(o.props)),
	}
	for k, p := range o.props {
		c.props[k] = p
	}
	return c
}

// Assign overlays the own properties of src onto a clone of o: keys of src
// win, keys only in o keep their values. Accessors of src are copied as
// definitions. Neither input is modified.
func (o *Object) Assign(src *Object) *Object {
	out := o.Clone()
	for _, k := range src.keys {
		out.put(k, src.props[k])
	}
	return out
}

// EachChild visits the values of data properties. Accessor properties are
// skipped.
func (o *Object) EachChild(fn func(child any)) {
	for _, k := range o.keys {
		if p := o.props[k]; p.accessor == nil {
			fn(p.value)
		}
	}
}

// String implements fmt.Stringer using the JSON encoding.
func (o *Object) String() string {
	data, err := o.MarshalJSON()
	if err != nil {
		return "{?}"
	}
	return string(data)
}
