package value

// Entry is a key/value pair of a Map.
type Entry struct {
	Key   any
	Value any
}

// Map is a map-like collection with keys of any type, kept in insertion
// order. Keys are matched by identity for references and by value for
// scalars.
type Map struct {
	frozenFlag

	entries []Entry
}

// NewMap creates a map from entries. A later entry replaces an earlier one
// with the same key.
func NewMap(entries ...Entry) *Map {
	m := &Map{}
	for _, e := range entries {
		m.put(e.Key, e.Value)
	}
	return m
}

func (m *Map) index(key any) int {
	for i, e := range m.entries {
		if sameKey(e.Key, key) {
			return i
		}
	}
	return -1
}

func (m *Map) put(key, v any) {
	if i := m.index(key); i >= 0 {
		m.entries[i].Value = v
		return
	}
	m.entries = append(m.entries, Entry{Key: key, Value: v})
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.entries)
}

// Get returns the value stored under key.
func (m *Map) Get(key any) (any, bool) {
	if i := m.index(key); i >= 0 {
		return m.entries[i].Value, true
	}
	return nil, false
}

// Set stores v under key.
func (m *Map) Set(key, v any) error {
	if err := m.checkWritable("map set"); err != nil {
		return err
	}
	m.put(key, v)
	return nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (m *Map) Delete(key any) error {
	if err := m.checkWritable("map delete"); err != nil {
		return err
	}
	if i := m.index(key); i >= 0 {
		m.entries = append(m.entries[:i], m.entries[i+1:]...)
	}
	return nil
}

// Entries returns a copy of the entries in insertion order.
func (m *Map) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// EachChild visits every key and value.
func (m *Map) EachChild(fn func(child any)) {
	for _, e := range m.entries {
		fn(e.Key)
		fn(e.Value)
	}
}

// Set is a set-like collection of distinct members in insertion order.
type Set struct {
	frozenFlag

	members []any
}

// NewSet creates a set holding the distinct members.
func NewSet(members ...any) *Set {
	s := &Set{}
	for _, v := range members {
		s.add(v)
	}
	return s
}

func (s *Set) add(v any) {
	if !s.Has(v) {
		s.members = append(s.members, v)
	}
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.members)
}

// Has reports whether v is a member.
func (s *Set) Has(v any) bool {
	for _, m := range s.members {
		if sameKey(m, v) {
			return true
		}
	}
	return false
}

// Add inserts v if it is not already a member.
func (s *Set) Add(v any) error {
	if err := s.checkWritable("set add"); err != nil {
		return err
	}
	s.add(v)
	return nil
}

// Delete removes v. Deleting a non-member is a no-op.
func (s *Set) Delete(v any) error {
	if err := s.checkWritable("set delete"); err != nil {
		return err
	}
	for i, m := range s.members {
		if sameKey(m, v) {
			s.members = append(s.members[:i], s.members[i+1:]...)
			break
		}
	}
	return nil
}

// Members returns a copy of the members in insertion order.
func (s *Set) Members() []any {
	return append([]any(nil), s.members...)
}

// EachChild visits every member.
func (s *Set) EachChild(fn func(child any)) {
	for _, v := range s.members {
		fn(v)
	}
}
