package segmap

// Views over a Map's contents: thin wrappers that invoke the core's
// public operations (spec §1 "the user-facing entry/key/value view
// collections... are not part of its design... treat these as wrappers
// that invoke the core's public operations"). None of them hold state
// of their own beyond a reference back to the map.

// KeySet is a view over a Map's keys.
type KeySet[K comparable, V any] struct{ m *Map[K, V] }

// Keys returns a view over m's keys.
func (m *Map[K, V]) Keys() *KeySet[K, V] { return &KeySet[K, V]{m: m} }

// Cursor returns a weakly consistent cursor over the keys.
func (s *KeySet[K, V]) Cursor() *Cursor[K, V] { return newCursor(s.m) }

// Contains reports whether key is present.
func (s *KeySet[K, V]) Contains(key K) (bool, error) { return s.m.ContainsKey(key) }

// Remove removes key from the underlying map.
func (s *KeySet[K, V]) Remove(key K) error {
	_, _, err := s.m.Remove(key)
	return err
}

// Size returns the underlying map's size.
func (s *KeySet[K, V]) Size() int { return s.m.Size() }

// ValueView is a view over a Map's values.
type ValueView[K comparable, V any] struct{ m *Map[K, V] }

// Values returns a view over m's values.
func (m *Map[K, V]) Values() *ValueView[K, V] { return &ValueView[K, V]{m: m} }

// Cursor returns a weakly consistent cursor over the values.
func (s *ValueView[K, V]) Cursor() *Cursor[K, V] { return newCursor(s.m) }

// Contains reports whether any entry currently has value v.
func (s *ValueView[K, V]) Contains(v V) (bool, error) { return s.m.ContainsValue(v) }

// Size returns the underlying map's size.
func (s *ValueView[K, V]) Size() int { return s.m.Size() }

// EntrySet is a view over a Map's (key, value) entries.
type EntrySet[K comparable, V any] struct{ m *Map[K, V] }

// Entries returns a view over m's entries.
func (m *Map[K, V]) Entries() *EntrySet[K, V] { return &EntrySet[K, V]{m: m} }

// Cursor returns a weakly consistent cursor over the entries.
func (s *EntrySet[K, V]) Cursor() *Cursor[K, V] { return newCursor(s.m) }

// Size returns the underlying map's size.
func (s *EntrySet[K, V]) Size() int { return s.m.Size() }
