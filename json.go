package segmap

import "encoding/json"

// ToMap copies the map's entries into a plain Go map, leaving the map
// itself unchanged, under the same weakly
// consistent traversal guarantees as Cursor (spec §4.7). Grounded on the
// teacher's MapOf.ToMap (mapof.go).
func (m *Map[K, V]) ToMap() map[K]V {
	out := make(map[K]V, m.Size())
	c := newCursor(m)
	for c.Next() {
		out[c.Key()] = c.Value()
	}
	return out
}

// MarshalJSON encodes the map as a JSON object, grounded on the teacher's
// MapOf.MarshalJSON (mapof.go), which likewise marshals via ToMap rather
// than defining its own object-encoding loop.
func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToMap())
}

// UnmarshalJSON decodes a JSON object into m, replacing its current
// contents, mirroring the teacher's MapOf.UnmarshalJSON. m must already be
// constructed (e.g. via New) before calling UnmarshalJSON; a zero Map has
// no directory to insert into.
func (m *Map[K, V]) UnmarshalJSON(data []byte) error {
	var a map[K]V
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	m.Clear()
	for k, v := range a {
		if _, _, err := m.Put(k, v); err != nil {
			return err
		}
	}
	return nil
}
