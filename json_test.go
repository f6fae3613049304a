package segmap

import (
	"encoding/json"
	"testing"
)

func TestMarshalUnmarshalJSONRoundTrip(t *testing.T) {
	src, _ := New[string, int]()
	src.Put("a", 1)
	src.Put("b", 2)

	data, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}

	dst, _ := New[string, int]()
	if err := json.Unmarshal(data, dst); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if dst.Size() != src.Size() {
		t.Fatalf("Size() after round trip = %d, want %d", dst.Size(), src.Size())
	}
	for _, k := range []string{"a", "b"} {
		want, _, _ := src.Get(k)
		got, ok, _ := dst.Get(k)
		if !ok || got != want {
			t.Fatalf("Get(%q) after round trip = (%d, %v), want (%d, true)", k, got, ok, want)
		}
	}
}

func TestUnmarshalJSONReplacesExistingContents(t *testing.T) {
	m, _ := New[string, int]()
	m.Put("stale", 1)

	if err := json.Unmarshal([]byte(`{"fresh":2}`), m); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if ok, _ := m.ContainsKey("stale"); ok {
		t.Fatalf("stale key survived UnmarshalJSON")
	}
	if v, ok, _ := m.Get("fresh"); !ok || v != 2 {
		t.Fatalf("Get(fresh) = (%d, %v), want (2, true)", v, ok)
	}
}
