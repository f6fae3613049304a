package segmap

import "testing"

func TestDefaultHasherDistinguishesIntKeys(t *testing.T) {
	h := defaultHasher[int]()
	if h(1) == h(2) {
		t.Fatalf("default int hasher collided on 1 and 2: %d", h(1))
	}
}

func TestDefaultHasherDistinguishesStringKeys(t *testing.T) {
	h := defaultHasher[string]()
	if h("alpha") == h("beta") {
		t.Fatalf("default string hasher collided on distinct strings")
	}
	if h("same") != h("same") {
		t.Fatalf("default string hasher is not deterministic within a process")
	}
}

func TestDisableStringHashSpreadFallsBackToGenericHash(t *testing.T) {
	DisableStringHashSpread()
	defer func() { enableStringHashSpread = true }()

	h := defaultHasher[string]()
	if h("alpha") == h("beta") {
		t.Fatalf("generic-hash fallback collided on distinct strings")
	}
}

func TestGenericHashHandlesStructKeys(t *testing.T) {
	type point struct{ X, Y int }
	h := defaultHasher[point]()
	if h(point{1, 2}) == h(point{2, 1}) {
		t.Fatalf("generic hash collided on distinct struct values")
	}
	if h(point{1, 2}) != h(point{1, 2}) {
		t.Fatalf("generic hash is not deterministic for equal struct values")
	}
}
