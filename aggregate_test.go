package segmap

import (
	"errors"
	"sync"
	"testing"
)

func TestSizeAndIsEmpty(t *testing.T) {
	m, _ := New[string, int](WithConcurrencyLevel(8))

	if !m.IsEmpty() {
		t.Fatalf("fresh map should be empty")
	}
	if m.Size() != 0 {
		t.Fatalf("fresh map Size() = %d, want 0", m.Size())
	}

	for i := 0; i < 50; i++ {
		m.Put(string(rune('a'+i%26))+string(rune(i)), i)
	}
	if m.IsEmpty() {
		t.Fatalf("non-empty map reported IsEmpty() == true")
	}
	if m.Size() != 50 {
		t.Fatalf("Size() = %d, want 50", m.Size())
	}

	m.Clear()
	if !m.IsEmpty() || m.Size() != 0 {
		t.Fatalf("map should be empty after Clear")
	}
}

func TestContainsValue(t *testing.T) {
	m, _ := New[string, int]()
	m.Put("a", 1)
	m.Put("b", 2)

	found, err := m.ContainsValue(2)
	if err != nil || !found {
		t.Fatalf("ContainsValue(2) = (%v, %v), want (true, nil)", found, err)
	}
	found, err = m.ContainsValue(99)
	if err != nil || found {
		t.Fatalf("ContainsValue(99) = (%v, %v), want (false, nil)", found, err)
	}
}

func TestContainsValueRejectsNil(t *testing.T) {
	m, _ := New[string, *int]()
	if _, err := m.ContainsValue(nil); !errors.Is(err, ErrNilValue) {
		t.Fatalf("ContainsValue(nil) error = %v, want ErrNilValue", err)
	}
}

// TestSizeUnderConcurrentChurnTerminates drives the aggregate protocol's
// retry-then-lock-all fallback (spec §4.6, §8 boundary behavior) under
// sustained writer churn; Size must always return a value, never hang.
func TestSizeUnderConcurrentChurnTerminates(t *testing.T) {
	m, _ := New[int, int](WithConcurrencyLevel(8))

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				key := w*1000 + i%1000
				m.Put(key, key)
				m.Remove(key)
			}
		}(w)
	}

	for i := 0; i < 20; i++ {
		size := m.Size()
		if size < 0 {
			t.Fatalf("Size() returned negative value %d", size)
		}
	}
	close(stop)
	wg.Wait()
}
