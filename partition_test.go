package segmap

import (
	"sync"
	"testing"
)

func TestPartitionPutGetRemove(t *testing.T) {
	p := newPartition[string, int](4, 0.75)

	if _, ok := p.get("a", 1); ok {
		t.Fatalf("get on empty partition should miss")
	}

	old, had := p.put("a", 1, 10, false)
	if had || old != 0 {
		t.Fatalf("first put should report no previous value, got (%d, %v)", old, had)
	}

	v, ok := p.get("a", 1)
	if !ok || v != 10 {
		t.Fatalf("get after put = (%d, %v), want (10, true)", v, ok)
	}

	old, had = p.put("a", 1, 20, false)
	if !had || old != 10 {
		t.Fatalf("overwrite put = (%d, %v), want (10, true)", old, had)
	}

	old, removed := p.removeMatching("a", 1, nil, nil)
	if !removed || old != 20 {
		t.Fatalf("removeMatching = (%d, %v), want (20, true)", old, removed)
	}
	if _, ok := p.get("a", 1); ok {
		t.Fatalf("get after remove should miss")
	}
}

func TestPartitionPutIfAbsent(t *testing.T) {
	p := newPartition[string, int](4, 0.75)

	_, had := p.put("a", 1, 1, true)
	if had {
		t.Fatalf("first PutIfAbsent-style put should not have a previous value")
	}
	existing, had := p.put("a", 1, 2, true)
	if !had || existing != 1 {
		t.Fatalf("second PutIfAbsent-style put = (%d, %v), want (1, true)", existing, had)
	}
	if v, _ := p.get("a", 1); v != 1 {
		t.Fatalf("onlyIfAbsent put must not overwrite, got %d", v)
	}
}

func TestPartitionRemoveIfEquals(t *testing.T) {
	p := newPartition[string, int](4, 0.75)
	p.put("a", 1, 42, false)

	wrong := 7
	if _, removed := p.removeMatching("a", 1, &wrong, func(a, b int) bool { return a == b }); removed {
		t.Fatalf("removeMatching with wrong expected value should not remove")
	}
	right := 42
	if _, removed := p.removeMatching("a", 1, &right, func(a, b int) bool { return a == b }); !removed {
		t.Fatalf("removeMatching with matching expected value should remove")
	}
}

func TestPartitionReplaceAndReplaceIfEquals(t *testing.T) {
	p := newPartition[string, int](4, 0.75)

	if _, replaced := p.replace("missing", 1, 1); replaced {
		t.Fatalf("replace on absent key should report false")
	}

	p.put("a", 1, 1, false)
	old, replaced := p.replace("a", 1, 2)
	if !replaced || old != 1 {
		t.Fatalf("replace = (%d, %v), want (1, true)", old, replaced)
	}

	equal := func(a, b int) bool { return a == b }
	if p.replaceIfEquals("a", 1, 99, 3, equal) {
		t.Fatalf("replaceIfEquals with wrong expected value should fail")
	}
	if !p.replaceIfEquals("a", 1, 2, 3, equal) {
		t.Fatalf("replaceIfEquals with matching expected value should succeed")
	}
	if v, _ := p.get("a", 1); v != 3 {
		t.Fatalf("replaceIfEquals did not publish new value, got %d", v)
	}
}

func TestPartitionClearIsIdempotent(t *testing.T) {
	p := newPartition[string, int](4, 0.75)
	for i := 0; i < 3; i++ {
		p.put(string(rune('a'+i)), uint32(i), i, false)
	}
	p.clear()
	p.clear()
	if p.loadCount() != 0 {
		t.Fatalf("count after clear;clear = %d, want 0", p.loadCount())
	}
	for i := 0; i < 3; i++ {
		if _, ok := p.get(string(rune('a'+i)), uint32(i)); ok {
			t.Fatalf("entry survived clear")
		}
	}
}

// TestPartitionRehashPreservesAllEntries drives a partition past its
// threshold and checks every inserted key is still reachable afterward,
// exercising the lastRun-suffix rehash algorithm (spec §4.5).
func TestPartitionRehashPreservesAllEntries(t *testing.T) {
	p := newPartition[int, int](4, 0.75) // threshold = 3

	const n = 64
	for i := 0; i < n; i++ {
		h := spread(uint32(i), 0)
		p.put(i, h, i*10, false)
	}

	table := p.table.Load()
	if table.length() <= 4 {
		t.Fatalf("partition should have rehashed past the initial capacity, length = %d", table.length())
	}

	for i := 0; i < n; i++ {
		h := spread(uint32(i), 0)
		v, ok := p.get(i, h)
		if !ok || v != i*10 {
			t.Fatalf("get(%d) after rehash = (%d, %v), want (%d, true)", i, v, ok, i*10)
		}
	}
	if p.loadCount() != int64(n) {
		t.Fatalf("count after rehash = %d, want %d", p.loadCount(), n)
	}
}

// TestPartitionConcurrentPutIfAbsentHasOneWinner exercises invariant 5 of
// spec §8: N concurrent PutIfAbsent calls on the same key leave exactly one
// winner.
func TestPartitionConcurrentPutIfAbsentHasOneWinner(t *testing.T) {
	p := newPartition[string, int](4, 0.75)

	const goroutines = 32
	var wg sync.WaitGroup
	wins := make([]bool, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, had := p.put("x", 1, i, true)
			wins[i] = !had
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, w := range wins {
		if w {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winner among %d concurrent PutIfAbsent calls, got %d", goroutines, winners)
	}
}

// TestPartitionConcurrentReaderNeverFails drives a writer doing put/remove
// churn on a single key while a reader repeatedly calls get, mirroring
// spec §8 end-to-end scenario 3: the reader must never observe a panic and
// must always return a well-formed (value, ok) pair.
func TestPartitionConcurrentReaderNeverFails(t *testing.T) {
	p := newPartition[int, int](4, 0.75)
	const key = 500
	h := spread(uint32(key), 0)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			p.put(key, h, i, false)
			p.removeMatching(key, h, nil, nil)
		}
	}()

	for i := 0; i < 10000; i++ {
		_, _ = p.get(key, h)
	}
	close(stop)
	wg.Wait()
}
