package segmap

import "testing"

func TestNextPowOf2(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {4, 4}, {5, 8}, {1023, 1024}, {1024, 1024},
	}
	for _, c := range cases {
		if got := nextPowOf2(c.in); got != c.want {
			t.Errorf("nextPowOf2(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestClampCapacity(t *testing.T) {
	if got := clampCapacity(0); got != MinBucketCapacity {
		t.Errorf("clampCapacity(0) = %d, want %d", got, MinBucketCapacity)
	}
	if got := clampCapacity(1); got != MinBucketCapacity {
		t.Errorf("clampCapacity(1) = %d, want %d", got, MinBucketCapacity)
	}
	if got := clampCapacity(1 << 31); got != MaxCapacity {
		t.Errorf("clampCapacity(huge) = %d, want %d", got, MaxCapacity)
	}
	if got := clampCapacity(100); got != 128 {
		t.Errorf("clampCapacity(100) = %d, want 128", got)
	}
}

func TestBucketTableHeadPublication(t *testing.T) {
	tbl := newBucketTable[string, int](4)
	if tbl.length() != 4 {
		t.Fatalf("length() = %d, want 4", tbl.length())
	}
	idx := tbl.bucketIndex(6) // 6 & 3 == 2
	if idx != 2 {
		t.Fatalf("bucketIndex(6) = %d, want 2", idx)
	}
	if got := tbl.head(idx); got != nil {
		t.Fatalf("fresh table bucket should be empty, got %v", got)
	}
	n := newNode[string, int](6, "k", 1)
	tbl.storeHead(idx, n)
	if tbl.head(idx) != n {
		t.Fatalf("storeHead/head round trip failed")
	}
	if !tbl.casHead(idx, n, nil) {
		t.Fatalf("casHead with correct old value should succeed")
	}
	if tbl.head(idx) != nil {
		t.Fatalf("casHead should have published nil")
	}
	if tbl.casHead(idx, n, nil) {
		t.Fatalf("casHead with stale old value should fail")
	}
}
