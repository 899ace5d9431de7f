package provider

import (
	"sync"
	"testing"
)

func TestKeyPool_RoundRobin(t *testing.T) {
	pool := NewKeyPool([]string{"a", "b", "c"})

	want := []string{"a", "b", "c", "a", "b", "c", "a"}
	for i, w := range want {
		if got := pool.Next(); got != w {
			t.Errorf("Next() call %d = %q, want %q", i, got, w)
		}
	}
}

func TestKeyPool_SkipsEmptyKeys(t *testing.T) {
	pool := NewKeyPool([]string{"", "a", "", "b"})

	if pool.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", pool.Size())
	}
	if got := pool.Next(); got != "a" {
		t.Errorf("Next() = %q, want %q", got, "a")
	}
	if got := pool.Next(); got != "b" {
		t.Errorf("Next() = %q, want %q", got, "b")
	}
}

func TestKeyPool_Empty(t *testing.T) {
	pool := NewKeyPool(nil)
	if got := pool.Next(); got != "" {
		t.Errorf("Next() = %q, want empty string", got)
	}
}

func TestKeyPool_Concurrent(t *testing.T) {
	pool := NewKeyPool([]string{"a", "b", "c"})

	var wg sync.WaitGroup
	counts := make([]map[string]int, 8)
	for i := range counts {
		counts[i] = make(map[string]int)
		wg.Add(1)
		go func(m map[string]int) {
			defer wg.Done()
			for j := 0; j < 300; j++ {
				m[pool.Next()]++
			}
		}(counts[i])
	}
	wg.Wait()

	total := make(map[string]int)
	for _, m := range counts {
		for k, n := range m {
			total[k] += n
		}
	}

	// 2400 draws over 3 keys must land exactly evenly.
	for _, k := range []string{"a", "b", "c"} {
		if total[k] != 800 {
			t.Errorf("key %q drawn %d times, want 800", k, total[k])
		}
	}
}
