package lru

import (
	"errors"
	"strconv"
	"sync"
	"testing"
)

func TestGetSet(t *testing.T) {
	c := New[string, int](10)
	c.Set("a", 1)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v, want 1, true", v, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) found a missing key")
	}
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) after overwrite = %d, want 2", v)
	}

	s := c.Stats()
	if s.Len != 1 || s.Limit != 10 || s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestTrimDropsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](4)
	for i := range 4 {
		c.Set(i, i)
	}
	// Touch 0 and 1 so 2 and 3 are the oldest.
	c.Get(0)
	c.Get(1)
	c.Set(4, 4) // 5 entries > 4: trim to 3

	if got := c.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	for _, k := range []int{0, 1, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("recently used key %d was evicted", k)
		}
	}
	for _, k := range []int{2, 3} {
		if _, ok := c.Get(k); ok {
			t.Errorf("stale key %d survived", k)
		}
	}
}

func TestUnbounded(t *testing.T) {
	c := New[int, int](0)
	for i := range 1000 {
		c.Set(i, i)
	}
	if c.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000", c.Len())
	}
}

func TestGetOrCreate(t *testing.T) {
	c := New[string, int](10)
	calls := 0
	create := func() (int, error) {
		calls++
		return 7, nil
	}
	for range 3 {
		v, err := c.GetOrCreate("k", create)
		if err != nil || v != 7 {
			t.Fatalf("GetOrCreate = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrCreate("bad", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("GetOrCreate error = %v, want boom", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed create was cached")
	}
}

func TestDeleteAndEvictCallback(t *testing.T) {
	c := New[string, int](0)
	var evicted []string
	c.OnEvict(func(k string, _ int) { evicted = append(evicted, k) })

	for _, k := range []string{"a1", "a2", "b1", "b2"} {
		c.Set(k, 0)
	}
	if !c.Delete("b1") || c.Delete("b1") {
		t.Error("Delete did not report presence correctly")
	}
	if n := c.DeleteFunc(func(k string) bool { return k[0] == 'a' }); n != 2 {
		t.Errorf("DeleteFunc removed %d, want 2", n)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if len(evicted) != 4 {
		t.Errorf("evicted %v, want 4 keys", evicted)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[string, int](64)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				k := strconv.Itoa((g*500 + i) % 100)
				c.Set(k, i)
				c.Get(k)
				_, _ = c.GetOrCreate(k, func() (int, error) { return i, nil })
			}
		}()
	}
	wg.Wait()
	if c.Len() > 64 {
		t.Errorf("Len() = %d, over the limit", c.Len())
	}
}
