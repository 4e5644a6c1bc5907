package cmap

import (
	"fmt"
	"strconv"
	"sync"
	"testing"
)

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{2, 2},
		{32, 32},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[string, int](tt.input)
			if got := len(m.shards); got != tt.expected {
				t.Errorf("NewWithShards(%d) has %d shards, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

type labelKey string

func TestNamedStringKey(t *testing.T) {
	m := New[labelKey, int]()
	m.Set(labelKey("GET\xff200"), 1)
	if v, ok := m.Get("GET\xff200"); !ok || v != 1 {
		t.Errorf("Get = (%d, %v), want (1, true)", v, ok)
	}
}

func TestGetOrSet(t *testing.T) {
	m := New[string, int]()

	v, loaded := m.GetOrSet("a", 1)
	if loaded || v != 1 {
		t.Errorf("first GetOrSet = (%d, %v), want (1, false)", v, loaded)
	}

	v, loaded = m.GetOrSet("a", 2)
	if !loaded || v != 1 {
		t.Errorf("second GetOrSet = (%d, %v), want (1, true)", v, loaded)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}
}

func TestUpdate(t *testing.T) {
	m := New[string, int]()

	if _, ok := m.Update("missing", func(v int) int { return v + 1 }); ok {
		t.Error("Update on missing key should report false")
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Update must not insert missing keys")
	}

	m.Set("a", 1)
	v, ok := m.Update("a", func(v int) int { return v + 10 })
	if !ok || v != 11 {
		t.Errorf("Update = (%d, %v), want (11, true)", v, ok)
	}
}

func TestPop(t *testing.T) {
	m := New[string, int]()
	m.Set("a", 1)

	if v, ok := m.Pop("a"); !ok || v != 1 {
		t.Errorf("Pop(a) = (%d, %v), want (1, true)", v, ok)
	}
	if _, ok := m.Pop("a"); ok {
		t.Error("second Pop(a) should report false")
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
}

func TestDeleteFunc(t *testing.T) {
	m := New[string, int]()
	for i := 0; i < 100; i++ {
		m.Set(strconv.Itoa(i), i)
	}

	n := m.DeleteFunc(func(_ string, v int) bool { return v%2 == 1 })
	if n != 50 {
		t.Errorf("DeleteFunc removed %d, want 50", n)
	}
	if m.Count() != 50 {
		t.Errorf("Count() = %d, want 50", m.Count())
	}
	for _, v := range m.All() {
		if v%2 == 1 {
			t.Fatalf("odd value %d survived", v)
		}
	}
}

func TestAllAndValues(t *testing.T) {
	m := New[string, int]()
	for i := 0; i < 100; i++ {
		m.Set(strconv.Itoa(i), i*2)
	}

	sum := 0
	for k, v := range m.All() {
		if strconv.Itoa(v/2) != k {
			t.Errorf("entry %q = %d", k, v)
		}
		sum += v
	}
	if sum != 9900 {
		t.Errorf("sum = %d, want 9900", sum)
	}

	visited := 0
	for range m.All() {
		visited++
		if visited == 5 {
			break
		}
	}
	if visited != 5 {
		t.Errorf("early break visited %d, want 5", visited)
	}

	// A broken loop must release its shard lock.
	m.Set("after-break", 1)

	if got := len(m.Values()); got != 101 {
		t.Errorf("len(Values()) = %d, want 101", got)
	}
}

func TestConcurrentGetOrSet(t *testing.T) {
	m := New[string, *int]()
	var wg sync.WaitGroup
	results := make([]*int, 64)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := i
			results[i], _ = m.GetOrSet("shared", &v)
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r != results[0] {
			t.Fatalf("goroutine %d got a different value pointer", i)
		}
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New[string, int]()
	var wg sync.WaitGroup
	const (
		workers = 50
		ops     = 500
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < ops; j++ {
				key := strconv.Itoa(base*ops + j)
				m.Set(key, j)
				m.Get(key)
				if j%50 == 0 {
					m.DeleteFunc(func(string, int) bool { return false })
				}
			}
		}(i)
	}
	wg.Wait()

	if m.Count() != workers*ops {
		t.Errorf("Count() = %d, want %d", m.Count(), workers*ops)
	}
}
