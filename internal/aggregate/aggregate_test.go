package aggregate

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestDayKey(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	at := time.Date(2025, 6, 1, 23, 30, 0, 0, loc)
	if got := DayKey(at); got != "clicks:2025-06-02" {
		t.Errorf("DayKey = %q, want clicks:2025-06-02", got)
	}
}

func TestMemoryCounterIncrementAndValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCounter()

	if val, _ := c.Value(ctx, "k"); val != 0 {
		t.Errorf("missing key = %d, want 0", val)
	}

	c.Increment(ctx, "k", 5)
	c.Increment(ctx, "k", 3)
	if val, _ := c.Value(ctx, "k"); val != 8 {
		t.Errorf("value = %d, want 8", val)
	}
}

func TestMemoryCounterConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCounter()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Increment(ctx, "k", 1)
			}
		}()
	}
	wg.Wait()

	if val, _ := c.Value(ctx, "k"); val != 1000 {
		t.Errorf("value = %d, want 1000", val)
	}
}

func TestMemoryCounterSubscribe(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCounter()

	var mu sync.Mutex
	var seen []int64
	unsub, err := c.Subscribe(ctx, "k", func(v int64) {
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	c.Increment(ctx, "k", 2)
	c.Increment(ctx, "k", 3)

	mu.Lock()
	got := append([]int64(nil), seen...)
	mu.Unlock()
	if len(got) != 2 || got[0] != 2 || got[1] != 5 {
		t.Errorf("seen = %v, want [2 5]", got)
	}

	unsub()
	c.Increment(ctx, "k", 1)
	mu.Lock()
	n := len(seen)
	mu.Unlock()
	if n != 2 {
		t.Errorf("received %d notifications after unsubscribe, want 2", n)
	}
}
