package aggregate

import (
	"context"
	"sync"
)

// MemoryCounter implements Counter in process memory. Used in tests and
// when the portal runs without Redis (single-instance, local-only mode).
type MemoryCounter struct {
	mu     sync.Mutex
	values map[string]int64
	subs   map[string]map[int]func(int64)
	nextID int
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		values: make(map[string]int64),
		subs:   make(map[string]map[int]func(int64)),
	}
}

func (c *MemoryCounter) Increment(_ context.Context, key string, amount int64) error {
	c.mu.Lock()
	c.values[key] += amount
	val := c.values[key]
	fns := make([]func(int64), 0, len(c.subs[key]))
	for _, fn := range c.subs[key] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(val)
	}
	return nil
}

func (c *MemoryCounter) Value(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key], nil
}

func (c *MemoryCounter) Subscribe(_ context.Context, key string, onChange func(int64)) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subs[key] == nil {
		c.subs[key] = make(map[int]func(int64))
	}
	id := c.nextID
	c.nextID++
	c.subs[key][id] = onChange

	return func() {
		c.mu.Lock()
		delete(c.subs[key], id)
		if len(c.subs[key]) == 0 {
			delete(c.subs, key)
		}
		c.mu.Unlock()
	}, nil
}
