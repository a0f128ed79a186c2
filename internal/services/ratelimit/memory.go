package ratelimit

import (
	"context"
	"sync"
	"time"
)

// counter is one key's fixed window: a start time and a count. The whole
// window resets once it elapses.
type counter struct {
	windowStart time.Time
	window      time.Duration
	count       int64
}

// MemoryStore is the in-process counter backend. Single-process semantics
// only; state is lost on restart. Safe for concurrent use: check and
// increment happen under one lock, so two concurrent requests can never both
// pass the boundary when only one slot remains.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		counters: make(map[string]*counter),
		stop:     make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

func (s *MemoryStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || now.Sub(c.windowStart) >= c.window {
		c = &counter{windowStart: now, window: window, count: 0}
		s.counters[key] = c
	}
	c.count++

	remaining := c.window - now.Sub(c.windowStart)
	return c.count, remaining, nil
}

// cleanupLoop drops counters whose window expired long ago so idle keys do
// not accumulate forever.
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(3 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for key, c := range s.counters {
				if now.Sub(c.windowStart) >= 2*c.window {
					delete(s.counters, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}
