package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"background-remover/internal/config"
)

func newRedisTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store, err := NewRedisStore(config.RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func TestRedisStoreIncr(t *testing.T) {
	store, _ := newRedisTestStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		count, remaining, err := store.Incr(ctx, "ratelimit:test:10.0.0.1", time.Minute)
		if err != nil {
			t.Fatalf("Incr %d: %v", i, err)
		}
		if count != i {
			t.Fatalf("count = %d, want %d", count, i)
		}
		if remaining <= 0 || remaining > time.Minute {
			t.Fatalf("remaining = %s, want within (0, 1m]", remaining)
		}
	}
}

func TestRedisStoreWindowExpires(t *testing.T) {
	store, mr := newRedisTestStore(t)
	ctx := context.Background()

	if _, _, err := store.Incr(ctx, "ratelimit:test:key", time.Minute); err != nil {
		t.Fatalf("Incr: %v", err)
	}
	if _, _, err := store.Incr(ctx, "ratelimit:test:key", time.Minute); err != nil {
		t.Fatalf("Incr: %v", err)
	}

	// Past the window the key expires and the count starts over.
	mr.FastForward(time.Minute + time.Second)

	count, _, err := store.Incr(ctx, "ratelimit:test:key", time.Minute)
	if err != nil {
		t.Fatalf("Incr after expiry: %v", err)
	}
	if count != 1 {
		t.Fatalf("count after window = %d, want 1", count)
	}
}

func TestLimiterWithRedisStore(t *testing.T) {
	store, _ := newRedisTestStore(t)
	l := New(store, map[string]config.RouteLimit{
		"remove-background": {Limit: 3, Window: time.Minute},
	}, zap.NewNop())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if d := l.Allow(ctx, "10.0.0.1", "remove-background"); !d.Allowed {
			t.Fatalf("request %d denied, want allowed", i)
		}
	}

	d := l.Allow(ctx, "10.0.0.1", "remove-background")
	if d.Allowed {
		t.Fatal("request over limit allowed, want denied")
	}
	if d.RetryAfter <= 0 {
		t.Fatalf("retry after = %s, want > 0", d.RetryAfter)
	}
}

func TestStorePinger(t *testing.T) {
	store, _ := newRedisTestStore(t)
	l := New(store, nil, zap.NewNop())

	pinger, ok := l.StorePinger()
	if !ok {
		t.Fatal("redis-backed limiter reports no pinger")
	}
	if err := pinger.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	mem := NewMemoryStore()
	t.Cleanup(func() { mem.Close() })
	if _, ok := New(mem, nil, zap.NewNop()).StorePinger(); ok {
		t.Fatal("memory-backed limiter reports a pinger")
	}
}

func TestLimiterFailsOpenOnStoreError(t *testing.T) {
	store, mr := newRedisTestStore(t)
	l := New(store, map[string]config.RouteLimit{
		"remove-background": {Limit: 1, Window: time.Minute},
	}, zap.NewNop())

	mr.Close()

	// The backend being down must not take the API down.
	if d := l.Allow(context.Background(), "10.0.0.1", "remove-background"); !d.Allowed {
		t.Fatal("request denied on store failure, want fail-open allow")
	}
}
