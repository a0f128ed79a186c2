package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"background-remover/internal/config"
)

// Store is the pluggable counter backend. Incr atomically increments the
// counter for key under fixed-window semantics: the first increment of a
// window starts it, and the counter resets entirely once window elapses.
// It returns the count after increment and the time remaining in the window.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)
	Close() error
}

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter enforces independent per-client, per-route request budgets over
// rolling fixed windows. One instance is shared by all request handlers.
type Limiter struct {
	store  Store
	routes map[string]config.RouteLimit
	logger *zap.Logger
}

func New(store Store, routes map[string]config.RouteLimit, logger *zap.Logger) *Limiter {
	return &Limiter{
		store:  store,
		routes: routes,
		logger: logger,
	}
}

// Allow performs the atomic check-and-increment for (clientID, route). Routes
// without a configured budget are always allowed. Store failures fail open:
// a rate-limit backend outage must not take the API down.
func (l *Limiter) Allow(ctx context.Context, clientID, route string) Decision {
	limit, ok := l.routes[route]
	if !ok || limit.Limit <= 0 {
		return Decision{Allowed: true}
	}

	key := fmt.Sprintf("ratelimit:%s:%s", route, clientID)
	count, remaining, err := l.store.Incr(ctx, key, limit.Window)
	if err != nil {
		l.logger.Warn("Rate limit store unavailable, allowing request",
			zap.String("route", route),
			zap.Error(err))
		return Decision{Allowed: true, Limit: limit.Limit}
	}

	if count > int64(limit.Limit) {
		return Decision{
			Allowed:    false,
			Limit:      limit.Limit,
			Remaining:  0,
			RetryAfter: remaining,
		}
	}

	return Decision{
		Allowed:   true,
		Limit:     limit.Limit,
		Remaining: limit.Limit - int(count),
	}
}

// Pinger is implemented by stores backed by a remote service worth probing in
// health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StorePinger exposes the store's health probe when the backend has one. The
// in-process store has none.
func (l *Limiter) StorePinger() (Pinger, bool) {
	p, ok := l.store.(Pinger)
	return p, ok
}

// Routes exposes the configured budgets, used by the API info endpoint.
func (l *Limiter) Routes() map[string]config.RouteLimit {
	return l.routes
}

func (l *Limiter) Close() error {
	return l.store.Close()
}
