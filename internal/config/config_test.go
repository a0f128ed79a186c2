package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "5001" {
		t.Errorf("port = %s, want 5001", cfg.Server.Port)
	}
	if cfg.Storage.MaxContentLength != 16*1024*1024 {
		t.Errorf("max content length = %d, want 16MiB", cfg.Storage.MaxContentLength)
	}
	if cfg.Storage.FileMaxAge != time.Hour {
		t.Errorf("file max age = %s, want 1h", cfg.Storage.FileMaxAge)
	}
	if cfg.RateLimit.Storage != RateLimitMemory {
		t.Errorf("rate limit storage = %s, want memory", cfg.RateLimit.Storage)
	}
	if cfg.Rembg.Timeout != 30*time.Second {
		t.Errorf("rembg timeout = %s, want 30s", cfg.Rembg.Timeout)
	}

	want := map[string]RouteLimit{
		RouteRemoveBackground: {10, time.Minute},
		RoutePreview:          {15, time.Minute},
		RouteBase64:           {12, time.Minute},
		RouteHealth:           {200, time.Minute},
		RouteInfo:             {60, time.Minute},
	}
	for route, limit := range want {
		if got := cfg.RateLimit.Routes[route]; got != limit {
			t.Errorf("route %s = %v, want %v", route, got, limit)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_CONTENT_LENGTH", "1048576")
	t.Setenv("RATE_LIMIT_STORAGE", "redis")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("REMBG_TIMEOUT", "10s")
	t.Setenv("RATE_LIMIT_REMOVE_BG", "5/30s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Errorf("port = %s, want 9000", cfg.Server.Port)
	}
	if cfg.Storage.MaxContentLength != 1048576 {
		t.Errorf("max content length = %d, want 1048576", cfg.Storage.MaxContentLength)
	}
	if cfg.RateLimit.Storage != RateLimitRedis {
		t.Errorf("rate limit storage = %s, want redis", cfg.RateLimit.Storage)
	}
	if cfg.RateLimit.Redis.Addr != "redis.internal:6380" {
		t.Errorf("redis addr = %s", cfg.RateLimit.Redis.Addr)
	}
	if cfg.Rembg.Timeout != 10*time.Second {
		t.Errorf("rembg timeout = %s, want 10s", cfg.Rembg.Timeout)
	}
	if got := cfg.RateLimit.Routes[RouteRemoveBackground]; got != (RouteLimit{5, 30 * time.Second}) {
		t.Errorf("remove-background limit = %v, want 5/30s", got)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadRejectsUnknownRateLimitStorage(t *testing.T) {
	t.Setenv("RATE_LIMIT_STORAGE", "memcached")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported rate limit storage")
	}
}

func TestGetRouteLimit(t *testing.T) {
	def := RouteLimit{10, time.Minute}
	cases := []struct {
		value string
		want  RouteLimit
	}{
		{"", def},
		{"20/1m", RouteLimit{20, time.Minute}},
		{"1000/1h", RouteLimit{1000, time.Hour}},
		{"5/30s", RouteLimit{5, 30 * time.Second}},
		{"25", RouteLimit{25, time.Minute}}, // bare count keeps the default window
		{"garbage", def},
		{"0/1m", def},
		{"-3/1m", def},
		{"10/nonsense", def},
		{"10/-1m", def},
	}
	for _, tc := range cases {
		t.Setenv("TEST_ROUTE_LIMIT", tc.value)
		if got := getRouteLimit("TEST_ROUTE_LIMIT", def); got != tc.want {
			t.Errorf("getRouteLimit(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestRouteLimitString(t *testing.T) {
	if got := (RouteLimit{10, time.Minute}).String(); got != "10 per 1m0s" {
		t.Errorf("String() = %q", got)
	}
}
