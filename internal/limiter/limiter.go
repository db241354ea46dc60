// Package limiter implements fixed-window request limits backed by a shared
// counter store, so every server instance sees the same counts.
package limiter

import (
	"context"
	"fmt"
	"time"
)

// Counter is the storage a Limiter needs; *cache.RedisCache satisfies it.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

type ActionConfig struct {
	Limit  int64
	Window time.Duration
}

const (
	ActionSync   = "sync"
	ActionGemini = "gemini"
)

var DefaultLimits = map[string]ActionConfig{
	ActionSync:   {Limit: 120, Window: time.Minute},
	ActionGemini: {Limit: 30, Window: time.Minute},
}

type Limiter struct {
	counter Counter
	limits  map[string]ActionConfig
	now     func() time.Time
}

type CheckResult struct {
	Allowed   bool  `json:"allowed"`
	Remaining int64 `json:"remaining"`
	ResetAt   int64 `json:"reset_at"`
	Limit     int64 `json:"limit"`
}

// NewLimiter creates a limiter. Actions missing from limits fall back to
// DefaultLimits, then to 100 per minute.
func NewLimiter(counter Counter, limits map[string]ActionConfig) *Limiter {
	merged := make(map[string]ActionConfig, len(DefaultLimits)+len(limits))
	for action, cfg := range DefaultLimits {
		merged[action] = cfg
	}
	for action, cfg := range limits {
		merged[action] = cfg
	}
	return &Limiter{counter: counter, limits: merged, now: time.Now}
}

func (l *Limiter) Check(ctx context.Context, clientID, action string) (*CheckResult, error) {
	config, ok := l.limits[action]
	if !ok {
		// Default limit for unknown actions
		config = ActionConfig{Limit: 100, Window: time.Minute}
	}

	key := fmt.Sprintf("rate:%s:%s", clientID, action)

	count, err := l.counter.Incr(ctx, key, config.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to increment counter: %w", err)
	}

	ttl, err := l.counter.TTL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get TTL: %w", err)
	}
	if ttl < 0 {
		ttl = config.Window
	}

	remaining := config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &CheckResult{
		Allowed:   count <= config.Limit,
		Remaining: remaining,
		ResetAt:   l.now().Add(ttl).Unix(),
		Limit:     config.Limit,
	}, nil
}
