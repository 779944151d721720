// Package throttle limits kiosk family searches per device so the search
// endpoint cannot be used to enumerate phone numbers or security codes.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"checkin/pkg/platform/circuit"
)

// Limiter reports whether one more request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Memory is a fixed-window limiter held in process memory.
type Memory struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]*fixedWindow
}

type fixedWindow struct {
	start time.Time
	count int
}

// NewMemory allows limit requests per key per window.
func NewMemory(limit int, window time.Duration) *Memory {
	return &Memory{
		limit:   limit,
		window:  window,
		now:     time.Now,
		windows: make(map[string]*fixedWindow),
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w := m.windows[key]
	if w == nil || now.Sub(w.start) >= m.window {
		m.evict(now)
		w = &fixedWindow{start: now}
		m.windows[key] = w
	}
	if w.count >= m.limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// evict drops expired windows. Must be called while holding m.mu.
func (m *Memory) evict(now time.Time) {
	for key, w := range m.windows {
		if now.Sub(w.start) >= m.window {
			delete(m.windows, key)
		}
	}
}

const redisKeyPrefix = "checkin:search:"

// Redis is a fixed-window limiter shared by every instance using the same Redis.
type Redis struct {
	client redis.Cmdable
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedis(client redis.Cmdable, limit int, window time.Duration) *Redis {
	return &Redis{client: client, limit: limit, window: window, now: time.Now}
}

// Allow increments the counter of the current window and sets its expiry in
// one MULTI/EXEC round trip.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	bucket := r.now().UnixNano() / int64(r.window)
	redisKey := redisKeyPrefix + key + ":" + strconv.FormatInt(bucket, 10)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, r.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis throttle: %w", err)
	}
	return incr.Val() <= int64(r.limit), nil
}

// Fallback answers from primary while it is healthy and from fallback once
// the breaker opens. Primary is still consulted while open so that enough
// consecutive successes close the breaker again.
type Fallback struct {
	primary  Limiter
	fallback Limiter
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallback(primary, fallback Limiter, breaker *circuit.Breaker, logger *slog.Logger) (*Fallback, error) {
	if primary == nil || fallback == nil {
		return nil, errors.New("primary and fallback limiters are required")
	}
	if breaker == nil {
		breaker = circuit.New("search-throttle")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, fallback: fallback, breaker: breaker, logger: logger}, nil
}

func (f *Fallback) Allow(ctx context.Context, key string) (bool, error) {
	allowed, err := f.primary.Allow(ctx, key)
	if err != nil {
		_, change := f.breaker.RecordFailure()
		if change.Opened {
			f.logger.WarnContext(ctx, "search throttle circuit opened, using in-memory limiter",
				"breaker", f.breaker.Name(),
				"error", err,
			)
		}
		return f.fallback.Allow(ctx, key)
	}

	usePrimary, change := f.breaker.RecordSuccess()
	if change.Closed {
		f.logger.InfoContext(ctx, "search throttle circuit closed", "breaker", f.breaker.Name())
	}
	if !usePrimary {
		return f.fallback.Allow(ctx, key)
	}
	return allowed, nil
}
