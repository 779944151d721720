package throttle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkin/pkg/platform/circuit"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	m := NewMemory(2, time.Minute)
	m.now = func() time.Time { return now }

	t.Run("allows up to the limit per key", func(t *testing.T) {
		for range 2 {
			ok, err := m.Allow(ctx, "kiosk-1")
			require.NoError(t, err)
			assert.True(t, ok)
		}
		ok, err := m.Allow(ctx, "kiosk-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("keys are independent", func(t *testing.T) {
		ok, err := m.Allow(ctx, "kiosk-2")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("new window resets the count", func(t *testing.T) {
		now = now.Add(time.Minute)
		ok, err := m.Allow(ctx, "kiosk-1")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

type stubLimiter struct {
	allowed bool
	err     error
	calls   int
}

func (s *stubLimiter) Allow(context.Context, string) (bool, error) {
	s.calls++
	return s.allowed, s.err
}

func TestFallback(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("requires both limiters", func(t *testing.T) {
		_, err := NewFallback(nil, &stubLimiter{}, nil, logger)
		assert.Error(t, err)
	})

	t.Run("healthy primary answers", func(t *testing.T) {
		primary := &stubLimiter{allowed: false}
		fallback := &stubLimiter{allowed: true}
		f, err := NewFallback(primary, fallback, nil, logger)
		require.NoError(t, err)

		ok, err := f.Allow(ctx, "kiosk-1")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, fallback.calls)
	})

	t.Run("primary errors fall back and open the breaker", func(t *testing.T) {
		primary := &stubLimiter{err: errors.New("redis down")}
		fallback := &stubLimiter{allowed: true}
		breaker := circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(2))
		f, err := NewFallback(primary, fallback, breaker, logger)
		require.NoError(t, err)

		for range 2 {
			ok, err := f.Allow(ctx, "kiosk-1")
			require.NoError(t, err)
			assert.True(t, ok)
		}
		assert.True(t, breaker.IsOpen())
		assert.Equal(t, 2, fallback.calls)

		primary.err = nil
		primary.allowed = false
		ok, err := f.Allow(ctx, "kiosk-1")
		require.NoError(t, err)
		assert.True(t, ok, "half-recovered primary is not trusted yet")

		ok, err = f.Allow(ctx, "kiosk-1")
		require.NoError(t, err)
		assert.False(t, ok, "breaker closed, primary answers")
		assert.False(t, breaker.IsOpen())
	})

	t.Run("unreachable redis falls back to memory", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		})
		t.Cleanup(func() { _ = client.Close() })

		f, err := NewFallback(NewRedis(client, 5, time.Minute), NewMemory(1, time.Minute), nil, logger)
		require.NoError(t, err)

		ok, err := f.Allow(ctx, "kiosk-1")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = f.Allow(ctx, "kiosk-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
