//go:build integration

package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkin/pkg/testutil/containers"
)

func TestRedisLimiter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	now := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	r := NewRedis(rc.Client, 3, time.Minute)
	r.now = func() time.Time { return now }

	for range 3 {
		ok, err := r.Allow(ctx, "kiosk-1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := r.Allow(ctx, "kiosk-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := rc.Client.TTL(ctx, redisKeyPrefix+"kiosk-1:"+"29146140").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	now = now.Add(time.Minute)
	ok, err = r.Allow(ctx, "kiosk-1")
	require.NoError(t, err)
	assert.True(t, ok)
}
