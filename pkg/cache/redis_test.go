package cache

import (
	"context"
	"testing"
	"time"

	"library-booking/pkg/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewWithClient(client, time.Minute, zap.NewNop()), mr
}

func TestCounterRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, err := c.GetInt64(ctx, UnreadCountKey("u1"))
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.SetInt64(ctx, UnreadCountKey("u1"), 4))
	n, err := c.GetInt64(ctx, UnreadCountKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	mr.FastForward(2 * time.Minute)
	_, err = c.GetInt64(ctx, UnreadCountKey("u1"))
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.SetInt64(ctx, UnreadCountKey("u1"), 1))
	require.NoError(t, c.Delete(ctx, UnreadCountKey("u1")))
	_, err = c.GetInt64(ctx, UnreadCountKey("u1"))
	assert.ErrorIs(t, err, ErrMiss)
}

func TestLockExclusive(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	token, err := c.AcquireLock(ctx, SeatLockKey("s1"), time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	second, err := c.AcquireLock(ctx, SeatLockKey("s1"), time.Minute)
	require.NoError(t, err)
	assert.Empty(t, second)

	// a stale token must not release someone else's lock
	require.NoError(t, c.ReleaseLock(ctx, SeatLockKey("s1"), "not-mine"))
	again, err := c.AcquireLock(ctx, SeatLockKey("s1"), time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again)

	require.NoError(t, c.ReleaseLock(ctx, SeatLockKey("s1"), token))
	third, err := c.AcquireLock(ctx, SeatLockKey("s1"), time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, third)
}

func TestDisabledCache(t *testing.T) {
	c := New(utils.RedisConfig{}, zap.NewNop())
	ctx := context.Background()

	assert.False(t, c.Enabled())
	require.NoError(t, c.SetInt64(ctx, "k", 1))
	_, err := c.GetInt64(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	token, err := c.AcquireLock(ctx, "seat:1", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	blocked, err := c.AcquireLock(ctx, "seat:1", time.Minute)
	require.NoError(t, err)
	assert.Empty(t, blocked)

	require.NoError(t, c.ReleaseLock(ctx, "seat:1", token))
	token, err = c.AcquireLock(ctx, "seat:1", time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}
