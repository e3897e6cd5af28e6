package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ikkim/bookcity-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live server when REDIS_TEST_HOST is set.
func setupLocker(t *testing.T) *Locker {
	host := os.Getenv("REDIS_TEST_HOST")
	if host == "" {
		t.Skip("REDIS_TEST_HOST not set")
	}
	client, err := Connect(&config.RedisConfig{Host: host, Port: "6379", DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewLocker(client)
}

func TestLocker_AcquireRelease(t *testing.T) {
	first := setupLocker(t)
	second := NewLocker(first.client)
	ctx := context.Background()
	key := "test-" + time.Now().Format(time.RFC3339Nano)

	ok, err := first.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// releasing a lock we never took leaves the holder alone
	require.NoError(t, second.Release(ctx, key))
	ok, err = second.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Release(ctx, key))
	ok, err = second.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, second.Release(ctx, key))
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(&config.RedisConfig{Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
}
