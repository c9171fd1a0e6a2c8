package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/gleaner/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "run-1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)
	assert.True(t, mr.Exists("test:lock:run-1"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:run-1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	_, client := newClient(t)
	first := redis.NewLocker(client, "test:")
	second := redis.NewLocker(client, "test:")

	unlock, err := first.Lock(context.Background(), "shared", 5*time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	_, err = second.Lock(ctx, "shared", 5*time.Second)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)

	require.NoError(t, unlock(context.Background()))

	unlock2, err := second.Lock(context.Background(), "shared", 5*time.Second)
	require.NoError(t, err)
	assert.NoError(t, unlock2(context.Background()))
}

func TestRedisLocker_UnlockKeepsForeignLock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "run", time.Second)
	require.NoError(t, err)

	// Expired and taken over by another holder.
	require.NoError(t, mr.Set("test:lock:run", "someone-else"))
	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("test:lock:run"))
}
