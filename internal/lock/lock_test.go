package lock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/lock"
)

func TestMemoryLockerExcludesSecondHolder(t *testing.T) {
	l := lock.NewMemoryLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "campaign:c1")
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "campaign:c1")
	assert.ErrorIs(t, err, appErrors.ErrSendInProgress)

	other, err := l.Acquire(ctx, "campaign:c2")
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := l.Acquire(ctx, "campaign:c1")
	require.NoError(t, err)
	again()
}

func TestRedisLockerSurfacesConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	_, err := lock.NewRedisLocker(client, time.Minute).Acquire(context.Background(), "campaign:c1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrSendInProgress)
}

const lockKey = "campaign-mailer:lock:campaign:c1"

func newRedisLocker(t *testing.T, ttl time.Duration) (*lock.RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return lock.NewRedisLocker(client, ttl), mr
}

func TestRedisLockerExcludesSecondHolder(t *testing.T) {
	l, mr := newRedisLocker(t, time.Minute)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "campaign:c1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(lockKey))

	_, err = l.Acquire(ctx, "campaign:c1")
	assert.ErrorIs(t, err, appErrors.ErrSendInProgress)

	release()
	release()
	assert.False(t, mr.Exists(lockKey))

	again, err := l.Acquire(ctx, "campaign:c1")
	require.NoError(t, err)
	again()
}

func TestRedisLockerReleasesOnlyOwnToken(t *testing.T) {
	l, mr := newRedisLocker(t, time.Minute)

	release, err := l.Acquire(context.Background(), "campaign:c1")
	require.NoError(t, err)

	// The key expired and another replica took the lock.
	require.NoError(t, mr.Set(lockKey, "other-holder"))
	release()

	got, err := mr.Get(lockKey)
	require.NoError(t, err)
	assert.Equal(t, "other-holder", got)
}

func TestRedisLockerRenewsWhileHeld(t *testing.T) {
	ttl := 300 * time.Millisecond
	l, mr := newRedisLocker(t, ttl)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "campaign:c1")
	require.NoError(t, err)
	defer release()

	// Two full TTLs pass in Redis time; renewals must keep the key alive.
	for i := 0; i < 2; i++ {
		mr.FastForward(ttl - 50*time.Millisecond)
		require.Eventually(t, func() bool {
			return mr.TTL(lockKey) > ttl/2
		}, 2*time.Second, 10*time.Millisecond)
	}
	require.True(t, mr.Exists(lockKey))

	_, err = l.Acquire(ctx, "campaign:c1")
	assert.ErrorIs(t, err, appErrors.ErrSendInProgress)
}

func TestRedisLockerStopsRenewingAfterRelease(t *testing.T) {
	ttl := 300 * time.Millisecond
	l, mr := newRedisLocker(t, ttl)

	release, err := l.Acquire(context.Background(), "campaign:c1")
	require.NoError(t, err)
	release()

	// A later holder's key must not be touched by the old renewal loop.
	require.NoError(t, mr.Set(lockKey, "next-holder"))
	mr.SetTTL(lockKey, time.Second)
	time.Sleep(2 * ttl)
	assert.Equal(t, time.Second, mr.TTL(lockKey))
}
