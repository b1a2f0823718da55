package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/logger"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the key's expiry only while it still holds our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker shares send locks between server replicas. A held lock is
// renewed every TTL/3 until released, so it only expires when its holder
// has crashed.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, prefix: "campaign-mailer:lock"}
}

func (l *RedisLocker) key(k string) string {
	return l.prefix + ":" + k
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(key), token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, appErrors.ErrSendInProgress
	}

	stop := make(chan struct{})
	go l.renew(key, token, stop)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			// The caller's context may already be cancelled.
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, l.client, []string{l.key(key)}, token).Err(); err != nil {
				logger.From(ctx).Warn("release lock failed", logger.String("lock", key), logger.Err(err))
			}
		})
	}, nil
}

func (l *RedisLocker) renew(key, token string, stop <-chan struct{}) {
	interval := l.ttl / 3
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log := logger.Named("lock").With(logger.String("lock", key))

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		select {
		case <-stop:
			return
		default:
		}
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		n, err := renewScript.Run(ctx, l.client, []string{l.key(key)}, token, l.ttl.Milliseconds()).Int()
		cancel()
		switch {
		case err != nil:
			// Retried on the next tick while the key has TTL left.
			log.Warn("renew lock failed", logger.Err(err))
		case n == 0:
			log.Error("lock lost before release")
			return
		}
	}
}

var _ Locker = (*RedisLocker)(nil)
