package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/httpx"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript resets the expiry only if the key still holds our token.
var extendScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Locker is a distributed mutex built on SET NX PX. A held lock is renewed
// every ttl/3 until released, so the TTL only bounds how long a crashed
// holder blocks the key.
type Locker struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

func NewLocker(log *logger.Logger, rdb *goredis.Client, prefix string, ttl time.Duration) (*Locker, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if prefix == "" {
		prefix = "self_analysis:lock:"
	}
	return &Locker{
		log:    log.With("service", "RedisLocker"),
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		retry:  50 * time.Millisecond,
	}, nil
}

// Lock blocks until key is acquired or ctx is done. The returned release
// func stops renewal and deletes the key; it is safe to call more than once.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	k := l.prefix + key
	token := uuid.NewString()
	for {
		ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if err := httpx.Sleep(ctx, httpx.JitterSleep(l.retry)); err != nil {
			return nil, err
		}
	}

	// Renewal and release outlive the request context.
	bg := context.WithoutCancel(ctx)
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		l.keepAlive(bg, k, token, done)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-stopped
			rctx, cancel := context.WithTimeout(bg, 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, l.rdb, []string{k}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
				l.log.Warn("redis unlock failed", "key", k, "error", err)
			}
		})
	}, nil
}

func (l *Locker) keepAlive(ctx context.Context, k, token string, done <-chan struct{}) {
	interval := l.ttl / 3
	if interval <= 0 {
		interval = l.ttl
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
		}
		cctx, cancel := context.WithTimeout(ctx, min(interval, 2*time.Second))
		n, err := extendScript.Run(cctx, l.rdb, []string{k}, token, l.ttl.Milliseconds()).Int64()
		cancel()
		switch {
		case err != nil:
			// Transient; the next tick retries while the key is still live.
			l.log.Warn("redis lock renew failed", "key", k, "error", err)
		case n == 0:
			l.log.Warn("redis lock lost", "key", k)
			return
		}
	}
}
