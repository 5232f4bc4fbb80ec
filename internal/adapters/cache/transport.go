package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lewnelson/foreign-exchange-api/internal/adapters"
)

// NoopTransport always misses and ignores writes. It is selected when no
// redis configuration is present so callers never branch on cache presence.
type NoopTransport struct{}

func (NoopTransport) Get(context.Context, string) (string, bool) { return "", false }

func (NoopTransport) Set(context.Context, string, string, time.Duration) {}

// RedisTransport caches values in redis over a unix socket or a URL. All
// transport failures degrade to a miss or a dropped write with a logged
// warning; they never reach the caller.
type RedisTransport struct {
	client *redis.Client
}

// NewRedisTransport connects via the socket path when non-empty, otherwise
// via the URL. A bad URL leaves the transport without a client, in which
// case every Get misses and every Set is dropped.
func NewRedisTransport(socketPath, url string) *RedisTransport {
	if socketPath != "" {
		return &RedisTransport{client: redis.NewClient(&redis.Options{
			Network: "unix",
			Addr:    socketPath,
		})}
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		logrus.WithError(err).WithField("redis_url", url).Error("Error connecting to redis")
		return &RedisTransport{}
	}
	return &RedisTransport{client: redis.NewClient(opt)}
}

func (t *RedisTransport) Get(ctx context.Context, key string) (string, bool) {
	if t.client == nil {
		return "", false
	}
	value, err := t.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).WithField("key", key).Warn("Unable to retrieve redis value")
		}
		return "", false
	}
	return value, true
}

func (t *RedisTransport) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	if t.client == nil {
		return
	}
	if err := t.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"key": key,
			"ttl": ttl,
		}).Warn("Unable to set redis value")
	}
}

func (t *RedisTransport) Close() error {
	if t.client == nil {
		return nil
	}
	return t.client.Close()
}

// Select picks the transport for the process lifetime: redis when a socket
// path or URL is configured, the no-op transport otherwise.
func Select(socketPath, url string) adapters.CacheTransport {
	if socketPath == "" && url == "" {
		return NoopTransport{}
	}
	return NewRedisTransport(socketPath, url)
}
