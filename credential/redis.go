package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBacking persists one credential string per session key in Redis.
//
// Keys follow the prefix:name:sessionKey layout. With sliding enabled every
// successful Load refreshes the TTL, so the credential lives as long as the
// browser session stays active rather than a fixed window from login.
type RedisBacking struct {
	redis   redis.UniversalClient
	prefix  string
	name    string
	ttl     time.Duration
	sliding bool
}

// NewRedisBacking creates a [RedisBacking] over the given Redis client.
//
// An empty prefix defaults to "gsc", an empty name to [DefaultStorageName].
// A non-positive ttl stores credentials without expiry.
func NewRedisBacking(client redis.UniversalClient, prefix, name string, ttl time.Duration, sliding bool) *RedisBacking {
	if prefix == "" {
		prefix = "gsc"
	}
	if name == "" {
		name = DefaultStorageName
	}
	return &RedisBacking{
		redis:   client,
		prefix:  prefix,
		name:    name,
		ttl:     ttl,
		sliding: sliding,
	}
}

func (b *RedisBacking) key(sessionKey string) string {
	return b.prefix + ":" + b.name + ":" + normalizeSessionKey(sessionKey)
}

// Load retrieves the credential for the session key.
//
//	Performance: 1 Redis GET (GETEX when sliding).
func (b *RedisBacking) Load(ctx context.Context, sessionKey string) (string, bool, error) {
	key := b.key(sessionKey)

	var (
		token string
		err   error
	)
	if b.sliding && b.ttl > 0 {
		token, err = b.redis.GetEx(ctx, key, b.ttl).Result()
	} else {
		token, err = b.redis.Get(ctx, key).Result()
	}
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrBackingUnavailable, err)
	}

	return token, true, nil
}

// Store writes the credential for the session key with the configured TTL.
//
//	Performance: 1 Redis SET.
func (b *RedisBacking) Store(ctx context.Context, sessionKey, token string) error {
	if err := b.redis.Set(ctx, b.key(sessionKey), token, b.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackingUnavailable, err)
	}
	return nil
}

// Delete removes the credential for the session key. Deleting an absent key
// succeeds.
func (b *RedisBacking) Delete(ctx context.Context, sessionKey string) error {
	if err := b.redis.Del(ctx, b.key(sessionKey)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackingUnavailable, err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (b *RedisBacking) Ping(ctx context.Context) error {
	if err := b.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackingUnavailable, err)
	}
	return nil
}
