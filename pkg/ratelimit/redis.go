package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces limiter keys in a shared Redis.
const KeyPrefix = "ratelimit:quote:"

// incrementScript adds one to the counter and starts the expiry on the first
// hit of a window. Returns {count, ttl_ms}.
var incrementScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore keeps records in Redis so every instance shares one count per
// caller. Expired windows disappear with their key TTL.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, prefix: KeyPrefix}
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, key string) (Record, bool, error) {
	pipe := s.client.Pipeline()
	countCmd := pipe.Get(ctx, s.prefix+key)
	ttlCmd := pipe.PTTL(ctx, s.prefix+key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Record{}, false, fmt.Errorf("redis get: %w", err)
	}

	count, err := countCmd.Int()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("redis get: %w", err)
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}
	return Record{Key: key, Count: count, ResetAt: time.Now().Add(ttl)}, true, nil
}

// IncrementOrReset implements Store. Redis owns the window expiry; now only
// anchors the returned ResetAt.
func (s *RedisStore) IncrementOrReset(ctx context.Context, key string, now time.Time, window time.Duration) (Record, error) {
	res, err := incrementScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Record{}, fmt.Errorf("redis increment: %w", err)
	}
	if len(res) != 2 {
		return Record{}, fmt.Errorf("redis increment: unexpected reply %v", res)
	}

	return Record{
		Key:     key,
		Count:   int(res[0]),
		ResetAt: now.Add(time.Duration(res[1]) * time.Millisecond),
	}, nil
}
