package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript performs the whole check-and-increment server-side so the
// record is atomic across processes, matching the MemoryStore contract.
// KEYS[1] window record hash; ARGV: maxAttempts, windowMs, nowMs.
var takeScript = redis.NewScript(`
local max = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local count = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
local resetAt = tonumber(redis.call('HGET', KEYS[1], 'resetAt') or '0')

if resetAt == 0 or now > resetAt then
  count = 0
  resetAt = now + window
end

if count >= max then
  return {0, 0, resetAt}
end

count = count + 1
redis.call('HSET', KEYS[1], 'count', count, 'resetAt', resetAt)
redis.call('PEXPIREAT', KEYS[1], resetAt)
return {1, max - count, resetAt}
`)

// RedisStore backs the limiter with Redis so limits hold across server
// instances. Same external contract as MemoryStore.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) Take(ctx context.Context, key string, maxAttempts int, window time.Duration, now time.Time) (Result, error) {
	vals, err := takeScript.Run(ctx, s.client, []string{s.prefix + key},
		maxAttempts, window.Milliseconds(), now.UnixMilli()).Int64Slice()
	if err != nil {
		return Result{}, err
	}
	return Result{
		Allowed:   vals[0] == 1,
		Remaining: int(vals[1]),
		ResetAt:   time.UnixMilli(vals[2]),
	}, nil
}
