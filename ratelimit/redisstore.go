package ratelimit

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// fixedWindowScript counts a hit and opens the window on the first one.
// KEYS[1] = window key
// ARGV[1] = window length in milliseconds
// Returns {count, remaining ttl in ms}.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
    ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore shares windows between processes. Redis expiry does the cleanup.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

// NewRedisStoreFromURL parses a redis:// URL.
func NewRedisStoreFromURL(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	return NewRedisStore(redis.NewClient(opts)), nil
}

func (s *RedisStore) Hit(ctx context.Context, key string, max int, window time.Duration, now time.Time) (bool, time.Time, error) {
	res, err := fixedWindowScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds()).Result()
	if err != nil {
		return false, time.Time{}, errors.Wrap(err, "redis window")
	}
	values, ok := res.([]interface{})
	if !ok || len(values) != 2 {
		return false, time.Time{}, errors.New("invalid response from window script")
	}
	count, _ := values[0].(int64)
	ttl, _ := values[1].(int64)

	return count <= int64(max), now.Add(time.Duration(ttl) * time.Millisecond), nil
}

func (s *RedisStore) ResetAt(ctx context.Context, key string, now time.Time) (time.Time, bool, error) {
	ttl, err := s.client.PTTL(ctx, s.prefix+key).Result()
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "redis ttl")
	}
	if ttl <= 0 {
		return time.Time{}, false, nil
	}
	return now.Add(ttl), true, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
