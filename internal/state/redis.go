package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"placement-backend/internal/placement"
)

const (
	redisKeyPrefix = "placement:user:"
	redisIndexKey  = "placement:users"
)

// redisClient is the subset of *redis.Client the store needs.
type redisClient interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

// putScript writes the payload only while the stored version still equals
// ARGV[1], then bumps the version and indexes the id. Returns 1 on write.
const putScript = `
local current = tonumber(redis.call('HGET', KEYS[1], 'version') or '0')
if current ~= tonumber(ARGV[1]) then
  return 0
end
redis.call('HSET', KEYS[1], 'payload', ARGV[2], 'version', current + 1)
redis.call('SADD', KEYS[2], ARGV[3])
return 1
`

// RedisStore keeps each user as a hash of JSON payload and version, plus an id index set.
type RedisStore struct {
	client redisClient
}

func NewRedisStore(client redisClient) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient parses url and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (placement.User, error) {
	raw, err := s.client.HGet(ctx, userKey(userID), "payload").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return placement.User{}, ErrNotFound
		}
		return placement.User{}, err
	}
	var u placement.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return placement.User{}, fmt.Errorf("decode user %s: %w", userID, err)
	}
	return u, nil
}

func (s *RedisStore) Put(ctx context.Context, user placement.User) error {
	stored := user
	stored.Version++
	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode user %s: %w", user.ID, err)
	}
	keys := []string{userKey(user.ID), redisIndexKey}
	written, err := s.client.Eval(ctx, putScript, keys, user.Version, string(payload), user.ID).Int64()
	if err != nil {
		return err
	}
	if written == 0 {
		return ErrConflict
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	n, err := s.client.Del(ctx, userKey(userID)).Result()
	if err != nil {
		return err
	}
	if err := s.client.SRem(ctx, redisIndexKey, userID).Err(); err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) ListIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func userKey(id string) string {
	return redisKeyPrefix + id
}
