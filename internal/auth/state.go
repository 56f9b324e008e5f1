package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateStore holds OAuth state values between start and callback. Each state
// can be consumed once.
type StateStore interface {
	Put(ctx context.Context, state string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (bool, error)
}

type memoryStates struct {
	mu    sync.Mutex
	items map[string]time.Time
	now   func() time.Time
}

// NewMemoryStateStore keeps states in process. Use it for a single API instance.
func NewMemoryStateStore() StateStore {
	return newMemoryStates(time.Now)
}

func newMemoryStates(now func() time.Time) *memoryStates {
	return &memoryStates{items: make(map[string]time.Time), now: now}
}

func (s *memoryStates) Put(_ context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.items {
		if now.After(exp) {
			delete(s.items, k)
		}
	}
	s.items[state] = now.Add(ttl)
	return nil
}

func (s *memoryStates) Consume(_ context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.items[state]
	if !ok {
		return false, nil
	}
	delete(s.items, state)
	return !s.now().After(exp), nil
}

const redisStatePrefix = "placement:oauth_state:"

type stateRedis interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisStates struct {
	client stateRedis
}

// NewRedisStateStore shares states across instances. Expiry is left to Redis.
func NewRedisStateStore(client stateRedis) StateStore {
	return &redisStates{client: client}
}

func (s *redisStates) Put(ctx context.Context, state string, ttl time.Duration) error {
	return s.client.Set(ctx, redisStatePrefix+state, "1", ttl).Err()
}

func (s *redisStates) Consume(ctx context.Context, state string) (bool, error) {
	n, err := s.client.Del(ctx, redisStatePrefix+state).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
