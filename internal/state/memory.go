package state

import (
	"context"
	"sort"
	"sync"

	"placement-backend/internal/placement"
)

// MemoryStore keeps user states in process memory and is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]placement.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]placement.User)}
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (placement.User, error) {
	if err := ctx.Err(); err != nil {
		return placement.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return placement.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) Put(ctx context.Context, user placement.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users[user.ID].Version != user.Version {
		return ErrConflict
	}
	user.Version++
	s.users[user.ID] = user
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return ErrNotFound
	}
	delete(s.users, userID)
	return nil
}

// ListIDs returns user ids in ascending order.
func (s *MemoryStore) ListIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids, nil
}
