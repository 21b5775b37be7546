package users

import (
	"context"
	"sync"
	"time"

	"kycgate/pkg/platform/sentinel"
)

// InMemoryStore is a user directory for development and tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewInMemory(seed ...User) *InMemoryStore {
	s := &InMemoryStore{users: make(map[string]User, len(seed))}
	for _, u := range seed {
		s.users[u.UUID] = u
	}
	return s
}

func (s *InMemoryStore) Save(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UUID] = *u
	return nil
}

func (s *InMemoryStore) GetByUUID(_ context.Context, uuid string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[uuid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (s *InMemoryStore) UpdateKYCStatus(_ context.Context, uuid string, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[uuid]
	if !ok {
		return sentinel.ErrNotFound
	}
	u.IsKYCApproved = approved
	u.UpdatedAt = time.Now()
	s.users[uuid] = u
	return nil
}
