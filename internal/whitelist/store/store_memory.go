package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"kycgate/internal/whitelist/models"
	"kycgate/pkg/platform/sentinel"
)

// InMemoryStore keeps the whitelist buffer in a map guarded by one mutex.
// Wallets are unique, mirroring the Postgres constraint.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*models.Entry
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{entries: make(map[uuid.UUID]*models.Entry)}
}

func (s *InMemoryStore) Create(_ context.Context, e *models.Entry) error {
	if e == nil {
		return fmt.Errorf("entry is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.entries {
		if existing.ID == e.ID || existing.EthereumWallet == e.EthereumWallet {
			return sentinel.ErrAlreadyUsed
		}
	}
	stored := *e
	if stored.Version == 0 {
		stored.Version = 1
	}
	s.entries[e.ID] = &stored
	e.Version = stored.Version
	return nil
}

func (s *InMemoryStore) FindByPair(_ context.Context, wallet, kycID string) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.EthereumWallet == wallet && e.KYCID == kycID {
			c := *e
			return &c, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// FindEligible returns entries in status with retry_count below retryBelow,
// oldest first. limit <= 0 means no limit.
func (s *InMemoryStore) FindEligible(_ context.Context, status models.Status, retryBelow, limit int) ([]*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Entry
	for _, e := range s.entries {
		if e.Status == status && e.RetryCount < retryBelow {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) CompareAndSet(_ context.Context, id uuid.UUID, version int64, m models.Mutation) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.Version != version {
		return nil, sentinel.ErrStaleVersion
	}
	m.Apply(e)
	c := *e
	return &c, nil
}

func (s *InMemoryStore) UpdateWhere(_ context.Context, f models.Filter, m models.Mutation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if f.Matches(e) {
			m.Apply(e)
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

// Count returns how many entries are buffered.
func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}
