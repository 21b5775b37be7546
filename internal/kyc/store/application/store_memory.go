package application

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"kycgate/internal/kyc/models"
	"kycgate/pkg/platform/sentinel"
)

// InMemoryStore keeps applications in a map guarded by one mutex, which makes
// every conditional update atomic. Used for development and unit tests.
type InMemoryStore struct {
	mu   sync.RWMutex
	apps map[uuid.UUID]*models.Application
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{apps: make(map[uuid.UUID]*models.Application)}
}

func (s *InMemoryStore) Create(_ context.Context, app *models.Application) error {
	if app == nil {
		return fmt.Errorf("application is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[app.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	stored := app.Clone()
	if stored.KYCIDs == nil {
		stored.KYCIDs = []string{}
	}
	if stored.Version == 0 {
		stored.Version = 1
	}
	s.apps[app.ID] = stored
	app.Version = stored.Version
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return app.Clone(), nil
}

// FindEligible returns records in status with retry_count below retryBelow,
// oldest update first. limit <= 0 means no limit.
func (s *InMemoryStore) FindEligible(_ context.Context, status models.Status, retryBelow, limit int) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Application
	for _, app := range s.apps {
		if app.Status == status && app.RetryCount < retryBelow {
			out = append(out, app.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) FindByReference(_ context.Context, ref string, status models.Status) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, app := range s.apps {
		if app.Status == status && slices.Contains(app.KYCIDs, ref) {
			return app.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// CompareAndSet applies m only if the stored version still equals version.
func (s *InMemoryStore) CompareAndSet(_ context.Context, id uuid.UUID, version int64, m models.Mutation) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok || app.Version != version {
		return nil, sentinel.ErrStaleVersion
	}
	m.Apply(app)
	return app.Clone(), nil
}

func (s *InMemoryStore) UpdateWhere(_ context.Context, f models.Filter, m models.Mutation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, app := range s.apps {
		if f.Matches(app) {
			m.Apply(app)
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.apps, id)
	return nil
}
