package fourstop

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"kycgate/pkg/platform/sentinel"
)

// InMemoryStore keeps payloads as encoded JSON so callers never share
// document buffers with the store.
type InMemoryStore struct {
	mu       sync.RWMutex
	payloads map[uuid.UUID][]byte
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{payloads: make(map[uuid.UUID][]byte)}
}

func (s *InMemoryStore) Save(_ context.Context, applicationID uuid.UUID, data *EnrollmentData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payloads[applicationID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.payloads[applicationID] = raw
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, applicationID uuid.UUID) (*EnrollmentData, error) {
	s.mu.RLock()
	raw, ok := s.payloads[applicationID]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	var data EnrollmentData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &data, nil
}

// Delete is idempotent; removing an absent payload is not an error.
func (s *InMemoryStore) Delete(_ context.Context, applicationID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.payloads, applicationID)
	return nil
}
