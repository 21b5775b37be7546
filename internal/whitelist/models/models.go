package models

import (
	"time"

	"github.com/google/uuid"
)

// Status of a buffered whitelist request. There is no terminal failure
// state; entries are retried until the chain accepts them.
type Status string

const (
	StatusUnprocessed Status = "unprocessed"
	StatusProcessing  Status = "processing"
)

// Entry is one wallet waiting to be whitelisted on chain.
type Entry struct {
	ID             uuid.UUID
	EthereumWallet string
	KYCID          string
	Status         Status
	RetryCount     int
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewEntry builds an unprocessed entry for an approved application.
func NewEntry(wallet, kycID string, now time.Time) *Entry {
	return &Entry{
		ID:             uuid.New(),
		EthereumWallet: wallet,
		KYCID:          kycID,
		Status:         StatusUnprocessed,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Mutation describes one buffer write. ResetRetries wins over RetryIncrement.
type Mutation struct {
	Status         Status
	RetryIncrement int
	ResetRetries   bool
	At             time.Time
}

func (m Mutation) Apply(e *Entry) {
	if m.Status != "" {
		e.Status = m.Status
	}
	if m.ResetRetries {
		e.RetryCount = 0
	} else {
		e.RetryCount += m.RetryIncrement
	}
	e.Version++
	if !m.At.IsZero() {
		e.UpdatedAt = m.At
	}
}

// Filter selects entries for the reset sweeps. Zero fields match everything.
type Filter struct {
	Status        Status
	UpdatedBefore time.Time
	RetryAtLeast  int
}

func (f Filter) Matches(e *Entry) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if !f.UpdatedBefore.IsZero() && !e.UpdatedAt.Before(f.UpdatedBefore) {
		return false
	}
	if f.RetryAtLeast > 0 && e.RetryCount < f.RetryAtLeast {
		return false
	}
	return true
}
