package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Status is a KYC application lifecycle state.
type Status string

const (
	StatusUnprocessed        Status = "unprocessed"
	StatusProcessing         Status = "processing"
	StatusProcessingDocs     Status = "processing_docs"
	StatusApproved           Status = "kyc_approved"
	StatusRejected           Status = "kyc_rejected"
	StatusNotifyingUser      Status = "notifying_user"
	StatusProcessingFailed   Status = "processing_failed"
	StatusProcessingComplete Status = "processing_complete"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusUnprocessed, StatusProcessing, StatusProcessingDocs, StatusApproved,
		StatusRejected, StatusNotifyingUser, StatusProcessingFailed, StatusProcessingComplete:
		return true
	}
	return false
}

// Decision records which notification path a record took. Empty until the
// provider or a sweep decides.
type Decision string

const (
	DecisionNone     Decision = ""
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Application is one user's in-flight KYC request.
//
// Version increments on every write and is the token for conditional updates;
// UpdatedAt drives staleness sweeps.
type Application struct {
	ID             uuid.UUID
	UserUUID       string
	UserName       string
	EthereumWallet string
	KYCIDs         []string
	Status         Status
	Decision       Decision
	RetryCount     int
	RequestOrigin  string
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OnApprovalPath reports whether a record parked in notifying_user came from
// an approval. Records written before decisions were tracked fall back to
// kycIDs presence.
func (a *Application) OnApprovalPath() bool {
	switch a.Decision {
	case DecisionApproved:
		return true
	case DecisionRejected:
		return false
	default:
		return len(a.KYCIDs) > 0
	}
}

// HasReference reports whether ref is one of the provider reference ids.
func (a *Application) HasReference(ref string) bool {
	return slices.Contains(a.KYCIDs, ref)
}

// Clone returns a deep copy so stores never share slices with callers.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	c := *a
	c.KYCIDs = slices.Clone(a.KYCIDs)
	return &c
}

// Mutation describes one store write. Zero fields leave the column untouched.
type Mutation struct {
	Status         Status
	Decision       *Decision
	ReplaceKYCIDs  bool
	KYCIDs         []string
	RetryIncrement int
	At             time.Time
}

// Apply writes m onto a and bumps the version.
func (m Mutation) Apply(a *Application) {
	if m.Status != "" {
		a.Status = m.Status
	}
	if m.Decision != nil {
		a.Decision = *m.Decision
	}
	if m.ReplaceKYCIDs {
		a.KYCIDs = slices.Clone(m.KYCIDs)
		if a.KYCIDs == nil {
			a.KYCIDs = []string{}
		}
	}
	a.RetryCount += m.RetryIncrement
	a.Version++
	if !m.At.IsZero() {
		a.UpdatedAt = m.At
	}
}

// DecisionPtr is a helper for building mutations.
func DecisionPtr(d Decision) *Decision {
	return &d
}

// Filter selects records for unconditional sweeps. Zero fields match everything.
type Filter struct {
	Status          Status
	ExcludeStatuses []Status
	UpdatedBefore   time.Time
	RetryAtLeast    int
	ApprovalPath    *bool
}

// Matches reports whether a satisfies every set predicate.
func (f Filter) Matches(a *Application) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if slices.Contains(f.ExcludeStatuses, a.Status) {
		return false
	}
	if !f.UpdatedBefore.IsZero() && !a.UpdatedAt.Before(f.UpdatedBefore) {
		return false
	}
	if f.RetryAtLeast > 0 && a.RetryCount < f.RetryAtLeast {
		return false
	}
	if f.ApprovalPath != nil && a.OnApprovalPath() != *f.ApprovalPath {
		return false
	}
	return true
}
