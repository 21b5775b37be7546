// Package events publishes KYC lifecycle transitions for downstream consumers
// (CRM, compliance reporting). Publishing is best effort: a failed publish is
// logged by the caller and never rolls back a transition.
package events

import (
	"context"
	"sync"
	"time"
)

// Type names a lifecycle event.
type Type string

const (
	TypeEnrolled    Type = "kyc.enrolled"
	TypeSubmitted   Type = "kyc.submitted"
	TypeDecided     Type = "kyc.decided"
	TypeCompleted   Type = "kyc.completed"
	TypeDeleted     Type = "kyc.deleted"
	TypeWhitelisted Type = "whitelist.flushed"
	TypeFlushFailed Type = "whitelist.flush_failed"
)

// Event is the JSON payload written to the lifecycle topic.
type Event struct {
	Type          Type      `json:"type"`
	ApplicationID string    `json:"application_id,omitempty"`
	UserUUID      string    `json:"user_uuid,omitempty"`
	Status        string    `json:"status,omitempty"`
	Count         int       `json:"count,omitempty"`
	JobID         string    `json:"job_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Key partitions events so one application's history stays ordered.
func (e Event) Key() string {
	if e.ApplicationID != "" {
		return e.ApplicationID
	}
	return string(e.Type)
}

// Publisher emits lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// MemoryPublisher keeps events in memory for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

// Events returns a snapshot of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// OfType returns published events of type t.
func (p *MemoryPublisher) OfType(t Type) []Event {
	var out []Event
	for _, e := range p.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
