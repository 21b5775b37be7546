package models

import (
	"sync"

	"github.com/google/uuid"
)

// RecordError is a failure attributed to one application within a job run.
type RecordError struct {
	ApplicationID uuid.UUID
	Err           error
}

// JobReport summarises one job invocation. Per-record failures are kept
// individually so one record cannot mask the outcome of its siblings.
type JobReport struct {
	Job       string
	JobID     string
	Claimed   int
	Succeeded int
	Updated   int
	Errors    []RecordError

	mu sync.Mutex
}

// Failed is the number of records that errored.
func (r *JobReport) Failed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Errors)
}

// Fail records a per-record error. Safe for concurrent use.
func (r *JobReport) Fail(id uuid.UUID, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, RecordError{ApplicationID: id, Err: err})
}

// Succeed counts one record that completed its step. Safe for concurrent use.
func (r *JobReport) Succeed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Succeeded++
}
