package provider

import "github.com/google/uuid"

// Result is the outcome of submitting one applicant to a verification
// provider. The caller owns the store write; adapters only report.
type Result struct {
	ApplicationID uuid.UUID
	Rejected      bool
	ReferenceIDs  []string
	Err           error
}
