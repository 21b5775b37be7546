// Package users is the user directory the KYC lifecycle reads and flips the
// approval flag on. Registration and login live in the user management
// service; this package only owns the columns KYC needs.
package users

import "time"

// User is the subset of the user record the KYC flow depends on.
type User struct {
	UUID            string
	Username        string
	Email           string
	IsKYCApproved   bool
	IsEmailVerified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
