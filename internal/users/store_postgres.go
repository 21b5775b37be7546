package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kycgate/pkg/platform/sentinel"
)

// PostgresStore reads the users table shared with the user management service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save upserts a user. The lifecycle never calls it; it exists for seeding.
func (s *PostgresStore) Save(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (uuid, username, email, is_kyc_approved, is_email_verified)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (uuid) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			is_kyc_approved = EXCLUDED.is_kyc_approved,
			is_email_verified = EXCLUDED.is_email_verified,
			updated_at = NOW()`,
		u.UUID, u.Username, u.Email, u.IsKYCApproved, u.IsEmailVerified,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByUUID(ctx context.Context, uuid string) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT uuid, username, email, is_kyc_approved, is_email_verified, created_at, updated_at
		FROM users
		WHERE uuid = $1`, uuid,
	).Scan(&u.UUID, &u.Username, &u.Email, &u.IsKYCApproved, &u.IsEmailVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) UpdateKYCStatus(ctx context.Context, uuid string, approved bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_kyc_approved = $2, updated_at = NOW() WHERE uuid = $1`, uuid, approved)
	if err != nil {
		return fmt.Errorf("update user kyc status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user kyc status rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
