package fourstop

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"kycgate/internal/platform/postgres"
	"kycgate/pkg/platform/sentinel"
)

// PostgresStore keeps payloads in kyc_provider_payloads as JSONB, one row per
// application. The row cascades with its application.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, applicationID uuid.UUID, data *EnrollmentData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kyc_provider_payloads (application_id, provider, payload)
		VALUES ($1, $2, $3)`,
		applicationID, providerID, raw,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("save payload: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, applicationID uuid.UUID) (*EnrollmentData, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM kyc_provider_payloads WHERE application_id = $1 AND provider = $2`,
		applicationID, providerID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find payload: %w", err)
	}
	var data EnrollmentData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &data, nil
}

func (s *PostgresStore) Delete(ctx context.Context, applicationID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kyc_provider_payloads WHERE application_id = $1 AND provider = $2`,
		applicationID, providerID,
	)
	if err != nil {
		return fmt.Errorf("delete payload: %w", err)
	}
	return nil
}
