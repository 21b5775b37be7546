package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"kycgate/internal/platform/postgres"
	"kycgate/internal/whitelist/models"
	"kycgate/pkg/platform/sentinel"
)

const entryColumns = `id, ethereum_wallet, kyc_id, status, retry_count, version, created_at, updated_at`

// setClause writes a Mutation using placeholders $1..$4 (see mutationArgs).
const setClause = `
	status = COALESCE(NULLIF($1, ''), status),
	retry_count = CASE WHEN $2 THEN 0 ELSE retry_count + $3 END,
	version = version + 1,
	updated_at = COALESCE($4, NOW())`

// PostgresStore persists the whitelist buffer in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, e *models.Entry) error {
	if e == nil {
		return fmt.Errorf("entry is required")
	}
	version := e.Version
	if version == 0 {
		version = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO whitelist_buffer (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.EthereumWallet, e.KYCID, e.Status, e.RetryCount, version, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create whitelist entry: %w", err)
	}
	e.Version = version
	return nil
}

func (s *PostgresStore) FindByPair(ctx context.Context, wallet, kycID string) (*models.Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM whitelist_buffer
		WHERE ethereum_wallet = $1 AND kyc_id = $2`, wallet, kycID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find whitelist entry: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) FindEligible(ctx context.Context, status models.Status, retryBelow, limit int) ([]*models.Entry, error) {
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM whitelist_buffer
		WHERE status = $1 AND retry_count < $2
		ORDER BY created_at
		LIMIT $3`, status, retryBelow, lim)
	if err != nil {
		return nil, fmt.Errorf("find eligible whitelist entries: %w", err)
	}
	defer rows.Close()

	var out []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan whitelist entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate whitelist entries: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CompareAndSet(ctx context.Context, id uuid.UUID, version int64, m models.Mutation) (*models.Entry, error) {
	args := append(mutationArgs(m), id, version)
	e, err := scanEntry(s.db.QueryRowContext(ctx, `
		UPDATE whitelist_buffer SET`+setClause+`
		WHERE id = $5 AND version = $6
		RETURNING `+entryColumns, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrStaleVersion
		}
		return nil, fmt.Errorf("compare and set whitelist entry: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) UpdateWhere(ctx context.Context, f models.Filter, m models.Mutation) (int, error) {
	args := mutationArgs(m)
	var conds []string
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		conds = append(conds, "status = "+next(string(f.Status)))
	}
	if !f.UpdatedBefore.IsZero() {
		conds = append(conds, "updated_at < "+next(f.UpdatedBefore))
	}
	if f.RetryAtLeast > 0 {
		conds = append(conds, "retry_count >= "+next(f.RetryAtLeast))
	}
	query := `UPDATE whitelist_buffer SET` + setClause
	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update whitelist entries: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update whitelist entries rows affected: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM whitelist_buffer WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete whitelist entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete whitelist entry rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM whitelist_buffer`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count whitelist entries: %w", err)
	}
	return n, nil
}

func mutationArgs(m models.Mutation) []any {
	var at sql.NullTime
	if !m.At.IsZero() {
		at = sql.NullTime{Time: m.At, Valid: true}
	}
	return []any{string(m.Status), m.ResetRetries, m.RetryIncrement, at}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*models.Entry, error) {
	var (
		e      models.Entry
		status string
	)
	if err := row.Scan(
		&e.ID, &e.EthereumWallet, &e.KYCID, &status, &e.RetryCount, &e.Version, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Status = models.Status(status)
	return &e, nil
}
