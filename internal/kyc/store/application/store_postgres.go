package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"kycgate/internal/kyc/models"
	"kycgate/internal/platform/postgres"
	"kycgate/pkg/platform/sentinel"
)

const applicationColumns = `id, user_uuid, user_name, ethereum_wallet, kyc_ids, status, decision,
	retry_count, request_origin, version, created_at, updated_at`

// setClause writes a Mutation using placeholders $1..$7 (see mutationArgs).
const setClause = `
	status = COALESCE(NULLIF($1, ''), status),
	decision = CASE WHEN $2 THEN $3 ELSE decision END,
	kyc_ids = CASE WHEN $4 THEN $5::text[] ELSE kyc_ids END,
	retry_count = retry_count + $6,
	version = version + 1,
	updated_at = COALESCE($7, NOW())`

const approvalPathPredicate = `(decision = 'approved' OR (decision = '' AND cardinality(kyc_ids) > 0))`

// PostgresStore persists applications in PostgreSQL. Every write is a single
// statement, so conditional updates are atomic without explicit transactions.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	if app == nil {
		return fmt.Errorf("application is required")
	}
	ids := app.KYCIDs
	if ids == nil {
		ids = []string{}
	}
	version := app.Version
	if version == 0 {
		version = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kyc_applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		app.ID, app.UserUUID, app.UserName, app.EthereumWallet, pq.Array(ids), app.Status,
		app.Decision, app.RetryCount, app.RequestOrigin, version, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create application: %w", err)
	}
	app.Version = version
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	app, err := scanApplication(s.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM kyc_applications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) FindEligible(ctx context.Context, status models.Status, retryBelow, limit int) ([]*models.Application, error) {
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+applicationColumns+`
		FROM kyc_applications
		WHERE status = $1 AND retry_count < $2
		ORDER BY updated_at
		LIMIT $3`, status, retryBelow, lim)
	if err != nil {
		return nil, fmt.Errorf("find eligible applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByReference(ctx context.Context, ref string, status models.Status) (*models.Application, error) {
	app, err := scanApplication(s.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM kyc_applications
		WHERE kyc_ids @> ARRAY[$1]::text[] AND status = $2
		LIMIT 1`, ref, status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find application by reference: %w", err)
	}
	return app, nil
}

// CompareAndSet applies m only when the row still carries version. A missing
// row and a moved-on row both report sentinel.ErrStaleVersion.
func (s *PostgresStore) CompareAndSet(ctx context.Context, id uuid.UUID, version int64, m models.Mutation) (*models.Application, error) {
	args := append(mutationArgs(m), id, version)
	app, err := scanApplication(s.db.QueryRowContext(ctx, `
		UPDATE kyc_applications SET`+setClause+`
		WHERE id = $8 AND version = $9
		RETURNING `+applicationColumns, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrStaleVersion
		}
		return nil, fmt.Errorf("compare and set application: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) UpdateWhere(ctx context.Context, f models.Filter, m models.Mutation) (int, error) {
	args := mutationArgs(m)
	where, args := filterClause(f, args)
	result, err := s.db.ExecContext(ctx, `UPDATE kyc_applications SET`+setClause+where, args...)
	if err != nil {
		return 0, fmt.Errorf("update applications: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update applications rows affected: %w", err)
	}
	return int(n), nil
}

// Delete removes the application; its provider payload goes with it through
// ON DELETE CASCADE.
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM kyc_applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete application rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func mutationArgs(m models.Mutation) []any {
	var decision string
	if m.Decision != nil {
		decision = string(*m.Decision)
	}
	ids := m.KYCIDs
	if ids == nil {
		ids = []string{}
	}
	var at sql.NullTime
	if !m.At.IsZero() {
		at = sql.NullTime{Time: m.At, Valid: true}
	}
	return []any{string(m.Status), m.Decision != nil, decision, m.ReplaceKYCIDs, pq.Array(ids), m.RetryIncrement, at}
}

func filterClause(f models.Filter, args []any) (string, []any) {
	var conds []string
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		conds = append(conds, "status = "+next(string(f.Status)))
	}
	if len(f.ExcludeStatuses) > 0 {
		excluded := make([]string, len(f.ExcludeStatuses))
		for i, st := range f.ExcludeStatuses {
			excluded[i] = string(st)
		}
		conds = append(conds, "NOT (status = ANY("+next(pq.Array(excluded))+"::text[]))")
	}
	if !f.UpdatedBefore.IsZero() {
		conds = append(conds, "updated_at < "+next(f.UpdatedBefore))
	}
	if f.RetryAtLeast > 0 {
		conds = append(conds, "retry_count >= "+next(f.RetryAtLeast))
	}
	if f.ApprovalPath != nil {
		if *f.ApprovalPath {
			conds = append(conds, approvalPathPredicate)
		} else {
			conds = append(conds, "NOT "+approvalPathPredicate)
		}
	}
	if len(conds) == 0 {
		return "", args
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(row scanner) (*models.Application, error) {
	var (
		app      models.Application
		ids      pq.StringArray
		status   string
		decision string
	)
	if err := row.Scan(
		&app.ID, &app.UserUUID, &app.UserName, &app.EthereumWallet, &ids, &status, &decision,
		&app.RetryCount, &app.RequestOrigin, &app.Version, &app.CreatedAt, &app.UpdatedAt,
	); err != nil {
		return nil, err
	}
	app.KYCIDs = []string(ids)
	if app.KYCIDs == nil {
		app.KYCIDs = []string{}
	}
	app.Status = models.Status(status)
	app.Decision = models.Decision(decision)
	return &app, nil
}
