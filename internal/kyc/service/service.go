// Package service owns the KYC application state machine.
//
// Every job function is safe to run repeatedly and concurrently, within one
// process or across many: records are taken with version-checked claims, and
// the only unconditional writes are the threshold sweeps.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"kycgate/internal/events"
	"kycgate/internal/kyc/metrics"
	"kycgate/internal/kyc/models"
	"kycgate/internal/platform/config"
	"kycgate/internal/provider"
	"kycgate/internal/users"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/sentinel"
	"kycgate/pkg/requestcontext"
)

// ApplicationStore persists KYC applications. CompareAndSet returns
// sentinel.ErrStaleVersion when the stored version moved on.
type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	FindEligible(ctx context.Context, status models.Status, retryBelow, limit int) ([]*models.Application, error)
	FindByReference(ctx context.Context, ref string, status models.Status) (*models.Application, error)
	CompareAndSet(ctx context.Context, id uuid.UUID, version int64, m models.Mutation) (*models.Application, error)
	UpdateWhere(ctx context.Context, f models.Filter, m models.Mutation) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// VerificationProvider is the identity verification vendor. ProcessKYC
// returns one result per applicant, in input order.
type VerificationProvider interface {
	ValidateKYCData(raw json.RawMessage) error
	PersistKYCData(ctx context.Context, app *models.Application, raw json.RawMessage) error
	RemoveKYCData(ctx context.Context, applicationID uuid.UUID) error
	ProcessKYC(ctx context.Context, apps []*models.Application) []provider.Result
	IsUserApprovedBasedOnScore(app *models.Application, score float64) bool
}

type UserDirectory interface {
	GetByUUID(ctx context.Context, uuid string) (*users.User, error)
	UpdateKYCStatus(ctx context.Context, uuid string, approved bool) error
}

type Notifier interface {
	SendKYCSuccess(ctx context.Context, u *users.User) error
	SendKYCFailure(ctx context.Context, u *users.User) error
}

// WhitelistQueue buffers approved wallets for the chain.
type WhitelistQueue interface {
	Add(ctx context.Context, wallet, kycID string) error
}

// Budget caps provider submissions across all workers. Reserve grants at
// most n slots.
type Budget interface {
	Reserve(ctx context.Context, n int) (int, error)
}

// Job names, used for logs, metrics and the scheduler registry.
const (
	JobProcessApplicants            = "process_applicants"
	JobProcessApproved              = "process_approved"
	JobProcessFailed                = "process_failed"
	JobProcessCompleted             = "process_completed"
	JobRejectFailedRecords          = "reject_failed_records"
	JobResetStalledInProcessing     = "reset_stalled_processing"
	JobResetStalledInProcessingDocs = "reset_stalled_processing_docs"
	JobResetStalledInNotifying      = "reset_stalled_notifying"
)

// unboundedRetries is the retry ceiling for statuses whose records always
// have one transition left regardless of how often they failed before.
const unboundedRetries = 999

type Service struct {
	apps      ApplicationStore
	provider  VerificationProvider
	users     UserDirectory
	notifier  Notifier
	whitelist WhitelistQueue
	budget    Budget
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer

	retryLimit     int
	staleThreshold time.Duration
	concurrency    int
	batchSize      int
	now            func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithBudget shares the provider rate limit with other workers. Without it
// each run submits at most the batch size.
func WithBudget(b Budget) Option {
	return func(s *Service) {
		s.budget = b
	}
}

// WithBatchSize bounds how many unprocessed applicants one run submits.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(
	apps ApplicationStore,
	verifier VerificationProvider,
	directory UserDirectory,
	notifier Notifier,
	whitelist WhitelistQueue,
	cfg config.Lifecycle,
	opts ...Option,
) *Service {
	s := &Service{
		apps:           apps,
		provider:       verifier,
		users:          directory,
		notifier:       notifier,
		whitelist:      whitelist,
		publisher:      events.NoopPublisher{},
		logger:         slog.Default(),
		tracer:         otel.Tracer("kycgate/kyc"),
		retryLimit:     cfg.RetryLimit,
		staleThreshold: cfg.StaleThreshold,
		concurrency:    cfg.Concurrency,
		batchSize:      2,
		now:            time.Now,
	}
	if s.concurrency <= 0 {
		s.concurrency = 16
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// storeError translates store sentinels into coded errors.
func storeError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrStaleVersion):
		return dErrors.Wrap(err, dErrors.CodeConflict, msg+": record changed concurrently")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, msg+": record not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	e.OccurredAt = s.now()
	e.JobID = requestcontext.JobID(ctx)
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to publish lifecycle event", "type", e.Type, "application_id", e.ApplicationID, "error", err)
	}
}

func appEvent(t events.Type, app *models.Application) events.Event {
	return events.Event{
		Type:          t,
		ApplicationID: app.ID.String(),
		UserUUID:      app.UserUUID,
		Status:        string(app.Status),
	}
}
