// Package service buffers approved wallets and submits them to the chain in
// batches. Approval and on-chain whitelisting are decoupled so a slow or
// failing chain never holds up the KYC lifecycle.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"kycgate/internal/events"
	"kycgate/internal/platform/config"
	"kycgate/internal/whitelist/metrics"
	"kycgate/internal/whitelist/models"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/sentinel"
	"kycgate/pkg/requestcontext"
)

// Store is the whitelist buffer persistence contract.
type Store interface {
	Create(ctx context.Context, e *models.Entry) error
	FindByPair(ctx context.Context, wallet, kycID string) (*models.Entry, error)
	FindEligible(ctx context.Context, status models.Status, retryBelow, limit int) ([]*models.Entry, error)
	CompareAndSet(ctx context.Context, id uuid.UUID, version int64, m models.Mutation) (*models.Entry, error)
	UpdateWhere(ctx context.Context, f models.Filter, m models.Mutation) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Whitelister submits one all-or-nothing batch to the chain.
type Whitelister interface {
	WhitelistMany(ctx context.Context, wallets, kycIDs []string) (string, error)
}

type Service struct {
	store          Store
	chain          Whitelister
	publisher      events.Publisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	retryLimit     int
	staleThreshold time.Duration
	maxBatch       int
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

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, chain Whitelister, cfg config.Whitelist, opts ...Option) *Service {
	s := &Service{
		store:          store,
		chain:          chain,
		publisher:      events.NoopPublisher{},
		logger:         slog.Default(),
		retryLimit:     cfg.RetryLimit,
		staleThreshold: cfg.StaleThreshold,
		maxBatch:       cfg.MaxBatch,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add buffers a wallet for whitelisting. A pair or wallet already buffered is
// a conflict.
func (s *Service) Add(ctx context.Context, wallet, kycID string) error {
	wallet, kycID = strings.TrimSpace(wallet), strings.TrimSpace(kycID)
	if wallet == "" || kycID == "" {
		return dErrors.New(dErrors.CodeValidation, "ethereum wallet and kyc id are required")
	}

	if _, err := s.store.FindByPair(ctx, wallet, kycID); err == nil {
		s.metrics.IncrementEnqueued("duplicate")
		return dErrors.New(dErrors.CodeConflict, "the specified ethereum wallet/kyc id pair already exists")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.ErrorContext(ctx, "failed to check for duplicate whitelist request", "error", err)
	}

	if err := s.store.Create(ctx, models.NewEntry(wallet, kycID, s.now())); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.metrics.IncrementEnqueued("duplicate")
			return dErrors.New(dErrors.CodeConflict, "ethereum wallet is already queued for whitelisting")
		}
		s.metrics.IncrementEnqueued("error")
		s.logger.ErrorContext(ctx, "failed to store whitelist request", "error", err)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store whitelist request")
	}
	s.metrics.IncrementEnqueued("ok")
	return nil
}

// Flush claims up to one batch of unprocessed entries and submits them in a
// single call. On success the entries are removed; on failure every claimed
// entry goes back to unprocessed with one more retry and the error is
// returned. It returns how many entries were whitelisted.
func (s *Service) Flush(ctx context.Context) (int, error) {
	candidates, err := s.store.FindEligible(ctx, models.StatusUnprocessed, s.retryLimit, s.maxBatch)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to retrieve buffered whitelist requests")
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	claimed := s.claim(ctx, candidates)
	s.logger.DebugContext(ctx, "claimed whitelist requests", "claimed", len(claimed), "candidates", len(candidates))
	if len(claimed) == 0 {
		return 0, nil
	}

	wallets := make([]string, len(claimed))
	kycIDs := make([]string, len(claimed))
	for i, e := range claimed {
		wallets[i] = e.EthereumWallet
		kycIDs[i] = e.KYCID
	}

	txHash, err := s.chain.WhitelistMany(ctx, wallets, kycIDs)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to whitelist buffered requests, reverting", "count", len(claimed), "error", err)
		s.revert(ctx, claimed)
		s.metrics.ObserveFlush(len(claimed), err)
		s.publish(ctx, events.Event{Type: events.TypeFlushFailed, Count: len(claimed)})
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to whitelist buffered requests")
	}

	for _, e := range claimed {
		if err := s.store.Delete(ctx, e.ID); err != nil {
			s.logger.ErrorContext(ctx, "failed to remove processed whitelist request", "entry_id", e.ID, "error", err)
		}
	}
	s.logger.InfoContext(ctx, "whitelisted buffered requests", "count", len(claimed), "tx_hash", txHash)
	s.metrics.ObserveFlush(len(claimed), nil)
	s.publish(ctx, events.Event{Type: events.TypeWhitelisted, Count: len(claimed)})
	return len(claimed), nil
}

func (s *Service) claim(ctx context.Context, candidates []*models.Entry) []*models.Entry {
	var claimed []*models.Entry
	for _, e := range candidates {
		updated, err := s.store.CompareAndSet(ctx, e.ID, e.Version,
			models.Mutation{Status: models.StatusProcessing, At: s.now()})
		if err != nil {
			if !errors.Is(err, sentinel.ErrStaleVersion) {
				s.logger.ErrorContext(ctx, "failed to claim whitelist request", "entry_id", e.ID, "error", err)
			}
			continue
		}
		claimed = append(claimed, updated)
	}
	return claimed
}

func (s *Service) revert(ctx context.Context, claimed []*models.Entry) {
	for _, e := range claimed {
		_, err := s.store.CompareAndSet(ctx, e.ID, e.Version,
			models.Mutation{Status: models.StatusUnprocessed, RetryIncrement: 1, At: s.now()})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to revert whitelist request", "entry_id", e.ID, "error", err)
		}
	}
}

// ResetOldRecords runs two independent sweeps over entries untouched for the
// stale threshold: stuck processing entries go back to unprocessed, and
// exhausted unprocessed entries get their retries back. Whitelist entries
// have no terminal failure state.
func (s *Service) ResetOldRecords(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := now.Add(-s.staleThreshold)

	stuck, errStuck := s.store.UpdateWhere(ctx,
		models.Filter{Status: models.StatusProcessing, UpdatedBefore: cutoff},
		models.Mutation{Status: models.StatusUnprocessed, ResetRetries: true, At: now})
	if errStuck != nil {
		s.logger.ErrorContext(ctx, "failed to reset stuck whitelist requests", "error", errStuck)
	}

	exhausted, errExhausted := s.store.UpdateWhere(ctx,
		models.Filter{Status: models.StatusUnprocessed, RetryAtLeast: s.retryLimit, UpdatedBefore: cutoff},
		models.Mutation{ResetRetries: true, At: now})
	if errExhausted != nil {
		s.logger.ErrorContext(ctx, "failed to reset exhausted whitelist requests", "error", errExhausted)
	}

	total := stuck + exhausted
	s.metrics.AddReset(total)
	if total > 0 {
		s.logger.InfoContext(ctx, "reset old whitelist requests", "processing", stuck, "exhausted", exhausted)
	}
	if err := errors.Join(errStuck, errExhausted); err != nil {
		return total, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset old whitelist requests")
	}
	return total, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	e.OccurredAt = s.now()
	e.JobID = requestcontext.JobID(ctx)
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to publish whitelist event", "type", e.Type, "error", err)
	}
}
