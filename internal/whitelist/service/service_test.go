package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"kycgate/internal/events"
	"kycgate/internal/platform/config"
	"kycgate/internal/whitelist/metrics"
	"kycgate/internal/whitelist/models"
	"kycgate/internal/whitelist/store"
	dErrors "kycgate/pkg/domain-errors"
)

type fakeChain struct {
	mu      sync.Mutex
	err     error
	batches [][]string
	ids     [][]string
}

func (c *fakeChain) WhitelistMany(_ context.Context, wallets, kycIDs []string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, wallets)
	c.ids = append(c.ids, kycIDs)
	if c.err != nil {
		return "", c.err
	}
	return "0xabc", nil
}

type ServiceSuite struct {
	suite.Suite
	store     *store.InMemoryStore
	chain     *fakeChain
	publisher *events.MemoryPublisher
	service   *Service
	now       time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.chain = &fakeChain{}
	s.publisher = events.NewMemoryPublisher()
	s.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.service = New(s.store, s.chain,
		config.Whitelist{RetryLimit: 5, StaleThreshold: 24 * time.Hour, MaxBatch: 3},
		WithPublisher(s.publisher),
		WithMetrics(metrics.NewWithRegisterer(prometheus.NewRegistry())),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *ServiceSuite) entries() []*models.Entry {
	all, err := s.store.FindEligible(context.Background(), models.StatusUnprocessed, 1<<30, 0)
	s.Require().NoError(err)
	processing, err := s.store.FindEligible(context.Background(), models.StatusProcessing, 1<<30, 0)
	s.Require().NoError(err)
	return append(all, processing...)
}

// =============================================================================
// Add
// =============================================================================

func (s *ServiceSuite) TestAdd() {
	ctx := context.Background()

	s.Run("duplicate pair leaves one entry", func() {
		s.Require().NoError(s.service.Add(ctx, "0x1", "k1"))
		err := s.service.Add(ctx, "0x1", "k1")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Len(s.entries(), 1)
	})

	s.Run("same wallet with another id conflicts", func() {
		err := s.service.Add(ctx, "0x1", "k2")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Len(s.entries(), 1)
	})

	s.Run("blank input", func() {
		err := s.service.Add(ctx, " ", "k3")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// =============================================================================
// Flush
// =============================================================================

func (s *ServiceSuite) TestFlushSuccessDeletesClaimed() {
	ctx := context.Background()
	s.Require().NoError(s.service.Add(ctx, "0x1", "k1"))
	s.Require().NoError(s.service.Add(ctx, "0x2", "k2"))

	n, err := s.service.Flush(ctx)

	s.Require().NoError(err)
	s.Equal(2, n)
	s.Require().Len(s.chain.batches, 1)
	s.ElementsMatch([]string{"0x1", "0x2"}, s.chain.batches[0])
	for i, w := range s.chain.batches[0] {
		s.Equal("k"+w[len(w)-1:], s.chain.ids[0][i], "wallets and ids stay index aligned")
	}
	s.Empty(s.entries())
	s.Len(s.publisher.OfType(events.TypeWhitelisted), 1)
}

func (s *ServiceSuite) TestFlushFailureRevertsAll() {
	ctx := context.Background()
	s.Require().NoError(s.service.Add(ctx, "0x1", "k1"))
	s.Require().NoError(s.service.Add(ctx, "0x2", "k2"))
	s.chain.err = errors.New("transaction reverted")

	n, err := s.service.Flush(ctx)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Zero(n)
	entries := s.entries()
	s.Require().Len(entries, 2, "nothing deleted")
	for _, e := range entries {
		s.Equal(models.StatusUnprocessed, e.Status)
		s.Equal(1, e.RetryCount)
	}
	s.Len(s.publisher.OfType(events.TypeFlushFailed), 1)
}

func (s *ServiceSuite) TestFlushRespectsBatchAndRetryLimit() {
	ctx := context.Background()
	for _, w := range []string{"0x1", "0x2", "0x3", "0x4"} {
		s.Require().NoError(s.service.Add(ctx, w, "k"+w))
	}
	exhausted := models.NewEntry("0x5", "k5", s.now)
	exhausted.RetryCount = 5
	s.Require().NoError(s.store.Create(ctx, exhausted))

	n, err := s.service.Flush(ctx)
	s.Require().NoError(err)
	s.Equal(3, n)

	n, err = s.service.Flush(ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	n, err = s.service.Flush(ctx)
	s.Require().NoError(err)
	s.Zero(n, "exhausted entry is not submitted")
	s.Len(s.chain.batches, 2)
}

func (s *ServiceSuite) TestFlushEmptyBufferSkipsChain() {
	n, err := s.service.Flush(context.Background())
	s.NoError(err)
	s.Zero(n)
	s.Empty(s.chain.batches)
}

// =============================================================================
// ResetOldRecords
// =============================================================================

func (s *ServiceSuite) TestResetOldRecords() {
	ctx := context.Background()
	old := s.now.Add(-48 * time.Hour)

	stuck := models.NewEntry("0x1", "k1", old)
	stuck.Status = models.StatusProcessing
	stuck.RetryCount = 2
	exhausted := models.NewEntry("0x2", "k2", old)
	exhausted.RetryCount = 5
	freshExhausted := models.NewEntry("0x3", "k3", s.now)
	freshExhausted.RetryCount = 5
	freshProcessing := models.NewEntry("0x4", "k4", s.now)
	freshProcessing.Status = models.StatusProcessing
	for _, e := range []*models.Entry{stuck, exhausted, freshExhausted, freshProcessing} {
		s.Require().NoError(s.store.Create(ctx, e))
	}

	n, err := s.service.ResetOldRecords(ctx)

	s.Require().NoError(err)
	s.Equal(2, n)
	got, _ := s.store.FindByPair(ctx, "0x1", "k1")
	s.Equal(models.StatusUnprocessed, got.Status)
	s.Zero(got.RetryCount)
	got, _ = s.store.FindByPair(ctx, "0x2", "k2")
	s.Zero(got.RetryCount)
	got, _ = s.store.FindByPair(ctx, "0x3", "k3")
	s.Equal(5, got.RetryCount, "fresh records untouched")
	got, _ = s.store.FindByPair(ctx, "0x4", "k4")
	s.Equal(models.StatusProcessing, got.Status)
}
