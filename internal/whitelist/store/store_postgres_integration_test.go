//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycgate/internal/whitelist/models"
	"kycgate/internal/whitelist/store"
	"kycgate/pkg/platform/sentinel"
	"kycgate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "whitelist_buffer"))
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStoreSuite) add(wallet, kycID string, at time.Time) *models.Entry {
	e := models.NewEntry(wallet, kycID, at)
	s.Require().NoError(s.store.Create(context.Background(), e))
	return e
}

func (s *PostgresStoreSuite) TestUniqueWallet() {
	s.add("0xaaa", "k1", s.now)
	err := s.store.Create(context.Background(), models.NewEntry("0xaaa", "k1", s.now))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	n, err := s.store.Count(context.Background())
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *PostgresStoreSuite) TestClaimAndRevert() {
	ctx := context.Background()
	e := s.add("0x1", "k1", s.now)

	claimed, err := s.store.CompareAndSet(ctx, e.ID, e.Version, models.Mutation{Status: models.StatusProcessing, At: s.now})
	s.Require().NoError(err)
	s.Equal(models.StatusProcessing, claimed.Status)

	_, err = s.store.CompareAndSet(ctx, e.ID, e.Version, models.Mutation{Status: models.StatusProcessing})
	s.ErrorIs(err, sentinel.ErrStaleVersion)

	reverted, err := s.store.CompareAndSet(ctx, e.ID, claimed.Version,
		models.Mutation{Status: models.StatusUnprocessed, RetryIncrement: 1, At: s.now})
	s.Require().NoError(err)
	s.Equal(1, reverted.RetryCount)
	s.Equal(models.StatusUnprocessed, reverted.Status)
}

func (s *PostgresStoreSuite) TestResetSweepOnlyTouchesStale() {
	ctx := context.Background()
	stale := s.add("0x1", "k1", s.now)
	fresh := s.add("0x2", "k2", s.now)
	_, err := s.store.UpdateWhere(ctx, models.Filter{}, models.Mutation{RetryIncrement: 7, At: s.now.Add(-48 * time.Hour)})
	s.Require().NoError(err)
	_, err = s.store.CompareAndSet(ctx, fresh.ID, fresh.Version+1, models.Mutation{At: s.now})
	s.Require().NoError(err)

	n, err := s.store.UpdateWhere(ctx,
		models.Filter{Status: models.StatusUnprocessed, RetryAtLeast: 5, UpdatedBefore: s.now.Add(-24 * time.Hour)},
		models.Mutation{ResetRetries: true, At: s.now})
	s.Require().NoError(err)
	s.Equal(1, n)

	got, err := s.store.FindByPair(ctx, stale.EthereumWallet, stale.KYCID)
	s.Require().NoError(err)
	s.Zero(got.RetryCount)
	got, err = s.store.FindByPair(ctx, fresh.EthereumWallet, fresh.KYCID)
	s.Require().NoError(err)
	s.Equal(7, got.RetryCount)
}

func (s *PostgresStoreSuite) TestFindEligibleLimitAndDelete() {
	ctx := context.Background()
	first := s.add("0x1", "k1", s.now.Add(-time.Minute))
	s.add("0x2", "k2", s.now)

	got, err := s.store.FindEligible(ctx, models.StatusUnprocessed, 5, 1)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(first.ID, got[0].ID)

	s.Require().NoError(s.store.Delete(ctx, first.ID))
	s.ErrorIs(s.store.Delete(ctx, first.ID), sentinel.ErrNotFound)
}
