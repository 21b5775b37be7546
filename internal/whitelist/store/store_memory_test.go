package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycgate/internal/whitelist/models"
	"kycgate/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) add(wallet, kycID string, at time.Time) *models.Entry {
	e := models.NewEntry(wallet, kycID, at)
	s.Require().NoError(s.store.Create(context.Background(), e))
	return e
}

func (s *InMemoryStoreSuite) TestCreateRejectsDuplicateWallet() {
	ctx := context.Background()
	s.add("0xaaa", "k1", s.now)

	err := s.store.Create(ctx, models.NewEntry("0xaaa", "k2", s.now))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	n, _ := s.store.Count(ctx)
	s.Equal(1, n)

	found, err := s.store.FindByPair(ctx, "0xaaa", "k1")
	s.Require().NoError(err)
	s.Equal("k1", found.KYCID)

	_, err = s.store.FindByPair(ctx, "0xaaa", "k2")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestFindEligible() {
	ctx := context.Background()
	old := s.add("0x1", "k1", s.now.Add(-time.Hour))
	s.add("0x2", "k2", s.now)
	exhausted := s.add("0x3", "k3", s.now)
	_, err := s.store.CompareAndSet(ctx, exhausted.ID, exhausted.Version, models.Mutation{RetryIncrement: 5})
	s.Require().NoError(err)

	got, err := s.store.FindEligible(ctx, models.StatusUnprocessed, 5, 0)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(old.ID, got[0].ID)

	got, _ = s.store.FindEligible(ctx, models.StatusUnprocessed, 5, 1)
	s.Len(got, 1)
}

func (s *InMemoryStoreSuite) TestCompareAndSetSingleWinner() {
	e := s.add("0x1", "k1", s.now)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.CompareAndSet(context.Background(), e.ID, e.Version,
				models.Mutation{Status: models.StatusProcessing})
			if err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
}

func (s *InMemoryStoreSuite) TestDelete() {
	ctx := context.Background()
	e := s.add("0x1", "k1", s.now)
	s.Require().NoError(s.store.Delete(ctx, e.ID))
	s.ErrorIs(s.store.Delete(ctx, e.ID), sentinel.ErrNotFound)
}
