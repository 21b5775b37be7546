//go:build integration

package ratebudget_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycgate/internal/provider/ratebudget"
	"kycgate/pkg/testutil/containers"
)

type RedisBudgetSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisBudgetSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBudgetSuite))
}

func (s *RedisBudgetSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisBudgetSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisBudgetSuite) TestClientReportsHealthy() {
	s.NoError(s.redis.Client.Health(context.Background()))
	s.Equal(8, s.redis.Client.Options().PoolSize)
}

func (s *RedisBudgetSuite) TestSharedAcrossInstances() {
	ctx := context.Background()
	workerA := ratebudget.NewRedis(s.redis.Client.Client, 4, time.Minute)
	workerB := ratebudget.NewRedis(s.redis.Client.Client, 4, time.Minute)

	granted, err := workerA.Reserve(ctx, 3)
	s.Require().NoError(err)
	s.Equal(3, granted)

	granted, err = workerB.Reserve(ctx, 3)
	s.Require().NoError(err)
	s.Equal(1, granted, "second process sees the first one's usage")

	granted, err = workerA.Reserve(ctx, 1)
	s.Require().NoError(err)
	s.Zero(granted)
}

func (s *RedisBudgetSuite) TestConcurrentReservationsNeverOvershoot() {
	ctx := context.Background()
	budget := ratebudget.NewRedis(s.redis.Client.Client, 10, time.Minute)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := budget.Reserve(ctx, 2)
			s.NoError(err)
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.LessOrEqual(total, 10)
	s.Positive(total)
}
