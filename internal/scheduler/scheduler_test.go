package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"kycgate/internal/platform/metrics"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/requestcontext"
)

type SchedulerSuite struct {
	suite.Suite
	metrics *metrics.Metrics
	sched   *Scheduler
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}

func (s *SchedulerSuite) SetupTest() {
	s.setup()
}

func (s *SchedulerSuite) SetupSubTest() {
	s.setup()
}

func (s *SchedulerSuite) setup() {
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.sched = New(time.Second,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics))
}

func (s *SchedulerSuite) runs(job, outcome string) float64 {
	return promtest.ToFloat64(s.metrics.JobRuns.WithLabelValues(job, outcome))
}

// =============================================================================
// Registration
// =============================================================================

func (s *SchedulerSuite) TestRegister() {
	noop := func(context.Context) error { return nil }

	s.Run("lists jobs in registration order", func() {
		s.Require().NoError(s.sched.Register("b", "@every 1m", noop))
		s.Require().NoError(s.sched.Register("a", "0 0 */6 * * *", noop))
		s.Require().NoError(s.sched.Register("manual", "", noop))
		s.Equal([]string{"b", "a", "manual"}, s.sched.Jobs())
	})

	s.Run("rejects an invalid schedule", func() {
		err := s.sched.Register("bad", "every now and then", noop)
		s.Error(err)
		s.Empty(s.sched.Jobs())
	})

	s.Run("rejects duplicate names", func() {
		s.Require().NoError(s.sched.Register("dup", "@every 1m", noop))
		s.Error(s.sched.Register("dup", "@every 5m", noop))
	})

	s.Run("requires a name and a func", func() {
		s.Error(s.sched.Register("", "@every 1m", noop))
		s.Error(s.sched.Register("nil", "@every 1m", nil))
	})
}

// =============================================================================
// RunOnce
// =============================================================================

func (s *SchedulerSuite) TestRunOnce() {
	s.Run("runs with a job id and records success", func() {
		var seen string
		s.Require().NoError(s.sched.Register("process", "", func(ctx context.Context) error {
			seen = requestcontext.JobID(ctx)
			return nil
		}))

		s.Require().NoError(s.sched.RunOnce(context.Background(), "process"))
		s.NotEmpty(seen)
		s.Equal(1.0, s.runs("process", "ok"))
		s.Equal(0.0, promtest.ToFloat64(s.metrics.JobsInFlight.WithLabelValues("process")))
	})

	s.Run("each run gets a fresh job id", func() {
		var ids []string
		s.Require().NoError(s.sched.Register("process", "", func(ctx context.Context) error {
			ids = append(ids, requestcontext.JobID(ctx))
			return nil
		}))
		s.Require().NoError(s.sched.RunOnce(context.Background(), "process"))
		s.Require().NoError(s.sched.RunOnce(context.Background(), "process"))
		s.Require().Len(ids, 2)
		s.NotEqual(ids[0], ids[1])
	})

	s.Run("returns the job error", func() {
		boom := errors.New("store down")
		s.Require().NoError(s.sched.Register("flush", "", func(context.Context) error { return boom }))

		err := s.sched.RunOnce(context.Background(), "flush")
		s.ErrorIs(err, boom)
		s.Equal(1.0, s.runs("flush", "error"))
	})

	s.Run("recovers a panic as an internal error", func() {
		s.Require().NoError(s.sched.Register("explode", "", func(context.Context) error { panic("nil map") }))

		err := s.sched.RunOnce(context.Background(), "explode")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Equal(1.0, s.runs("explode", "panic"))
	})

	s.Run("bounds the run with the timeout", func() {
		sched := New(20*time.Millisecond, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		s.Require().NoError(sched.Register("slow", "", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}))

		err := sched.RunOnce(context.Background(), "slow")
		s.ErrorIs(err, context.DeadlineExceeded)
	})

	s.Run("unknown job is not found", func() {
		err := s.sched.RunOnce(context.Background(), "nope")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Cron ticks
// =============================================================================

func (s *SchedulerSuite) TestOverlappingTickIsSkipped() {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	s.Require().NoError(s.sched.Register("slow", "", func(context.Context) error {
		calls.Add(1)
		close(started)
		<-release
		return nil
	}))
	j := s.sched.jobs["slow"]

	done := make(chan struct{})
	go func() {
		s.sched.fire(context.Background(), j)
		close(done)
	}()
	<-started

	s.sched.fire(context.Background(), j)
	s.Equal(int32(1), calls.Load())
	s.Equal(1.0, s.runs("slow", "skipped"))

	close(release)
	<-done
	s.Equal(1.0, s.runs("slow", "ok"))
	s.False(j.running.Load())
}

func (s *SchedulerSuite) TestStartFiresScheduledJobs() {
	var calls atomic.Int32
	s.Require().NoError(s.sched.Register("tick", "@every 1s", func(context.Context) error {
		calls.Add(1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.sched.Start(ctx)
		close(stopped)
	}()

	s.Eventually(func() bool { return calls.Load() > 0 }, 3*time.Second, 20*time.Millisecond)
	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		s.Fail("scheduler did not stop")
	}
}
