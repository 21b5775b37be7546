// Package scheduler triggers the batch jobs on cron schedules and runs them
// one-off from the command line.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"kycgate/internal/platform/metrics"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/requestcontext"
)

// JobFunc is one zero-argument batch job.
type JobFunc func(ctx context.Context) error

type job struct {
	name    string
	spec    string
	run     JobFunc
	running atomic.Bool
}

// Scheduler runs registered jobs with a correlation id, a timeout, a span
// and panic recovery. A cron tick is skipped while the previous run of the
// same job is still going in this process; other processes are unaffected.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[string]*job
	order   []string
	cron    *cron.Cron
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// New creates a scheduler. timeout bounds every run; zero means no bound.
func New(timeout time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs:    make(map[string]*job),
		cron:    cron.NewWithLocation(time.UTC),
		timeout: timeout,
		logger:  slog.Default(),
		tracer:  otel.Tracer("kycgate/scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a job. spec uses the six field cron syntax with seconds
// first, or a descriptor such as "@every 5m". An empty spec registers the
// job for RunOnce only.
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("job name and func are required")
	}
	var schedule cron.Schedule
	if spec != "" {
		parsed, err := cron.Parse(spec)
		if err != nil {
			return fmt.Errorf("job %s: invalid schedule %q: %w", name, spec, err)
		}
		schedule = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}
	j := &job{name: name, spec: spec, run: fn}
	s.jobs[name] = j
	s.order = append(s.order, name)
	if schedule != nil {
		s.cron.Schedule(schedule, cron.FuncJob(func() { s.fire(context.Background(), j) }))
	}
	return nil
}

// Jobs lists registered job names in registration order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// Start runs the cron loop until ctx is cancelled. Runs in flight when ctx
// ends are allowed to finish.
func (s *Scheduler) Start(ctx context.Context) {
	for _, name := range s.Jobs() {
		s.mu.Lock()
		spec := s.jobs[name].spec
		s.mu.Unlock()
		if spec != "" {
			s.logger.InfoContext(ctx, "job scheduled", "job", name, "schedule", spec)
		}
	}
	s.cron.Start()
	<-ctx.Done()
	s.cron.Stop()
	s.logger.InfoContext(ctx, "scheduler stopped")
}

// RunOnce runs one job immediately and returns its error.
func (s *Scheduler) RunOnce(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("unknown job %q", name))
	}
	return s.execute(ctx, j)
}

// fire is the cron entry point.
func (s *Scheduler) fire(ctx context.Context, j *job) {
	if !j.running.CompareAndSwap(false, true) {
		s.logger.WarnContext(ctx, "previous run still in progress, skipping tick", "job", j.name)
		s.metrics.JobSkipped(j.name)
		return
	}
	defer j.running.Store(false)
	_ = s.execute(ctx, j)
}

func (s *Scheduler) execute(ctx context.Context, j *job) (err error) {
	jobID := uuid.NewString()
	ctx = requestcontext.WithJobID(ctx, jobID)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ctx, span := s.tracer.Start(ctx, "job."+j.name, trace.WithAttributes(
		attribute.String("job.name", j.name),
		attribute.String("job.id", jobID),
	))
	start := time.Now()
	s.metrics.JobStarted(j.name)

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(ctx, "panic in job",
				"job", j.name,
				"job_id", jobID,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			err = dErrors.New(dErrors.CodeInternal, fmt.Sprintf("job %s panicked: %v", j.name, rec))
			s.finish(ctx, span, j.name, "panic", start, err)
			return
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.finish(ctx, span, j.name, outcome, start, err)
	}()

	s.logger.InfoContext(ctx, ">>> job starting", "job", j.name, "job_id", jobID)
	return j.run(ctx)
}

func (s *Scheduler) finish(ctx context.Context, span trace.Span, name, outcome string, start time.Time, err error) {
	elapsed := time.Since(start)
	s.metrics.JobFinished(name)
	s.metrics.ObserveJob(name, outcome, elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, ">>> job failed", "job", name, "job_id", requestcontext.JobID(ctx),
			"duration_ms", elapsed.Milliseconds(), "error", err)
	} else {
		s.logger.InfoContext(ctx, ">>> job done", "job", name, "job_id", requestcontext.JobID(ctx),
			"duration_ms", elapsed.Milliseconds())
	}
	span.End()
}
