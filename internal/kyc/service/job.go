package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"kycgate/internal/kyc/models"
	"kycgate/pkg/platform/sentinel"
	"kycgate/pkg/requestcontext"
)

// startJob opens a report, a correlation id and a span for one job run. The
// returned func closes all three and must be called exactly once.
func (s *Service) startJob(ctx context.Context, job string) (context.Context, *models.JobReport, func(error)) {
	jobID := requestcontext.JobID(ctx)
	if jobID == "" {
		jobID = uuid.NewString()
		ctx = requestcontext.WithJobID(ctx, jobID)
	}
	ctx, span := s.tracer.Start(ctx, "kyc."+job, trace.WithAttributes(
		attribute.String("job.name", job),
		attribute.String("job.id", jobID),
	))
	report := &models.JobReport{Job: job, JobID: jobID}
	s.logger.DebugContext(ctx, "kyc job starting", "job", job, "job_id", jobID)

	return ctx, report, func(err error) {
		defer span.End()
		failed := report.Failed()
		span.SetAttributes(
			attribute.Int("job.claimed", report.Claimed),
			attribute.Int("job.succeeded", report.Succeeded),
			attribute.Int("job.updated", report.Updated),
			attribute.Int("job.failed", failed),
		)
		for _, re := range report.Errors {
			s.logger.WarnContext(ctx, "kyc record failed", "job", job, "job_id", jobID,
				"application_id", re.ApplicationID, "error", re.Err)
		}

		attrs := []any{"job", job, "job_id", jobID, "claimed", report.Claimed,
			"succeeded", report.Succeeded, "updated", report.Updated, "failed", failed}
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.ErrorContext(ctx, "kyc job failed", append(attrs, "error", err)...)
		case report.Claimed > 0 || report.Updated > 0 || failed > 0:
			s.logger.InfoContext(ctx, "kyc job done", attrs...)
		default:
			s.logger.DebugContext(ctx, "kyc job done", attrs...)
		}
		s.metrics.ObserveReport(job, report.Claimed, report.Updated, failed)
	}
}

// claim moves each candidate to status with a version-checked write. Records
// another worker changed since they were read are skipped; they are picked up
// on a later run if still eligible.
func (s *Service) claim(ctx context.Context, report *models.JobReport, candidates []*models.Application, status models.Status) []*models.Application {
	claimed := make([]*models.Application, 0, len(candidates))
	for _, app := range candidates {
		updated, err := s.apps.CompareAndSet(ctx, app.ID, app.Version, models.Mutation{Status: status, At: s.now()})
		if err != nil {
			if errors.Is(err, sentinel.ErrStaleVersion) {
				s.metrics.IncrementClaimLost(report.Job)
				continue
			}
			report.Fail(app.ID, storeError(err, "failed to claim application"))
			continue
		}
		claimed = append(claimed, updated)
	}
	report.Claimed += len(claimed)
	s.logger.DebugContext(ctx, "claimed kyc applications", "job", report.Job, "status", status,
		"claimed", len(claimed), "candidates", len(candidates))
	return claimed
}

// forEach runs step for every application concurrently, bounded by the
// configured concurrency. A failing record is captured in the report and
// never stops its siblings.
func (s *Service) forEach(ctx context.Context, report *models.JobReport, apps []*models.Application, step func(context.Context, *models.Application) error) {
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, app := range apps {
		g.Go(func() error {
			if err := step(ctx, app); err != nil {
				report.Fail(app.ID, err)
				return nil
			}
			report.Succeed()
			return nil
		})
	}
	_ = g.Wait()
}

// cutoff is the updated_at boundary for stale record sweeps.
func (s *Service) cutoff() (time.Time, time.Time) {
	now := s.now()
	return now, now.Add(-s.staleThreshold)
}
