package main

import (
	"context"
	"errors"

	"kycgate/internal/kyc/models"
	"kycgate/internal/kyc/service"
	"kycgate/internal/platform/config"
	"kycgate/internal/scheduler"
)

// Job names that only exist at the scheduler level.
const (
	jobFlushWhitelist = "flush_whitelist"
	jobResetWhitelist = "reset_whitelist"
	jobProcessResults = "process_results"
	jobResetStalled   = "reset_stalled"
)

type reportFunc func(ctx context.Context) (*models.JobReport, error)

// lifecycleJobs is the subset of the KYC service the scheduler drives.
type lifecycleJobs interface {
	ProcessKYCApplicants(ctx context.Context) (*models.JobReport, error)
	ProcessApprovedKYCApplicants(ctx context.Context) (*models.JobReport, error)
	ProcessFailedKYCApplicants(ctx context.Context) (*models.JobReport, error)
	ProcessCompletedApplicants(ctx context.Context) (*models.JobReport, error)
	RejectFailedRecords(ctx context.Context) (*models.JobReport, error)
	ResetStalledInProcessing(ctx context.Context) (*models.JobReport, error)
	ResetStalledInProcessingDocs(ctx context.Context) (*models.JobReport, error)
	ResetStalledInNotifying(ctx context.Context) (*models.JobReport, error)
}

type whitelistJobs interface {
	Flush(ctx context.Context) (int, error)
	ResetOldRecords(ctx context.Context) (int, error)
}

type jobDef struct {
	name string
	spec string
	run  scheduler.JobFunc
}

// jobTable lists every job. Grouped jobs carry the cron spec; the single
// lifecycle steps they are made of are registered without one so `run` can
// still target them.
func jobTable(kyc lifecycleJobs, wl whitelistJobs, sched config.Schedule) []jobDef {
	return []jobDef{
		{jobFlushWhitelist, sched.FlushWhitelist, counted(wl.Flush)},
		{jobResetWhitelist, sched.ResetWhitelist, counted(wl.ResetOldRecords)},
		{service.JobProcessApplicants, sched.ProcessApplicants, reported(kyc.ProcessKYCApplicants)},
		{jobProcessResults, sched.ProcessResults, sequence(
			kyc.ProcessApprovedKYCApplicants,
			kyc.ProcessFailedKYCApplicants,
			kyc.ProcessCompletedApplicants,
		)},
		{jobResetStalled, sched.ResetStalled, sequence(
			kyc.ResetStalledInProcessing,
			kyc.ResetStalledInProcessingDocs,
			kyc.ResetStalledInNotifying,
		)},
		{service.JobRejectFailedRecords, sched.RejectFailedRecords, reported(kyc.RejectFailedRecords)},

		{service.JobProcessApproved, "", reported(kyc.ProcessApprovedKYCApplicants)},
		{service.JobProcessFailed, "", reported(kyc.ProcessFailedKYCApplicants)},
		{service.JobProcessCompleted, "", reported(kyc.ProcessCompletedApplicants)},
		{service.JobResetStalledInProcessing, "", reported(kyc.ResetStalledInProcessing)},
		{service.JobResetStalledInProcessingDocs, "", reported(kyc.ResetStalledInProcessingDocs)},
		{service.JobResetStalledInNotifying, "", reported(kyc.ResetStalledInNotifying)},
	}
}

func registerJobs(s *scheduler.Scheduler, jobs []jobDef) error {
	for _, j := range jobs {
		if err := s.Register(j.name, j.spec, j.run); err != nil {
			return err
		}
	}
	return nil
}

// reported drops the report; per-record failures are logged by the service
// and only a job level error fails the run.
func reported(fn reportFunc) scheduler.JobFunc {
	return func(ctx context.Context) error {
		_, err := fn(ctx)
		return err
	}
}

func counted(fn func(context.Context) (int, error)) scheduler.JobFunc {
	return func(ctx context.Context) error {
		_, err := fn(ctx)
		return err
	}
}

// sequence runs every step even when an earlier one fails.
func sequence(steps ...reportFunc) scheduler.JobFunc {
	return func(ctx context.Context) error {
		var errs []error
		for _, step := range steps {
			if _, err := step(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
