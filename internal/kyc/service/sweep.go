package service

import (
	"context"
	"errors"

	"kycgate/internal/kyc/models"
)

// RejectFailedRecords moves every application that reached the retry limit
// to processing_failed and bumps its retry count. Records already failed or
// complete are left alone. This is an unconditional sweep, not a claim.
func (s *Service) RejectFailedRecords(ctx context.Context) (*models.JobReport, error) {
	ctx, report, done := s.startJob(ctx, JobRejectFailedRecords)
	err := s.sweep(ctx, report, "reject failed kyc applications",
		models.Filter{
			RetryAtLeast:    s.retryLimit,
			ExcludeStatuses: []models.Status{models.StatusProcessingFailed, models.StatusProcessingComplete},
		},
		models.Mutation{
			Status:         models.StatusProcessingFailed,
			Decision:       models.DecisionPtr(models.DecisionRejected),
			RetryIncrement: 1,
			At:             s.now(),
		})
	done(err)
	return report, err
}

// ResetStalledInProcessing returns applications stuck in processing past the
// stale threshold to unprocessed with one more retry.
func (s *Service) ResetStalledInProcessing(ctx context.Context) (*models.JobReport, error) {
	ctx, report, done := s.startJob(ctx, JobResetStalledInProcessing)
	now, cutoff := s.cutoff()
	err := s.sweep(ctx, report, "reset stalled processing kyc applications",
		models.Filter{Status: models.StatusProcessing, UpdatedBefore: cutoff},
		models.Mutation{Status: models.StatusUnprocessed, RetryIncrement: 1, At: now})
	done(err)
	return report, err
}

// ResetStalledInProcessingDocs restarts applications whose document callback
// never arrived. A provider registration cannot be resumed, so the reference
// ids are cleared and the record goes back to unprocessed.
func (s *Service) ResetStalledInProcessingDocs(ctx context.Context) (*models.JobReport, error) {
	ctx, report, done := s.startJob(ctx, JobResetStalledInProcessingDocs)
	now, cutoff := s.cutoff()
	err := s.sweep(ctx, report, "reset stalled processing_docs kyc applications",
		models.Filter{Status: models.StatusProcessingDocs, UpdatedBefore: cutoff},
		models.Mutation{
			Status:         models.StatusUnprocessed,
			Decision:       models.DecisionPtr(models.DecisionNone),
			ReplaceKYCIDs:  true,
			KYCIDs:         []string{},
			RetryIncrement: 1,
			At:             now,
		})
	done(err)
	return report, err
}

// ResetStalledInNotifying sends applications stuck in notifying_user back to
// the status they were notified from: approvals to kyc_approved, everything
// else to kyc_rejected.
func (s *Service) ResetStalledInNotifying(ctx context.Context) (*models.JobReport, error) {
	ctx, report, done := s.startJob(ctx, JobResetStalledInNotifying)
	now, cutoff := s.cutoff()
	approved, rejected := true, false

	errApproved := s.sweep(ctx, report, "reset stalled approved kyc notifications",
		models.Filter{Status: models.StatusNotifyingUser, UpdatedBefore: cutoff, ApprovalPath: &approved},
		models.Mutation{Status: models.StatusApproved, RetryIncrement: 1, At: now})
	errRejected := s.sweep(ctx, report, "reset stalled rejected kyc notifications",
		models.Filter{Status: models.StatusNotifyingUser, UpdatedBefore: cutoff, ApprovalPath: &rejected},
		models.Mutation{Status: models.StatusRejected, RetryIncrement: 1, At: now})

	err := errors.Join(errApproved, errRejected)
	done(err)
	return report, err
}

func (s *Service) sweep(ctx context.Context, report *models.JobReport, what string, f models.Filter, m models.Mutation) error {
	n, err := s.apps.UpdateWhere(ctx, f, m)
	if err != nil {
		return storeError(err, "failed to "+what)
	}
	report.Updated += n
	if n > 0 {
		s.logger.InfoContext(ctx, "swept kyc applications", "job", report.Job, "sweep", what, "count", n)
	}
	return nil
}
