package service

import (
	"context"
	"errors"

	"kycgate/internal/events"
	"kycgate/internal/kyc/models"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/sentinel"
)

// ProcessApprovedKYCApplicants claims approved applications into
// notifying_user and, per record: buffers the wallet for whitelisting, flips
// the user's approval flag, sends the success email and marks the record
// processing_complete. A record failing any step stays in notifying_user
// until the stalled notifying sweep sends it back to kyc_approved.
func (s *Service) ProcessApprovedKYCApplicants(ctx context.Context) (*models.JobReport, error) {
	ctx, report, done := s.startJob(ctx, JobProcessApproved)
	err := s.notifyBatch(ctx, report, []statusQuery{{models.StatusApproved, s.retryLimit}}, s.completeApproved)
	done(err)
	return report, err
}

// ProcessFailedKYCApplicants claims rejected and failed applications into
// notifying_user, sends the failure email and marks them processing_complete.
func (s *Service) ProcessFailedKYCApplicants(ctx context.Context) (*models.JobReport, error) {
	ctx, report, done := s.startJob(ctx, JobProcessFailed)
	err := s.notifyBatch(ctx, report, []statusQuery{
		{models.StatusRejected, s.retryLimit},
		{models.StatusProcessingFailed, unboundedRetries},
	}, s.completeRejected)
	done(err)
	return report, err
}

type statusQuery struct {
	status     models.Status
	retryBelow int
}

func (s *Service) notifyBatch(ctx context.Context, report *models.JobReport, queries []statusQuery, step func(context.Context, *models.Application) error) error {
	var candidates []*models.Application
	for _, q := range queries {
		found, err := s.apps.FindEligible(ctx, q.status, q.retryBelow, 0)
		if err != nil {
			return storeError(err, "failed to retrieve "+string(q.status)+" kyc applications")
		}
		candidates = append(candidates, found...)
	}
	if len(candidates) == 0 {
		return nil
	}

	claimed := s.claim(ctx, report, candidates, models.StatusNotifyingUser)
	s.forEach(ctx, report, claimed, step)
	return nil
}

func (s *Service) completeApproved(ctx context.Context, app *models.Application) error {
	if len(app.KYCIDs) == 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "approved application has no reference id")
	}

	if err := s.whitelist.Add(ctx, app.EthereumWallet, app.KYCIDs[0]); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeConflict) {
			return dErrors.Wrap(err, dErrors.CodeOf(err), "failed to buffer wallet for whitelisting")
		}
		s.logger.InfoContext(ctx, "wallet already buffered for whitelisting", "application_id", app.ID)
	}

	if err := s.users.UpdateKYCStatus(ctx, app.UserUUID, true); err != nil {
		return storeError(err, "failed to update user kyc status")
	}
	if err := s.notify(ctx, app, true); err != nil {
		return err
	}
	return s.markComplete(ctx, app)
}

func (s *Service) completeRejected(ctx context.Context, app *models.Application) error {
	if err := s.notify(ctx, app, false); err != nil {
		return err
	}
	return s.markComplete(ctx, app)
}

func (s *Service) notify(ctx context.Context, app *models.Application, approved bool) error {
	user, err := s.users.GetByUUID(ctx, app.UserUUID)
	if err != nil {
		return storeError(err, "failed to load user for kyc notification")
	}
	if approved {
		err = s.notifier.SendKYCSuccess(ctx, user)
	} else {
		err = s.notifier.SendKYCFailure(ctx, user)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to send kyc notification")
	}
	return nil
}

func (s *Service) markComplete(ctx context.Context, app *models.Application) error {
	updated, err := s.apps.CompareAndSet(ctx, app.ID, app.Version,
		models.Mutation{Status: models.StatusProcessingComplete, At: s.now()})
	if err != nil {
		return storeError(err, "failed to mark kyc application complete")
	}
	s.publish(ctx, appEvent(events.TypeCompleted, updated))
	return nil
}

// ProcessCompletedApplicants removes finished applications: the provider
// payload first, then the application itself. A record whose payload could
// not be removed is kept and retried on the next run.
func (s *Service) ProcessCompletedApplicants(ctx context.Context) (*models.JobReport, error) {
	ctx, report, done := s.startJob(ctx, JobProcessCompleted)
	err := s.purgeCompleted(ctx, report)
	done(err)
	return report, err
}

func (s *Service) purgeCompleted(ctx context.Context, report *models.JobReport) error {
	completed, err := s.apps.FindEligible(ctx, models.StatusProcessingComplete, unboundedRetries, 0)
	if err != nil {
		return storeError(err, "failed to retrieve completed kyc applications")
	}
	report.Claimed = len(completed)

	s.forEach(ctx, report, completed, func(ctx context.Context, app *models.Application) error {
		if err := s.provider.RemoveKYCData(ctx, app.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove provider data")
		}
		if err := s.apps.Delete(ctx, app.ID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return storeError(err, "failed to remove kyc application")
		}
		s.publish(ctx, appEvent(events.TypeDeleted, app))
		return nil
	})
	return nil
}
