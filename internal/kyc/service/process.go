package service

import (
	"context"
	"fmt"

	"kycgate/internal/events"
	"kycgate/internal/kyc/models"
	"kycgate/internal/provider"
	dErrors "kycgate/pkg/domain-errors"
)

// minReferenceIDs is one registration id plus at least one document reference.
const minReferenceIDs = 2

// ProcessKYCApplicants submits a batch of unprocessed applications to the
// provider: unprocessed -> processing -> processing_docs | kyc_rejected.
//
// A provider failure leaves the record in processing; the stalled processing
// sweep returns it to the queue with one more retry.
func (s *Service) ProcessKYCApplicants(ctx context.Context) (*models.JobReport, error) {
	ctx, report, done := s.startJob(ctx, JobProcessApplicants)
	err := s.processApplicants(ctx, report)
	done(err)
	return report, err
}

func (s *Service) processApplicants(ctx context.Context, report *models.JobReport) error {
	candidates, err := s.apps.FindEligible(ctx, models.StatusUnprocessed, s.retryLimit, s.batchSize)
	if err != nil {
		return storeError(err, "failed to retrieve unprocessed kyc applications")
	}
	if len(candidates) == 0 {
		return nil
	}

	if s.budget != nil {
		granted, err := s.budget.Reserve(ctx, len(candidates))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to reserve provider budget")
		}
		if granted < len(candidates) {
			s.logger.DebugContext(ctx, "provider budget exhausted", "requested", len(candidates), "granted", granted)
			candidates = candidates[:granted]
		}
	}

	claimed := s.claim(ctx, report, candidates, models.StatusProcessing)
	if len(claimed) == 0 {
		return nil
	}

	results := s.provider.ProcessKYC(ctx, claimed)
	byID := make(map[string]provider.Result, len(results))
	for _, r := range results {
		byID[r.ApplicationID.String()] = r
	}

	s.forEach(ctx, report, claimed, func(ctx context.Context, app *models.Application) error {
		r, ok := byID[app.ID.String()]
		if !ok {
			return dErrors.New(dErrors.CodeInternal, "provider returned no result for application")
		}
		return s.recordSubmission(ctx, app, r)
	})
	return nil
}

// recordSubmission writes the provider outcome onto a claimed application.
func (s *Service) recordSubmission(ctx context.Context, app *models.Application, r provider.Result) error {
	if r.Err != nil {
		return fmt.Errorf("provider submission (%s): %w", provider.GetCategory(r.Err), r.Err)
	}
	if len(r.ReferenceIDs) < minReferenceIDs {
		return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf(
			"provider returned %d reference ids, need a registration id and at least one document reference", len(r.ReferenceIDs)))
	}

	m := models.Mutation{
		Status:        models.StatusProcessingDocs,
		ReplaceKYCIDs: true,
		KYCIDs:        r.ReferenceIDs,
		At:            s.now(),
	}
	decision := "submitted"
	if r.Rejected {
		m.Status = models.StatusRejected
		m.Decision = models.DecisionPtr(models.DecisionRejected)
		decision = "rejected"
	}

	updated, err := s.apps.CompareAndSet(ctx, app.ID, app.Version, m)
	if err != nil {
		return storeError(err, "failed to record provider submission")
	}
	s.metrics.IncrementDecision(decision)
	s.publish(ctx, appEvent(events.TypeSubmitted, updated))
	return nil
}
