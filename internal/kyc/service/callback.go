package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"kycgate/internal/events"
	"kycgate/internal/kyc/models"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/sentinel"
)

// callbackAttempts bounds re-reads when a callback races another writer.
const callbackAttempts = 3

// DocVerifiedCallBack applies the provider's final document score to the
// application holding referenceID: processing_docs -> kyc_approved |
// kyc_rejected. The reference ids collapse to [referenceID].
//
// Intermediate scores (scoreComplete other than 1) are acknowledged and
// ignored. An unknown reference is a not found error.
func (s *Service) DocVerifiedCallBack(ctx context.Context, referenceID, score, scoreComplete string) (err error) {
	ctx, span := s.tracer.Start(ctx, "kyc.doc_verified_callback")
	span.SetAttributes(attribute.String("kyc.reference_id", referenceID))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	referenceID = strings.TrimSpace(referenceID)
	if referenceID == "" {
		s.metrics.IncrementCallback("error")
		return dErrors.New(dErrors.CodeValidation, "reference_id is required")
	}
	if complete, err := strconv.ParseFloat(strings.TrimSpace(scoreComplete), 64); err != nil || complete != 1 {
		s.logger.InfoContext(ctx, "intermediate kyc score received", "reference_id", referenceID, "score", score)
		s.metrics.IncrementCallback("intermediate")
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(score), 64)
	if err != nil {
		s.metrics.IncrementCallback("error")
		return dErrors.New(dErrors.CodeValidation, "score must be numeric")
	}

	for attempt := 1; ; attempt++ {
		app, err := s.apps.FindByReference(ctx, referenceID, models.StatusProcessingDocs)
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementCallback("not_found")
			return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("reference id %s not found", referenceID))
		}
		if err != nil {
			s.metrics.IncrementCallback("error")
			s.logger.ErrorContext(ctx, "failed to look up kyc reference", "reference_id", referenceID, "error", err)
			return storeError(err, "failed to look up kyc reference")
		}

		approved := s.provider.IsUserApprovedBasedOnScore(app, value)
		m := models.Mutation{
			Status:        models.StatusRejected,
			Decision:      models.DecisionPtr(models.DecisionRejected),
			ReplaceKYCIDs: true,
			KYCIDs:        []string{referenceID},
			At:            s.now(),
		}
		outcome := "rejected"
		if approved {
			m.Status = models.StatusApproved
			m.Decision = models.DecisionPtr(models.DecisionApproved)
			outcome = "approved"
		}

		updated, err := s.apps.CompareAndSet(ctx, app.ID, app.Version, m)
		if errors.Is(err, sentinel.ErrStaleVersion) && attempt < callbackAttempts {
			continue
		}
		if err != nil {
			s.metrics.IncrementCallback("error")
			s.logger.ErrorContext(ctx, "failed to apply kyc score", "reference_id", referenceID,
				"score", value, "application_id", app.ID, "error", err)
			return storeError(err, "failed to apply kyc score")
		}

		s.logger.InfoContext(ctx, "kyc decision recorded", "application_id", app.ID,
			"reference_id", referenceID, "score", value, "approved", approved)
		s.metrics.IncrementCallback(outcome)
		span.SetAttributes(attribute.Bool("kyc.approved", approved))
		s.publish(ctx, appEvent(events.TypeDecided, updated))
		return nil
	}
}
