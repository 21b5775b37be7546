package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"kycgate/internal/events"
	"kycgate/internal/kyc/models"
	"kycgate/internal/users"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/sentinel"
)

var walletPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// InitiateKYCForUser records a new application and hands the provider payload
// to the adapter. Verification happens later in ProcessKYCApplicants; this
// only does the bookkeeping.
//
// The application row is written first so nothing is lost if the process
// dies mid-request. If the payload cannot be stored the row is removed again.
func (s *Service) InitiateKYCForUser(ctx context.Context, user *users.User, wallet, originIP string, payload json.RawMessage) (app *models.Application, err error) {
	ctx, span := s.tracer.Start(ctx, "kyc.initiate")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.metrics.IncrementEnrollment(string(dErrors.CodeOf(err)))
		} else {
			s.metrics.IncrementEnrollment("ok")
		}
		span.End()
	}()

	wallet, originIP = strings.TrimSpace(wallet), strings.TrimSpace(originIP)
	switch {
	case wallet == "":
		return nil, dErrors.New(dErrors.CodeValidation, "ethereum wallet is invalid or missing")
	case !walletPattern.MatchString(wallet):
		return nil, dErrors.New(dErrors.CodeValidation, "ethereum wallet must be a 0x-prefixed 20 byte hex address")
	case user == nil || strings.TrimSpace(user.UUID) == "":
		return nil, dErrors.New(dErrors.CodeValidation, "user is invalid or missing")
	case originIP == "":
		return nil, dErrors.New(dErrors.CodeValidation, "origin ip address is invalid or missing")
	}
	if err := s.provider.ValidateKYCData(payload); err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "customer data is invalid")
	}

	now := s.now()
	app = &models.Application{
		ID:             uuid.New(),
		UserUUID:       user.UUID,
		UserName:       user.Username,
		EthereumWallet: wallet,
		KYCIDs:         []string{},
		Status:         models.StatusUnprocessed,
		RequestOrigin:  originIP,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	span.SetAttributes(attribute.String("application.id", app.ID.String()))

	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "kyc application already exists")
		}
		s.logger.ErrorContext(ctx, "failed to create kyc application", "user_name", user.Username, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create kyc application")
	}

	if err := s.provider.PersistKYCData(ctx, app, payload); err != nil {
		s.logger.ErrorContext(ctx, "failed to store provider data, removing kyc application",
			"user_name", user.Username, "application_id", app.ID, "error", err)
		if delErr := s.apps.Delete(context.WithoutCancel(ctx), app.ID); delErr != nil && !errors.Is(delErr, sentinel.ErrNotFound) {
			s.logger.ErrorContext(ctx, "failed to remove kyc application", "application_id", app.ID, "error", delErr)
		}
		var de *dErrors.Error
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store provider data")
	}

	s.logger.InfoContext(ctx, "kyc application created", "application_id", app.ID, "user_uuid", app.UserUUID)
	s.publish(ctx, appEvent(events.TypeEnrolled, app))
	return app, nil
}
