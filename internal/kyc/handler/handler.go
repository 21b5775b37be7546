package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kycgate/internal/kyc/models"
	"kycgate/internal/users"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/httputil"
	"kycgate/pkg/platform/sentinel"
	"kycgate/pkg/requestcontext"
)

// maxEnrollBody fits four base64 document images plus customer data.
const maxEnrollBody = 32 << 20

const maxCallbackBody = 64 << 10

// Service is the slice of the lifecycle service the HTTP surface calls.
type Service interface {
	InitiateKYCForUser(ctx context.Context, user *users.User, wallet, originIP string, payload json.RawMessage) (*models.Application, error)
	DocVerifiedCallBack(ctx context.Context, referenceID, score, scoreComplete string) error
}

// UserLookup resolves the enrolling user.
type UserLookup interface {
	GetByUUID(ctx context.Context, uuid string) (*users.User, error)
}

// Handler wires KYC endpoints to the lifecycle service.
type Handler struct {
	service Service
	users   UserLookup
	logger  *slog.Logger
}

func New(service Service, lookup UserLookup, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		users:   lookup,
		logger:  logger,
	}
}

// Register mounts the public callback route. auth guards enrollment.
func (h *Handler) Register(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Post("/user/kyc/callback", h.HandleCallback)
	r.With(auth).Post("/user/{uuid}/kyc", h.HandleEnroll)
}

// HandleEnroll handles POST /user/{uuid}/kyc.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	target := chi.URLParam(r, "uuid")

	caller := requestcontext.UserID(ctx)
	if caller == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	if caller != target {
		h.logger.WarnContext(ctx, "user tried to enroll another user for kyc",
			"request_id", requestID,
			"user_id", caller,
			"target_user_id", target,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, fmt.Sprintf("no permission to enroll user %s", target)))
		return
	}

	var req EnrollRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEnrollBody)).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid json body"))
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.users.GetByUUID(ctx, target)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("user %s does not exist", target)))
			return
		}
		h.logger.ErrorContext(ctx, "failed to load user for kyc enrollment", "request_id", requestID, "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user"))
		return
	}

	app, err := h.service.InitiateKYCForUser(ctx, user, req.EthereumWallet, requestcontext.ClientIP(ctx), req.KYCData)
	if err != nil {
		h.logger.ErrorContext(ctx, "kyc enrollment failed",
			"request_id", requestID,
			"user_id", caller,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "user enrolled for kyc",
		"request_id", requestID,
		"user_id", caller,
		"application_id", app.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusAccepted, EnrollResponse{
		ApplicationID: app.ID.String(),
		Status:        string(app.Status),
		Message:       fmt.Sprintf("user %s enrolled for kyc verification", target),
	})
}

// HandleCallback handles POST /user/kyc/callback from the verification
// provider.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := decodeCallback(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "kyc callback received", "request_id", requestID, "reference_id", req.ReferenceID)

	if err := h.service.DocVerifiedCallBack(ctx, string(req.ReferenceID), string(req.Score), string(req.ScoreComplete)); err != nil {
		h.logger.ErrorContext(ctx, "kyc callback processing failed",
			"request_id", requestID,
			"reference_id", req.ReferenceID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "callback received"})
}

func decodeCallback(w http.ResponseWriter, r *http.Request) (*CallbackRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCallbackBody)
	var req CallbackRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxCallbackBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid form body")
		}
		req.ReferenceID = flexValue(r.FormValue("reference_id"))
		req.Score = flexValue(r.FormValue("score"))
		req.ScoreComplete = flexValue(r.FormValue("score_complete"))
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid json body")
		}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}
