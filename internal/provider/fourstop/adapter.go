// Package fourstop adapts the 4Stop identity verification API to the KYC
// lifecycle: it validates and stores the applicant payload, runs customer
// registration followed by document verification, and turns the final
// callback score into a decision.
package fourstop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"kycgate/internal/kyc/models"
	"kycgate/internal/platform/config"
	"kycgate/internal/provider"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/sentinel"
)

const (
	approveRecommendation = "Approve"
	docVerificationMethod = "3"
	maxResponseBytes      = 1 << 20
	defaultConcurrency    = 8
)

// PayloadStore persists the enrollment payload next to its application.
type PayloadStore interface {
	Save(ctx context.Context, applicationID uuid.UUID, data *EnrollmentData) error
	Get(ctx context.Context, applicationID uuid.UUID) (*EnrollmentData, error)
	Delete(ctx context.Context, applicationID uuid.UUID) error
}

// Adapter talks to 4Stop on behalf of the lifecycle service.
type Adapter struct {
	cfg         config.Provider
	payloads    PayloadStore
	client      *http.Client
	logger      *slog.Logger
	metrics     *Metrics
	tracer      trace.Tracer
	concurrency int
}

type Option func(*Adapter)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(a *Adapter) {
		a.metrics = m
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) {
		a.client = c
	}
}

// WithConcurrency bounds how many applicants are in flight at once.
func WithConcurrency(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

func New(cfg config.Provider, payloads PayloadStore, opts ...Option) *Adapter {
	a := &Adapter{
		cfg:         cfg,
		payloads:    payloads,
		client:      &http.Client{Timeout: cfg.HTTPTimeout},
		logger:      slog.Default(),
		tracer:      otel.Tracer("kycgate/provider/fourstop"),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) ValidateKYCData(raw json.RawMessage) error {
	_, err := Decode(raw)
	return err
}

// PersistKYCData stores the payload keyed to an application that already
// exists in the record store.
func (a *Adapter) PersistKYCData(ctx context.Context, app *models.Application, raw json.RawMessage) error {
	if app == nil || app.ID == uuid.Nil || strings.TrimSpace(app.UserUUID) == "" {
		return dErrors.New(dErrors.CodeValidation, "application must be persisted before its kyc data")
	}
	data, err := Decode(raw)
	if err != nil {
		return err
	}
	if err := a.payloads.Save(ctx, app.ID, data); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return dErrors.New(dErrors.CodeConflict, "kyc data already stored for application")
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		a.logger.ErrorContext(ctx, "failed to store 4stop data",
			"application_id", app.ID,
			"user_uuid", app.UserUUID,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store kyc data")
	}
	return nil
}

func (a *Adapter) RemoveKYCData(ctx context.Context, applicationID uuid.UUID) error {
	if err := a.payloads.Delete(ctx, applicationID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove kyc data")
	}
	return nil
}

// IsUserApprovedBasedOnScore applies the confidence threshold to the final
// document verification score.
func (a *Adapter) IsUserApprovedBasedOnScore(_ *models.Application, score float64) bool {
	return score >= a.cfg.ConfidenceThreshold
}

// ProcessKYC submits every applicant concurrently and returns one result per
// applicant, in input order. Failures are reported per result, never for
// the whole batch.
func (a *Adapter) ProcessKYC(ctx context.Context, apps []*models.Application) []provider.Result {
	ctx, span := a.tracer.Start(ctx, "fourstop.ProcessKYC",
		trace.WithAttributes(attribute.Int("batch.size", len(apps))))
	defer span.End()

	results := make([]provider.Result, len(apps))
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, app := range apps {
		g.Go(func() error {
			results[i] = a.process(ctx, app)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (a *Adapter) process(ctx context.Context, app *models.Application) provider.Result {
	ctx, span := a.tracer.Start(ctx, "fourstop.applicant",
		trace.WithAttributes(attribute.String("application.id", app.ID.String())))
	defer span.End()

	res := provider.Result{ApplicationID: app.ID, Rejected: true}
	ids, rejected, err := a.performKYC(ctx, app)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "kyc submission failed")
		a.logger.ErrorContext(ctx, "could not perform kyc",
			"application_id", app.ID,
			"user_uuid", app.UserUUID,
			"category", provider.GetCategory(err),
			"error", err,
		)
		res.Err = err
		return res
	}
	res.Rejected = rejected
	res.ReferenceIDs = ids
	return res
}

func (a *Adapter) performKYC(ctx context.Context, app *models.Application) ([]string, bool, error) {
	data, err := a.payloads.Get(ctx, app.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, true, provider.NewProviderError(provider.ErrorBadData, providerID,
				"inconsistent data, kyc payload missing", err)
		}
		return nil, true, fmt.Errorf("load kyc payload: %w", err)
	}

	regID, rejected, err := a.register(ctx, app, data)
	if err != nil {
		return nil, true, err
	}
	a.logger.InfoContext(ctx, "customer registration evaluated",
		"application_id", app.ID,
		"user_uuid", app.UserUUID,
		"rejected", rejected,
	)

	refs, err := a.verifyDocuments(ctx, app, regID, data.DocImages)
	if err != nil {
		return nil, true, err
	}
	return append([]string{regID}, refs...), rejected, nil
}

func (a *Adapter) register(ctx context.Context, app *models.Application, data *EnrollmentData) (id string, rejected bool, err error) {
	start := time.Now()
	defer func() { a.metrics.observeCall("registration", err, time.Since(start)) }()

	form := a.credentials(app)
	form.Set("reg_date", app.CreatedAt.UTC().Format(time.DateOnly))
	form.Set("reg_ip_address", app.RequestOrigin)
	if ci := data.CustomerInformation; ci != nil {
		form.Set("firstName", ci.FirstName)
		form.Set("lastName", ci.LastName)
		form.Set("address1", ci.Address1)
		form.Set("address2", ci.Address2)
		form.Set("city", ci.City)
		form.Set("province", ci.Province)
		form.Set("country", ci.Country)
		form.Set("postal_code", ci.PostalCode)
		form.Set("phone1", ci.Phone1.String())
		form.Set("phone2", ci.Phone2.String())
		form.Set("dob", ci.DOB)
		form.Set("gender", strings.ToLower(ci.Gender))
		for i, v := range ci.IDValues {
			form.Set("id_values["+strconv.Itoa(i)+"][type]", v.Type)
			form.Set("id_values["+strconv.Itoa(i)+"][value]", v.Value)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.RegistrationURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", true, fmt.Errorf("build registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp registrationResponse
	if err := a.do(req, "customer registration", &resp); err != nil {
		return "", true, err
	}
	if resp.Status < 0 {
		return "", true, provider.NewProviderError(provider.ErrorRejectedRequest, providerID,
			"customer registration rejected", errors.New(statusText(resp.Status, resp.Description)))
	}
	if resp.ID == "" {
		return "", true, provider.NewProviderError(provider.ErrorBadData, providerID,
			"customer registration returned no id", nil)
	}

	rejected = resp.Rec != approveRecommendation || resp.ConfidenceLevel <= a.cfg.ConfidenceThreshold
	a.metrics.observeDecision(rejected)
	return resp.ID.String(), rejected, nil
}

func (a *Adapter) verifyDocuments(ctx context.Context, app *models.Application, registrationID string, docs *DocImages) (refs []string, err error) {
	start := time.Now()
	defer func() { a.metrics.observeCall("doc_verification", err, time.Since(start)) }()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := a.credentials(app)
	fields.Set("method", docVerificationMethod)
	fields.Set("customer_registration_id", registrationID)
	for key, values := range fields {
		if err := mw.WriteField(key, values[0]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", key, err)
		}
	}
	if docs != nil {
		for _, nd := range docs.named() {
			if nd.doc == nil || len(nd.doc.Data) == 0 {
				continue
			}
			if err := attachDoc(mw, nd.field, nd.doc); err != nil {
				return nil, err
			}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.DocVerificationURL, &body)
	if err != nil {
		return nil, fmt.Errorf("build doc verification request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp []docVerificationResponse
	if err := a.do(req, "doc verification", &resp); err != nil {
		return nil, err
	}
	for _, r := range resp {
		if r.Status < 0 {
			return nil, provider.NewProviderError(provider.ErrorRejectedRequest, providerID,
				"doc verification rejected", errors.New(statusText(r.Status, r.Description)))
		}
		refs = append(refs, r.ReferenceID.String())
	}
	return refs, nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func attachDoc(mw *multipart.Writer, field string, doc *DocImage) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		field, quoteEscaper.Replace(doc.Filename)))
	h.Set("Content-Type", doc.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", field, err)
	}
	if _, err := part.Write(doc.Data); err != nil {
		return fmt.Errorf("write part %s: %w", field, err)
	}
	return nil
}

func (a *Adapter) credentials(app *models.Application) url.Values {
	v := url.Values{}
	v.Set("merchant_id", a.cfg.MerchantID)
	v.Set("password", a.cfg.MerchantPassword)
	v.Set("user_number", app.UserUUID)
	v.Set("user_name", app.UserName)
	return v
}

// do sends req and decodes a successful JSON response into out.
func (a *Adapter) do(req *http.Request, call string, out any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return provider.FromTransport(providerID, call+" request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return provider.FromTransport(providerID, call+" response unreadable", err)
	}
	if resp.StatusCode != http.StatusOK {
		return provider.FromStatus(providerID, call+" failed", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return provider.NewProviderError(provider.ErrorBadData, providerID, call+" response malformed", err)
	}
	return nil
}
