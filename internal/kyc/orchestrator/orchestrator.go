// Package orchestrator drives the screening workflow: create a subject, create
// a check against the report set for the investor kind, and record the
// correlation on the investor.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"irdesk/internal/audit"
	"irdesk/internal/kyc/models"
	"irdesk/internal/kyc/provider"
	"irdesk/internal/kyc/status"
	"irdesk/internal/platform/metrics"
	dErrors "irdesk/pkg/domain-errors"
	"irdesk/pkg/platform/dedupe"
	"irdesk/pkg/platform/sentinel"
	"irdesk/pkg/requestcontext"
)

const (
	defaultBatchConcurrency = 4
	statusFailed            = "failed"

	// persistTimeout bounds the correlation write once a check exists at
	// the provider. It runs detached from the caller's deadline.
	persistTimeout = 10 * time.Second
)

// Request starts one screening.
type Request struct {
	InvestorID uuid.UUID           `json:"investor_id"`
	Kind       models.Kind         `json:"kind" validate:"required,oneof=individual business"`
	Subject    models.SubjectInput `json:"subject"`
	Company    *models.Company     `json:"company,omitempty"`
}

// Result reports a screening attempt. Provider failures are carried here
// rather than returned as errors; Status is provider-native on success.
type Result struct {
	Success   bool     `json:"success"`
	Status    string   `json:"status"`
	CheckID   string   `json:"check_id,omitempty"`
	SubjectID string   `json:"subject_id,omitempty"`
	Error     string   `json:"error,omitempty"`
	Failure   *Failure `json:"failure,omitempty"`
}

// BatchRequest screens several stored investors with the same kind.
type BatchRequest struct {
	InvestorIDs []uuid.UUID `json:"investor_ids" validate:"required,min=1,max=100"`
	Kind        models.Kind `json:"kind" validate:"required,oneof=individual business"`
}

// BatchItem is the settled outcome for one investor of a batch.
type BatchItem struct {
	InvestorID uuid.UUID `json:"investor_id"`
	Result     *Result   `json:"result"`
}

// BatchResult is reported only after every item settles.
type BatchResult struct {
	Results      []BatchItem       `json:"results"`
	SucceededIDs []uuid.UUID       `json:"succeeded_ids"`
	FailedIDs    []uuid.UUID       `json:"failed_ids"`
	Errors       map[string]string `json:"errors,omitempty"`
	// RetryIDs is the full original id list whenever anything failed.
	RetryIDs []uuid.UUID `json:"retry_ids,omitempty"`
}

type Service struct {
	provider         Provider
	store            Store
	locker           Locker
	auditPublisher   AuditPublisher
	metrics          *metrics.Metrics
	logger           *slog.Logger
	tracer           trace.Tracer
	validate         *validator.Validate
	batchConcurrency int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithBatchConcurrency bounds how many screenings of a batch run at once.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

func New(p Provider, store Store, locker Locker, opts ...Option) (*Service, error) {
	if p == nil {
		return nil, fmt.Errorf("verification provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("investor store is required")
	}
	if locker == nil {
		return nil, fmt.Errorf("screening locker is required")
	}

	svc := &Service{
		provider:         p,
		store:            store,
		locker:           locker,
		logger:           slog.Default(),
		tracer:           otel.Tracer("irdesk/kyc/orchestrator"),
		validate:         validator.New(),
		batchConcurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// StartVerification creates a subject and a check for one investor and
// records the correlation. Errors are returned only for problems on our side
// (validation, unknown investor, screening already running); provider
// failures come back as an unsuccessful Result.
func (s *Service) StartVerification(ctx context.Context, req Request) (*Result, error) {
	if req.InvestorID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeValidation, "investor_id is required")
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, validationMessage(err))
	}

	ctx, span := s.tracer.Start(ctx, "orchestrator.StartVerification", trace.WithAttributes(
		attribute.String("investor_id", req.InvestorID.String()),
		attribute.String("kind", string(req.Kind)),
	))
	defer span.End()

	if _, err := s.store.FindByID(ctx, req.InvestorID); err != nil {
		return nil, translateStoreError(err)
	}

	release, err := s.locker.Acquire(ctx, req.InvestorID.String())
	if err != nil {
		if errors.Is(err, sentinel.ErrLocked) {
			return nil, dErrors.New(dErrors.CodeConflict, "a screening is already in progress for this investor")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock investor")
	}
	defer release()

	result := s.screen(ctx, req)
	if !result.Success {
		span.SetStatus(codes.Error, result.Error)
	}
	return result, nil
}

func (s *Service) screen(ctx context.Context, req Request) *Result {
	subject, err := s.provider.CreateSubject(ctx, req.Subject)
	if err != nil {
		return s.fail(ctx, req, "", err)
	}

	checkReq := models.CheckRequest{
		SubjectID:   subject.ID,
		ReportNames: models.ReportNamesFor(req.Kind),
	}
	if req.Kind == models.KindBusiness {
		checkReq.Company = req.Company
	}
	check, err := s.provider.CreateCheck(ctx, checkReq)
	if err != nil {
		// the subject is left in place; a retry creates a new one
		return s.fail(ctx, req, subject.ID, err)
	}

	outcome := status.Map(check, nil)
	now := requestcontext.Now(ctx)

	// The check exists now. Losing the correlation would orphan it, so the
	// write must not die with the request.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	_, err = s.store.Execute(persistCtx, req.InvestorID,
		func(*models.Investor) error { return nil },
		func(inv *models.Investor) {
			inv.ApplyScreeningStarted(check.ID, subject.ID, outcome.Status, outcome.Details, now)
		})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record screening",
			"investor_id", req.InvestorID,
			"check_id", check.ID,
			"error", err,
		)
		return &Result{
			Status:    statusFailed,
			CheckID:   check.ID,
			SubjectID: subject.ID,
			Error:     "verification started but could not be recorded",
			Failure:   failureOf(FailureDatabase),
		}
	}

	s.metrics.IncrementVerificationStarted(string(req.Kind), "success")
	s.metrics.IncrementStatusTransition("screening", string(outcome.Status))
	s.emit(ctx, audit.Event{
		Category:   audit.CategoryCompliance,
		Action:     audit.ActionVerificationStarted,
		InvestorID: req.InvestorID.String(),
		CheckID:    check.ID,
		Status:     string(outcome.Status),
	})
	s.logger.InfoContext(ctx, "screening started",
		"investor_id", req.InvestorID,
		"check_id", check.ID,
		"check_status", check.Status,
	)

	return &Result{
		Success:   true,
		Status:    string(check.Status),
		CheckID:   check.ID,
		SubjectID: subject.ID,
	}
}

func (s *Service) fail(ctx context.Context, req Request, subjectID string, err error) *Result {
	category := provider.GetCategory(err)
	s.logger.WarnContext(ctx, "screening failed",
		"investor_id", req.InvestorID,
		"subject_id", subjectID,
		"category", category,
		"error", err,
	)
	s.metrics.IncrementVerificationStarted(string(req.Kind), string(category))
	s.emit(ctx, audit.Event{
		Category:   audit.CategoryOperations,
		Action:     audit.ActionVerificationFailed,
		InvestorID: req.InvestorID.String(),
		Status:     statusFailed,
		Reason:     string(category),
	})
	return &Result{
		Status:    statusFailed,
		SubjectID: subjectID,
		Error:     err.Error(),
		Failure:   FailureFor(err),
	}
}

// StartBatchVerification screens every investor in req with bounded
// concurrency. It never aborts early: each id ends up in SucceededIDs or
// FailedIDs.
func (s *Service) StartBatchVerification(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, validationMessage(err))
	}

	ctx, span := s.tracer.Start(ctx, "orchestrator.StartBatchVerification", trace.WithAttributes(
		attribute.Int("batch_size", len(req.InvestorIDs)),
		attribute.String("kind", string(req.Kind)),
	))
	defer span.End()

	ids := dedupe.Values(req.InvestorIDs)
	items := make([]BatchItem, len(ids))

	var g errgroup.Group
	g.SetLimit(s.batchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			items[i] = BatchItem{InvestorID: id, Result: s.screenStored(ctx, id, req.Kind)}
			return nil
		})
	}
	_ = g.Wait()

	out := &BatchResult{
		Results:      items,
		SucceededIDs: []uuid.UUID{},
		FailedIDs:    []uuid.UUID{},
		Errors:       map[string]string{},
	}
	for _, item := range items {
		if item.Result.Success {
			out.SucceededIDs = append(out.SucceededIDs, item.InvestorID)
			continue
		}
		out.FailedIDs = append(out.FailedIDs, item.InvestorID)
		out.Errors[item.InvestorID.String()] = item.Result.Error
	}
	if len(out.FailedIDs) > 0 {
		out.RetryIDs = append([]uuid.UUID(nil), req.InvestorIDs...)
	}

	s.logger.InfoContext(ctx, "batch screening settled",
		"total", len(items),
		"succeeded", len(out.SucceededIDs),
		"failed", len(out.FailedIDs),
	)
	return out, nil
}

// screenStored runs one batch item, deriving the subject from the stored
// investor. Every outcome, including our own errors, becomes a Result.
func (s *Service) screenStored(ctx context.Context, id uuid.UUID, kind models.Kind) *Result {
	inv, err := s.store.FindByID(ctx, id)
	if err != nil {
		return errorResult(translateStoreError(err))
	}

	req := Request{
		InvestorID: id,
		Kind:       kind,
		Subject:    subjectFromInvestor(inv),
	}
	if kind == models.KindBusiness {
		req.Company = &models.Company{Name: inv.Name}
	}

	result, err := s.StartVerification(ctx, req)
	if err != nil {
		return errorResult(err)
	}
	return result
}

// GenerateSDKToken issues a short-lived token for the applicant-facing SDK,
// bound to the investor's current subject.
func (s *Service) GenerateSDKToken(ctx context.Context, investorID uuid.UUID) (string, error) {
	inv, err := s.store.FindByID(ctx, investorID)
	if err != nil {
		return "", translateStoreError(err)
	}
	subjectID := inv.VerificationDetails.SubjectID()
	if subjectID == "" {
		return "", dErrors.New(dErrors.CodeConflict, "investor has no verification subject yet")
	}

	token, err := s.provider.GenerateSDKToken(ctx, subjectID)
	if err != nil {
		s.logger.WarnContext(ctx, "sdk token request failed",
			"investor_id", investorID,
			"category", provider.GetCategory(err),
			"error", err,
		)
		return "", dErrors.Wrap(err, dErrors.CodeBadGateway, "verification provider rejected the sdk token request")
	}

	s.emit(ctx, audit.Event{
		Category:   audit.CategoryOperations,
		Action:     audit.ActionSDKTokenIssued,
		InvestorID: investorID.String(),
	})
	return token, nil
}

func (s *Service) emit(ctx context.Context, e audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", e.Action, "error", err)
	}
}

func subjectFromInvestor(inv *models.Investor) models.SubjectInput {
	first, last := splitName(inv.Name)
	return models.SubjectInput{
		FirstName: first,
		LastName:  last,
		Email:     inv.Email,
	}
}

// splitName takes the first word as the first name and the rest as the last
// name. Single-word names are used for both.
func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], fields[0]
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func errorResult(err error) *Result {
	failureType := FailureUnknown
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeNotFound:
		failureType = FailureValidation
	case dErrors.CodeInternal:
		failureType = FailureDatabase
	}
	return &Result{
		Status:  statusFailed,
		Error:   dErrors.MessageOf(err),
		Failure: failureOf(failureType),
	}
}

func translateStoreError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "investor not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load investor")
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(fields, "; ")
}
