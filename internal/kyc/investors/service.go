// Package investors is the read/write surface the dashboard uses for investor
// KYC state outside of provider screenings.
package investors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"irdesk/internal/audit"
	"irdesk/internal/kyc/models"
	"irdesk/internal/kyc/status"
	"irdesk/internal/platform/metrics"
	dErrors "irdesk/pkg/domain-errors"
	"irdesk/pkg/platform/sentinel"
	"irdesk/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, inv *models.Investor) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Investor, error)
	List(ctx context.Context) ([]*models.Investor, error)
	Execute(ctx context.Context, id uuid.UUID, validate func(*models.Investor) error, mutate func(*models.Investor)) (*models.Investor, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// CreateRequest mirrors the dashboard's add-investor form.
type CreateRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Email         string `json:"email" validate:"required,email"`
	Type          string `json:"type" validate:"required,max=64"`
	WalletAddress string `json:"wallet_address,omitempty" validate:"omitempty,eth_addr"`
}

// KYCView is an investor's KYC state as the dashboard renders it.
type KYCView struct {
	InvestorID          uuid.UUID                  `json:"investor_id"`
	Status              models.Status              `json:"status"`
	EffectiveStatus     models.Status              `json:"effective_status"`
	NeedsRescreening    bool                       `json:"needs_rescreening"`
	LastUpdated         string                     `json:"last_updated,omitempty"`
	VerificationDetails models.VerificationDetails `json:"verification_details"`
}

// Summary is one row of the investor list.
type Summary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Type          string    `json:"type"`
	WalletAddress *string   `json:"wallet_address,omitempty"`
	KYC           KYCView   `json:"kyc"`
}

type Service struct {
	store          Store
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	validate       *validator.Validate
	window         time.Duration
	policy         status.ManualPolicy
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

// WithValidityWindow sets how long an approval stays valid.
func WithValidityWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.window = d
		}
	}
}

func WithManualPolicy(p status.ManualPolicy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("investor store is required")
	}
	svc := &Service{
		store:    store,
		logger:   slog.Default(),
		validate: validator.New(),
		window:   status.DefaultValidityWindow,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Investor, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, validationMessage(err))
	}

	var wallet *string
	if req.WalletAddress != "" {
		wallet = &req.WalletAddress
	}
	inv, err := models.NewInvestor(uuid.New(), req.Name, req.Email, req.Type, wallet, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, inv); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "investor already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create investor")
	}

	s.emit(ctx, audit.Event{
		Category:   audit.CategoryOperations,
		Action:     audit.ActionInvestorCreated,
		InvestorID: inv.ID.String(),
		Status:     string(inv.KYCStatus),
	})
	return inv, nil
}

// List returns every investor with its effective status as of the request time.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list investors")
	}
	now := requestcontext.Now(ctx)
	out := make([]Summary, 0, len(all))
	for _, inv := range all {
		out = append(out, Summary{
			ID:            inv.ID,
			Name:          inv.Name,
			Email:         inv.Email,
			Type:          inv.Type,
			WalletAddress: inv.WalletAddress,
			KYC:           s.view(inv, now),
		})
	}
	return out, nil
}

func (s *Service) GetKYC(ctx context.Context, id uuid.UUID) (*KYCView, error) {
	inv, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	view := s.view(inv, requestcontext.Now(ctx))
	return &view, nil
}

// SetStatus stores an operator-chosen status. Verification details are kept
// as they are so a later callback still correlates.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, st models.Status) (*KYCView, error) {
	if err := s.policy.Validate(st); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var previous models.Status
	updated, err := s.store.Execute(ctx, id,
		func(current *models.Investor) error {
			previous = current.KYCStatus
			return nil
		},
		func(current *models.Investor) {
			current.ApplyManualStatus(st, now)
		})
	if err != nil {
		return nil, translateStoreError(err)
	}

	if previous != st {
		s.metrics.IncrementStatusTransition("manual", string(st))
	}
	s.logger.InfoContext(ctx, "kyc status set manually",
		"investor_id", id,
		"from", previous,
		"to", st,
		"actor_id", requestcontext.ActorID(ctx),
	)
	s.emit(ctx, audit.Event{
		Category:   audit.CategoryCompliance,
		Action:     audit.ActionStatusSetManually,
		InvestorID: id.String(),
		CheckID:    updated.CheckID(),
		Status:     string(st),
		Reason:     "previous status " + string(previous),
	})

	view := s.view(updated, now)
	return &view, nil
}

func (s *Service) view(inv *models.Investor, now time.Time) KYCView {
	effective := status.Effective(inv.KYCStatus, inv.LastUpdated, now, s.window)
	details := inv.VerificationDetails
	if details == nil {
		details = models.VerificationDetails{}
	}
	return KYCView{
		InvestorID:          inv.ID,
		Status:              inv.KYCStatus,
		EffectiveStatus:     effective,
		NeedsRescreening:    status.NeedsRescreening(effective),
		LastUpdated:         inv.FormatLastUpdated(),
		VerificationDetails: details,
	}
}

func (s *Service) emit(ctx context.Context, e audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", e.Action, "error", err)
	}
}

func translateStoreError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "investor not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "investor store failure")
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(fields, "; ")
}
