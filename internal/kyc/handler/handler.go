// Package handler exposes the KYC engine over HTTP: the admin API used by the
// dashboard and the provider webhook.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"irdesk/internal/audit"
	"irdesk/internal/kyc/investors"
	"irdesk/internal/kyc/models"
	"irdesk/internal/kyc/orchestrator"
	"irdesk/internal/kyc/reconciler"
	"irdesk/internal/kyc/status"
	"irdesk/internal/platform/middleware"
	dErrors "irdesk/pkg/domain-errors"
	"irdesk/pkg/platform/httputil"
	"irdesk/pkg/requestcontext"
)

const maxWebhookBody = 1 << 20

type InvestorService interface {
	Create(ctx context.Context, req investors.CreateRequest) (*models.Investor, error)
	List(ctx context.Context) ([]investors.Summary, error)
	GetKYC(ctx context.Context, id uuid.UUID) (*investors.KYCView, error)
	SetStatus(ctx context.Context, id uuid.UUID, st models.Status) (*investors.KYCView, error)
}

type Orchestrator interface {
	StartVerification(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error)
	StartBatchVerification(ctx context.Context, req orchestrator.BatchRequest) (*orchestrator.BatchResult, error)
	GenerateSDKToken(ctx context.Context, investorID uuid.UUID) (string, error)
}

type Reconciler interface {
	HandleCallback(ctx context.Context, ev reconciler.Event) bool
	RefreshInvestor(ctx context.Context, investorID uuid.UUID) (*status.Outcome, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Handler handles the investor KYC routes.
type Handler struct {
	investors      InvestorService
	orchestrator   Orchestrator
	reconciler     Reconciler
	jwtValidator   middleware.JWTValidator
	webhookSecret  string
	auditPublisher AuditPublisher
	logger         *slog.Logger
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(h *Handler) {
		h.auditPublisher = publisher
	}
}

func New(
	investorSvc InvestorService,
	orch Orchestrator,
	rec Reconciler,
	jwtValidator middleware.JWTValidator,
	webhookSecret string,
	opts ...Option,
) *Handler {
	h := &Handler{
		investors:     investorSvc,
		orchestrator:  orch,
		reconciler:    rec,
		jwtValidator:  jwtValidator,
		webhookSecret: webhookSecret,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the webhook and the admin routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSharedSecret(h.webhookSecret, h.logger, h.recordRejection))
		r.Post("/webhooks/verification", h.handleWebhook)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(h.jwtValidator, h.logger))
		r.Use(middleware.ContentTypeJSON)

		r.Post("/investors", h.handleCreateInvestor)
		r.Get("/investors", h.handleListInvestors)
		r.Route("/investors/{id}", func(r chi.Router) {
			r.Get("/kyc", h.handleGetKYC)
			r.Put("/kyc", h.handleSetStatus)
			r.Post("/verification", h.handleStartVerification)
			r.Post("/verification/refresh", h.handleRefresh)
			r.Post("/verification/sdk-token", h.handleSDKToken)
		})
		r.Post("/verifications/batch", h.handleBatch)
	})
}

type webhookResponse struct {
	Success bool `json:"success"`
}

// handleWebhook answers 200 only when the referenced check was reconciled;
// anything else is a 400 so the provider redelivers.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read webhook body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusBadRequest, webhookResponse{})
		return
	}

	ev, err := reconciler.ParseEvent(body)
	if err != nil {
		h.logger.WarnContext(ctx, "malformed webhook body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusBadRequest, webhookResponse{})
		return
	}

	if !h.reconciler.HandleCallback(ctx, ev) {
		httputil.WriteJSON(w, http.StatusBadRequest, webhookResponse{})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, webhookResponse{Success: true})
}

func (h *Handler) recordRejection(r *http.Request) {
	if h.auditPublisher == nil {
		return
	}
	ctx := r.Context()
	if err := h.auditPublisher.Emit(ctx, audit.Event{
		Category: audit.CategorySecurity,
		Action:   audit.ActionWebhookRejected,
		Reason:   "signature_invalid",
	}); err != nil {
		h.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
	}
}

func (h *Handler) handleCreateInvestor(w http.ResponseWriter, r *http.Request) {
	var req investors.CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	inv, err := h.investors.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, investorResponse(inv))
}

func (h *Handler) handleListInvestors(w http.ResponseWriter, r *http.Request) {
	list, err := h.investors.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"investors": list})
}

func (h *Handler) handleGetKYC(w http.ResponseWriter, r *http.Request) {
	id, ok := h.investorID(w, r)
	if !ok {
		return
	}
	view, err := h.investors.GetKYC(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

type setStatusRequest struct {
	Status models.Status `json:"status"`
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.investorID(w, r)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.investors.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

type startVerificationRequest struct {
	Kind    models.Kind         `json:"kind"`
	Subject models.SubjectInput `json:"subject"`
	Company *models.Company     `json:"company,omitempty"`
}

// handleStartVerification returns 200 with the Result even when the provider
// failed; Result.Success tells the dashboard which it was.
func (h *Handler) handleStartVerification(w http.ResponseWriter, r *http.Request) {
	id, ok := h.investorID(w, r)
	if !ok {
		return
	}
	var req startVerificationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.orchestrator.StartVerification(r.Context(), orchestrator.Request{
		InvestorID: id,
		Kind:       req.Kind,
		Subject:    req.Subject,
		Company:    req.Company,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

type refreshResponse struct {
	Status  models.Status `json:"status"`
	Details string        `json:"details"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	id, ok := h.investorID(w, r)
	if !ok {
		return
	}
	outcome, err := h.reconciler.RefreshInvestor(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, refreshResponse{Status: outcome.Status, Details: outcome.Details})
}

func (h *Handler) handleSDKToken(w http.ResponseWriter, r *http.Request) {
	id, ok := h.investorID(w, r)
	if !ok {
		return
	}
	token, err := h.orchestrator.GenerateSDKToken(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.BatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.orchestrator.StartBatchVerification(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) investorID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "investor id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// writeError logs server-side failures before translating err.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "request failed",
			"request_id", requestcontext.RequestID(ctx),
			"path", r.URL.Path,
			"error", err,
		)
	} else {
		h.logger.WarnContext(ctx, "request rejected",
			"request_id", requestcontext.RequestID(ctx),
			"path", r.URL.Path,
			"code", dErrors.CodeOf(err),
		)
	}
	httputil.WriteError(w, err)
}

type investorBody struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Type          string        `json:"type"`
	WalletAddress *string       `json:"wallet_address,omitempty"`
	KYCStatus     models.Status `json:"kyc_status"`
	LastUpdated   string        `json:"last_updated,omitempty"`
}

func investorResponse(inv *models.Investor) investorBody {
	return investorBody{
		ID:            inv.ID,
		Name:          inv.Name,
		Email:         inv.Email,
		Type:          inv.Type,
		WalletAddress: inv.WalletAddress,
		KYCStatus:     inv.KYCStatus,
		LastUpdated:   inv.FormatLastUpdated(),
	}
}
