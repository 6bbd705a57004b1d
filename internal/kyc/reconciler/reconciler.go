// Package reconciler folds asynchronous provider state back onto investors.
// Webhooks, explicit refreshes and the fallback poller all run the same
// pipeline: re-fetch the check, find the correlated investor, map and persist.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"irdesk/internal/audit"
	"irdesk/internal/kyc/models"
	"irdesk/internal/kyc/status"
	"irdesk/internal/platform/metrics"
	dErrors "irdesk/pkg/domain-errors"
	"irdesk/pkg/platform/sentinel"
	"irdesk/pkg/requestcontext"
)

const (
	reportFetchConcurrency = 4
	defaultPollConcurrency = 4
)

// ErrNoInvestor is returned when no investor is correlated with a check.
var ErrNoInvestor = dErrors.New(dErrors.CodeNotFound, "no investor is correlated with this check")

// PollSummary counts the outcome of one polling pass.
type PollSummary struct {
	Checked    int
	Reconciled int
	Failed     int
}

type Reconciler struct {
	provider        Provider
	store           Store
	locker          Locker
	auditPublisher  AuditPublisher
	metrics         *metrics.Metrics
	logger          *slog.Logger
	tracer          trace.Tracer
	pollConcurrency int
}

type Option func(*Reconciler)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(r *Reconciler) {
		r.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(r *Reconciler) {
		r.tracer = tracer
	}
}

func WithPollConcurrency(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.pollConcurrency = n
		}
	}
}

func New(p Provider, store Store, locker Locker, opts ...Option) (*Reconciler, error) {
	if p == nil {
		return nil, fmt.Errorf("verification provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("investor store is required")
	}
	if locker == nil {
		return nil, fmt.Errorf("screening locker is required")
	}

	r := &Reconciler{
		provider:        p,
		store:           store,
		locker:          locker,
		logger:          slog.Default(),
		tracer:          otel.Tracer("irdesk/kyc/reconciler"),
		pollConcurrency: defaultPollConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// HandleCallback reconciles the check a webhook points at. Every failure is
// logged and reported as false so the provider redelivers; nothing is retried
// here. Events for other resource types are acknowledged and ignored.
func (r *Reconciler) HandleCallback(ctx context.Context, ev Event) bool {
	if ev.ObjectID == "" {
		r.logger.WarnContext(ctx, "webhook event without object id",
			"resource_type", ev.ResourceType,
			"action", ev.Action,
		)
		r.metrics.IncrementCallback("missing_check")
		return false
	}
	if ev.ResourceType != ResourceCheck {
		r.logger.DebugContext(ctx, "ignoring webhook event",
			"resource_type", ev.ResourceType,
			"action", ev.Action,
			"object_id", ev.ObjectID,
		)
		r.metrics.IncrementCallback("ignored")
		return true
	}

	outcome, err := r.Reconcile(ctx, ev.ObjectID)
	if err != nil {
		r.logger.WarnContext(ctx, "webhook reconciliation failed",
			"check_id", ev.ObjectID,
			"action", ev.Action,
			"claimed_status", ev.ObjectStatus,
			"code", dErrors.CodeOf(err),
			"error", err,
		)
		r.metrics.IncrementCallback(string(dErrors.CodeOf(err)))
		return false
	}

	r.logger.InfoContext(ctx, "webhook reconciled",
		"check_id", ev.ObjectID,
		"action", ev.Action,
		"status", outcome.Status,
	)
	r.metrics.IncrementCallback("reconciled")
	return true
}

// Reconcile re-fetches checkID from the provider and writes the mapped status
// onto the investor correlated with it. Intermediate check states are
// recorded too.
func (r *Reconciler) Reconcile(ctx context.Context, checkID string) (*status.Outcome, error) {
	if checkID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "check id is required")
	}

	ctx, span := r.tracer.Start(ctx, "reconciler.Reconcile",
		trace.WithAttributes(attribute.String("check_id", checkID)))
	defer span.End()

	outcome, err := r.reconcile(ctx, checkID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, dErrors.MessageOf(err))
		return nil, err
	}
	span.SetAttributes(attribute.String("status", string(outcome.Status)))
	return outcome, nil
}

func (r *Reconciler) reconcile(ctx context.Context, checkID string) (*status.Outcome, error) {
	check, err := r.provider.GetCheck(ctx, checkID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadGateway, "failed to fetch check from provider")
	}
	if !check.Status.IsKnown() {
		r.logger.WarnContext(ctx, "provider returned an unknown check status",
			"check_id", checkID,
			"check_status", check.Status,
		)
		r.metrics.IncrementUnmappedStatus(string(check.Status))
	}

	inv, err := r.store.FindByCheckID(ctx, checkID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrNoInvestor
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up investor by check")
	}

	release, err := r.locker.Acquire(ctx, inv.ID.String())
	if err != nil {
		if errors.Is(err, sentinel.ErrLocked) {
			return nil, dErrors.New(dErrors.CodeConflict, "investor is being screened")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock investor")
	}
	defer release()

	var reports []models.Report
	if check.Status == models.CheckComplete {
		reports = r.fetchReports(ctx, check)
	}
	outcome := status.Map(check, reports)

	now := requestcontext.Now(ctx)
	updated, err := r.store.Execute(ctx, inv.ID,
		func(current *models.Investor) error {
			return current.CanReconcile(checkID)
		},
		func(current *models.Investor) {
			current.ApplyReconciled(check, outcome.Status, outcome.Details, now)
		})
	if err != nil {
		switch {
		case dErrors.HasCode(err, dErrors.CodeConflict):
			return nil, err
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, ErrNoInvestor
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist reconciled status")
	}

	if updated.KYCStatus != inv.KYCStatus {
		r.metrics.IncrementStatusTransition("reconcile", string(updated.KYCStatus))
	}
	r.emit(ctx, audit.Event{
		Category:   audit.CategoryCompliance,
		Action:     audit.ActionStatusReconciled,
		InvestorID: inv.ID.String(),
		CheckID:    checkID,
		Status:     string(outcome.Status),
		Reason:     outcome.Details,
	})
	return &outcome, nil
}

// fetchReports loads every report of a complete check concurrently. Reports
// that fail to load are logged and left out of the summary.
func (r *Reconciler) fetchReports(ctx context.Context, check *models.Check) []models.Report {
	fetched := make([]*models.Report, len(check.ReportIDs))

	var g errgroup.Group
	g.SetLimit(reportFetchConcurrency)
	for i, id := range check.ReportIDs {
		g.Go(func() error {
			report, err := r.provider.GetReport(ctx, id)
			if err != nil {
				r.logger.WarnContext(ctx, "skipping report that failed to load",
					"check_id", check.ID,
					"report_id", id,
					"error", err,
				)
				return nil
			}
			fetched[i] = report
			return nil
		})
	}
	_ = g.Wait()

	reports := make([]models.Report, 0, len(fetched))
	for _, rep := range fetched {
		if rep != nil {
			reports = append(reports, *rep)
		}
	}
	return reports
}

// RefreshInvestor re-fetches the investor's current check on demand.
func (r *Reconciler) RefreshInvestor(ctx context.Context, investorID uuid.UUID) (*status.Outcome, error) {
	inv, err := r.store.FindByID(ctx, investorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "investor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load investor")
	}
	checkID := inv.CheckID()
	if checkID == "" {
		return nil, dErrors.New(dErrors.CodeConflict, "investor has no verification check to refresh")
	}
	return r.Reconcile(ctx, checkID)
}

// PollPending reconciles every investor still awaiting a provider outcome.
// It covers webhooks that were never delivered.
func (r *Reconciler) PollPending(ctx context.Context) (PollSummary, error) {
	awaiting, err := r.store.ListAwaitingOutcome(ctx, []models.Status{models.StatusPending, models.StatusNotStarted})
	if err != nil {
		return PollSummary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list investors awaiting outcome")
	}

	results := make([]error, len(awaiting))
	var g errgroup.Group
	g.SetLimit(r.pollConcurrency)
	for i, inv := range awaiting {
		g.Go(func() error {
			_, results[i] = r.Reconcile(ctx, inv.CheckID())
			return nil
		})
	}
	_ = g.Wait()

	summary := PollSummary{Checked: len(awaiting)}
	for i, err := range results {
		if err != nil {
			summary.Failed++
			r.logger.WarnContext(ctx, "poll reconciliation failed",
				"investor_id", awaiting[i].ID,
				"check_id", awaiting[i].CheckID(),
				"error", err,
			)
			continue
		}
		summary.Reconciled++
	}
	return summary, nil
}

func (r *Reconciler) emit(ctx context.Context, e audit.Event) {
	if r.auditPublisher == nil {
		return
	}
	if err := r.auditPublisher.Emit(ctx, e); err != nil {
		r.logger.WarnContext(ctx, "failed to emit audit event", "action", e.Action, "error", err)
	}
}
