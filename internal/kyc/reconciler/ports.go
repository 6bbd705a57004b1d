package reconciler

import (
	"context"

	"github.com/google/uuid"

	"irdesk/internal/audit"
	"irdesk/internal/kyc/models"
)

// Provider re-fetches authoritative check state.
type Provider interface {
	GetCheck(ctx context.Context, checkID string) (*models.Check, error)
	GetReport(ctx context.Context, reportID string) (*models.Report, error)
}

type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Investor, error)
	FindByCheckID(ctx context.Context, checkID string) (*models.Investor, error)
	ListAwaitingOutcome(ctx context.Context, statuses []models.Status) ([]*models.Investor, error)
	Execute(ctx context.Context, id uuid.UUID, validate func(*models.Investor) error, mutate func(*models.Investor)) (*models.Investor, error)
}

// Locker is shared with the orchestrator so a reconciliation never interleaves
// with a screening of the same investor.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
