package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"irdesk/internal/audit"
	"irdesk/internal/kyc/models"
)

// Provider is the subset of the verification provider the orchestrator drives.
type Provider interface {
	CreateSubject(ctx context.Context, in models.SubjectInput) (*models.Subject, error)
	CreateCheck(ctx context.Context, req models.CheckRequest) (*models.Check, error)
	GenerateSDKToken(ctx context.Context, subjectID string) (string, error)
}

// Store loads investors and applies atomic validate-then-mutate writes.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Investor, error)
	Execute(ctx context.Context, id uuid.UUID, validate func(*models.Investor) error, mutate func(*models.Investor)) (*models.Investor, error)
}

// Locker serializes screenings per investor. Acquire returns sentinel.ErrLocked
// when another screening holds the key.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
