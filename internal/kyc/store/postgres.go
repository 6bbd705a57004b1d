package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"irdesk/internal/kyc/models"
	"irdesk/internal/platform/postgres"
	"irdesk/pkg/platform/sentinel"
	"irdesk/pkg/platform/tx"
)

const uniqueViolation = "23505"

// hasCheckID repeats the predicate of the partial check-id index so the
// planner can use it.
const hasCheckID = `verification_details ? 'checkId'`

const investorColumns = `investor_id, name, email, type, wallet_address, kyc_status,
	last_updated, verification_details, version, created_at, updated_at`

// PostgresStore persists investors in the investors table.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// querier returns the transaction in ctx, or the pool.
func (s *PostgresStore) querier(ctx context.Context) sqlx.ExtContext {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, inv *models.Investor) error {
	_, err := sqlx.NamedExecContext(ctx, s.querier(ctx), `
		INSERT INTO investors (`+investorColumns+`)
		VALUES (:investor_id, :name, :email, :type, :wallet_address, :kyc_status,
			:last_updated, :verification_details, :version, :created_at, :updated_at)`, inv)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert investor: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Investor, error) {
	var inv models.Investor
	err := sqlx.GetContext(ctx, s.querier(ctx), &inv,
		`SELECT `+investorColumns+` FROM investors WHERE investor_id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find investor: %w", err)
	}
	return &inv, nil
}

// FindByCheckID resolves a provider check to its investor through the
// expression index on verification_details->>'checkId'.
func (s *PostgresStore) FindByCheckID(ctx context.Context, checkID string) (*models.Investor, error) {
	var inv models.Investor
	err := sqlx.GetContext(ctx, s.querier(ctx), &inv,
		`SELECT `+investorColumns+` FROM investors
		WHERE verification_details ->> 'checkId' = $1 AND `+hasCheckID, checkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find investor by check: %w", err)
	}
	return &inv, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Investor, error) {
	var out []*models.Investor
	err := sqlx.SelectContext(ctx, s.querier(ctx), &out,
		`SELECT `+investorColumns+` FROM investors ORDER BY created_at, investor_id`)
	if err != nil {
		return nil, fmt.Errorf("list investors: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListAwaitingOutcome(ctx context.Context, statuses []models.Status) ([]*models.Investor, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	var out []*models.Investor
	if err := sqlx.SelectContext(ctx, s.querier(ctx), &out,
		`SELECT `+investorColumns+` FROM investors
		WHERE kyc_status = ANY($1::text[]) AND `+hasCheckID+`
		ORDER BY created_at, investor_id`, pq.Array(names)); err != nil {
		return nil, fmt.Errorf("list awaiting investors: %w", err)
	}
	return out, nil
}

// Execute locks the row with SELECT ... FOR UPDATE, validates, mutates and
// writes it back in one transaction. version is bumped on every write.
func (s *PostgresStore) Execute(ctx context.Context, id uuid.UUID, validate func(*models.Investor) error, mutate func(*models.Investor)) (*models.Investor, error) {
	var updated *models.Investor
	err := postgres.RunInTx(ctx, s.db, func(txCtx context.Context) error {
		q := s.querier(txCtx)

		var current models.Investor
		err := sqlx.GetContext(txCtx, q, &current,
			`SELECT `+investorColumns+` FROM investors WHERE investor_id = $1 FOR UPDATE`, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock investor: %w", err)
		}
		if err := validate(&current); err != nil {
			return err
		}

		next := current.Clone()
		mutate(next)
		next.Version = current.Version + 1

		_, err = sqlx.NamedExecContext(txCtx, q, `
			UPDATE investors SET
				name = :name,
				email = :email,
				type = :type,
				wallet_address = :wallet_address,
				kyc_status = :kyc_status,
				last_updated = :last_updated,
				verification_details = :verification_details,
				version = :version,
				updated_at = :updated_at
			WHERE investor_id = :investor_id`, next)
		if err != nil {
			if isUniqueViolation(err) {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("update investor: %w", err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
