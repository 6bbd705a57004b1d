package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"irdesk/internal/kyc/models"
	"irdesk/pkg/platform/sentinel"
)

type PostgresStoreSuite struct {
	suite.Suite
	mock  sqlmock.Sqlmock
	store *PostgresStore
	now   time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.mock = mock
	s.store = NewPostgresStore(sqlx.NewDb(db, "pgx"))
	s.now = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

var columns = []string{
	"investor_id", "name", "email", "type", "wallet_address", "kyc_status",
	"last_updated", "verification_details", "version", "created_at", "updated_at",
}

func (s *PostgresStoreSuite) row(id uuid.UUID, status string, details string) *sqlmock.Rows {
	return sqlmock.NewRows(columns).AddRow(
		id.String(), "Ada Lovelace", "ada@example.com", "individual", nil, status,
		s.now, []byte(details), int64(3), s.now, s.now,
	)
}

func (s *PostgresStoreSuite) TestFindByCheckID() {
	id := uuid.New()
	s.mock.ExpectQuery(regexp.QuoteMeta(`WHERE verification_details ->> 'checkId' = $1 AND verification_details ? 'checkId'`)).
		WithArgs("chk-1").
		WillReturnRows(s.row(id, "pending", `{"checkId":"chk-1","subjectId":"app-1"}`))

	inv, err := s.store.FindByCheckID(context.Background(), "chk-1")
	s.Require().NoError(err)
	s.Equal(id, inv.ID)
	s.Equal(models.StatusPending, inv.KYCStatus)
	s.Equal("app-1", inv.VerificationDetails.SubjectID())
	s.Equal(int64(3), inv.Version)
}

func (s *PostgresStoreSuite) TestFindByIDNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`WHERE investor_id = $1`)).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := s.store.FindByID(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCreateDuplicateIsConflict() {
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO investors`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	inv, err := models.NewInvestor(uuid.New(), "Ada", "ada@example.com", "individual", nil, s.now)
	s.Require().NoError(err)
	s.ErrorIs(s.store.Create(context.Background(), inv), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestExecuteCommitsMutation() {
	id := uuid.New()
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta(`WHERE investor_id = $1 FOR UPDATE`)).
		WithArgs(id).
		WillReturnRows(s.row(id, "pending", `{"checkId":"chk-1","note":"keep"}`))
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE investors SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	check := &models.Check{ID: "chk-1", Status: models.CheckComplete, Result: models.ResultClear}
	updated, err := s.store.Execute(context.Background(), id,
		func(i *models.Investor) error { return i.CanReconcile("chk-1") },
		func(i *models.Investor) {
			i.ApplyReconciled(check, models.StatusApproved, "Verification passed", s.now)
		},
	)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, updated.KYCStatus)
	s.Equal(int64(4), updated.Version)
	s.Equal("keep", updated.VerificationDetails["note"])
}

func (s *PostgresStoreSuite) TestExecuteValidationRollsBack() {
	id := uuid.New()
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WillReturnRows(s.row(id, "pending", `{"checkId":"chk-2"}`))
	s.mock.ExpectRollback()

	_, err := s.store.Execute(context.Background(), id,
		func(i *models.Investor) error { return i.CanReconcile("chk-1") },
		func(*models.Investor) { s.Fail("mutate must not run") },
	)
	s.Require().Error(err)
}

func (s *PostgresStoreSuite) TestExecuteMissingRow() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).WillReturnRows(sqlmock.NewRows(columns))
	s.mock.ExpectRollback()

	_, err := s.store.Execute(context.Background(), uuid.New(),
		func(*models.Investor) error { return nil },
		func(*models.Investor) {},
	)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListAwaitingOutcomeUsesCheckIndexPredicate() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`WHERE kyc_status = ANY($1::text[]) AND verification_details ? 'checkId'`)).
		WithArgs(pq.Array([]string{"pending", "not_started"})).
		WillReturnRows(s.row(uuid.New(), "pending", `{"checkId":"chk-1"}`))

	list, err := s.store.ListAwaitingOutcome(context.Background(),
		[]models.Status{models.StatusPending, models.StatusNotStarted})
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *PostgresStoreSuite) TestQueryErrorIsWrapped() {
	boom := errors.New("connection refused")
	s.mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at`)).WillReturnError(boom)

	_, err := s.store.List(context.Background())
	s.ErrorIs(err, boom)
}
