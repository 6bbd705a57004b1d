//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"irdesk/internal/kyc/models"
	"irdesk/internal/kyc/store"
	"irdesk/pkg/platform/sentinel"
	"irdesk/pkg/testutil/containers"
)

type PostgresStoreIntegrationSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	now      time.Time
}

func TestPostgresStoreIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreIntegrationSuite))
}

func (s *PostgresStoreIntegrationSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgresStore(s.postgres.DB)
	s.now = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreIntegrationSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "investors"))
}

func (s *PostgresStoreIntegrationSuite) create(name string) *models.Investor {
	inv, err := models.NewInvestor(uuid.New(), name, name+"@example.com", "individual", nil, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(context.Background(), inv))
	return inv
}

func noValidation(*models.Investor) error { return nil }

func (s *PostgresStoreIntegrationSuite) TestRoundTripAndCheckLookup() {
	ctx := context.Background()
	inv := s.create("ada")

	_, err := s.store.Execute(ctx, inv.ID, noValidation, func(i *models.Investor) {
		i.VerificationDetails["source"] = "csv-import"
		i.ApplyScreeningStarted("chk-1", "app-1", models.StatusPending, "Verification in progress", s.now)
	})
	s.Require().NoError(err)

	found, err := s.store.FindByCheckID(ctx, "chk-1")
	s.Require().NoError(err)
	s.Equal(inv.ID, found.ID)
	s.Equal(models.StatusPending, found.KYCStatus)
	s.Equal("2026-02-01", found.FormatLastUpdated())
	s.Equal("csv-import", found.VerificationDetails["source"])
	s.Equal(int64(2), found.Version)

	_, err = s.store.FindByCheckID(ctx, "chk-unknown")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreIntegrationSuite) TestCheckIDIsUnique() {
	ctx := context.Background()
	a := s.create("ada")
	b := s.create("bob")

	_, err := s.store.Execute(ctx, a.ID, noValidation, func(i *models.Investor) {
		i.ApplyScreeningStarted("chk-dup", "app-1", models.StatusPending, "", s.now)
	})
	s.Require().NoError(err)

	_, err = s.store.Execute(ctx, b.ID, noValidation, func(i *models.Investor) {
		i.ApplyScreeningStarted("chk-dup", "app-2", models.StatusPending, "", s.now)
	})
	s.ErrorIs(err, sentinel.ErrConflict)
}

// TestConcurrentExecuteSerializes verifies FOR UPDATE serializes writers so
// no version bump is lost.
func (s *PostgresStoreIntegrationSuite) TestConcurrentExecuteSerializes() {
	ctx := context.Background()
	inv := s.create("ada")
	const writers = 20

	var wg sync.WaitGroup
	var ok atomic.Int32
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(ctx, inv.ID, noValidation, func(i *models.Investor) {
				i.ApplyManualStatus(models.StatusPending, s.now)
			})
			if err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	got, err := s.store.FindByID(ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal(int64(ok.Load())+1, got.Version)
}

func (s *PostgresStoreIntegrationSuite) TestListAwaitingOutcome() {
	ctx := context.Background()
	pending := s.create("pending")
	_, err := s.store.Execute(ctx, pending.ID, noValidation, func(i *models.Investor) {
		i.ApplyScreeningStarted("chk-p", "app-p", models.StatusPending, "", s.now)
	})
	s.Require().NoError(err)
	s.create("idle")

	list, err := s.store.ListAwaitingOutcome(ctx, []models.Status{models.StatusPending, models.StatusNotStarted})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(pending.ID, list[0].ID)
}
