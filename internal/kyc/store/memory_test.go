package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"irdesk/internal/kyc/models"
	"irdesk/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.now = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) newInvestor(name string) *models.Investor {
	inv, err := models.NewInvestor(uuid.New(), name, name+"@example.com", "individual", nil, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(context.Background(), inv))
	return inv
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	inv := s.newInvestor("ada")

	got, err := s.store.FindByID(ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal(inv.Email, got.Email)

	s.ErrorIs(s.store.Create(ctx, inv), sentinel.ErrConflict)

	_, err = s.store.FindByID(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestReturnedCopiesAreIsolated() {
	ctx := context.Background()
	inv := s.newInvestor("ada")

	got, err := s.store.FindByID(ctx, inv.ID)
	s.Require().NoError(err)
	got.VerificationDetails["checkId"] = "tampered"
	got.KYCStatus = models.StatusApproved

	again, err := s.store.FindByID(ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusNotStarted, again.KYCStatus)
	s.Empty(again.CheckID())
}

func (s *InMemoryStoreSuite) TestExecuteMaintainsCheckIndex() {
	ctx := context.Background()
	inv := s.newInvestor("ada")
	noop := func(*models.Investor) error { return nil }

	updated, err := s.store.Execute(ctx, inv.ID, noop, func(i *models.Investor) {
		i.ApplyScreeningStarted("chk-1", "app-1", models.StatusPending, "Verification in progress", s.now)
	})
	s.Require().NoError(err)
	s.Equal(int64(2), updated.Version)

	found, err := s.store.FindByCheckID(ctx, "chk-1")
	s.Require().NoError(err)
	s.Equal(inv.ID, found.ID)

	// re-screening moves the correlation
	_, err = s.store.Execute(ctx, inv.ID, noop, func(i *models.Investor) {
		i.ApplyScreeningStarted("chk-2", "app-2", models.StatusPending, "Verification in progress", s.now)
	})
	s.Require().NoError(err)
	_, err = s.store.FindByCheckID(ctx, "chk-1")
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindByCheckID(ctx, "chk-2")
	s.NoError(err)
}

func (s *InMemoryStoreSuite) TestExecuteValidationFailureLeavesRecord() {
	ctx := context.Background()
	inv := s.newInvestor("ada")
	rejected := errors.New("rejected")

	_, err := s.store.Execute(ctx, inv.ID,
		func(*models.Investor) error { return rejected },
		func(i *models.Investor) { i.KYCStatus = models.StatusApproved },
	)
	s.ErrorIs(err, rejected)

	got, err := s.store.FindByID(ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusNotStarted, got.KYCStatus)
	s.Equal(int64(1), got.Version)
}

func (s *InMemoryStoreSuite) TestExecuteRejectsCheckOwnedByAnotherInvestor() {
	ctx := context.Background()
	noop := func(*models.Investor) error { return nil }
	a := s.newInvestor("ada")
	b := s.newInvestor("bob")

	_, err := s.store.Execute(ctx, a.ID, noop, func(i *models.Investor) {
		i.ApplyScreeningStarted("chk-1", "app-1", models.StatusPending, "", s.now)
	})
	s.Require().NoError(err)

	_, err = s.store.Execute(ctx, b.ID, noop, func(i *models.Investor) {
		i.ApplyScreeningStarted("chk-1", "app-9", models.StatusPending, "", s.now)
	})
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestConcurrentExecuteBumpsVersionOncePerWrite() {
	ctx := context.Background()
	inv := s.newInvestor("ada")
	const writers = 50

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.store.Execute(ctx, inv.ID,
				func(*models.Investor) error { return nil },
				func(i *models.Investor) { i.ApplyManualStatus(models.StatusPending, s.now) },
			)
		}()
	}
	wg.Wait()

	got, err := s.store.FindByID(ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal(int64(writers+1), got.Version)
}

func (s *InMemoryStoreSuite) TestListAwaitingOutcome() {
	ctx := context.Background()
	noop := func(*models.Investor) error { return nil }

	pending := s.newInvestor("pending")
	_, err := s.store.Execute(ctx, pending.ID, noop, func(i *models.Investor) {
		i.ApplyScreeningStarted("chk-p", "app-p", models.StatusPending, "", s.now)
	})
	s.Require().NoError(err)

	s.newInvestor("never-screened")

	approved := s.newInvestor("approved")
	_, err = s.store.Execute(ctx, approved.ID, noop, func(i *models.Investor) {
		i.ApplyScreeningStarted("chk-a", "app-a", models.StatusApproved, "", s.now)
	})
	s.Require().NoError(err)

	list, err := s.store.ListAwaitingOutcome(ctx, []models.Status{models.StatusPending, models.StatusNotStarted})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(pending.ID, list[0].ID)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}
