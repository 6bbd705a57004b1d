// Package store persists investors and guards per-investor screenings.
package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"irdesk/internal/kyc/models"
	"irdesk/pkg/platform/sentinel"
)

// InMemoryStore keeps investors in a map with a check id index.
type InMemoryStore struct {
	mu        sync.RWMutex
	investors map[uuid.UUID]*models.Investor
	byCheckID map[string]uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		investors: make(map[uuid.UUID]*models.Investor),
		byCheckID: make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, inv *models.Investor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.investors[inv.ID]; ok {
		return sentinel.ErrConflict
	}
	if checkID := inv.CheckID(); checkID != "" {
		if _, taken := s.byCheckID[checkID]; taken {
			return sentinel.ErrConflict
		}
		s.byCheckID[checkID] = inv.ID
	}
	s.investors[inv.ID] = inv.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Investor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.investors[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return inv.Clone(), nil
}

func (s *InMemoryStore) FindByCheckID(_ context.Context, checkID string) (*models.Investor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCheckID[checkID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.investors[id].Clone(), nil
}

// List returns every investor, oldest first.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Investor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Investor, 0, len(s.investors))
	for _, inv := range s.investors {
		out = append(out, inv.Clone())
	}
	sortByCreated(out)
	return out, nil
}

// ListAwaitingOutcome returns investors correlated with a check whose stored
// status is one of statuses.
func (s *InMemoryStore) ListAwaitingOutcome(_ context.Context, statuses []models.Status) ([]*models.Investor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Investor
	for _, inv := range s.investors {
		if inv.CheckID() != "" && slices.Contains(statuses, inv.KYCStatus) {
			out = append(out, inv.Clone())
		}
	}
	sortByCreated(out)
	return out, nil
}

// Execute validates and mutates one investor atomically. The mutation is
// applied to a copy and only committed when validate passes.
func (s *InMemoryStore) Execute(_ context.Context, id uuid.UUID, validate func(*models.Investor) error, mutate func(*models.Investor)) (*models.Investor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.investors[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(current); err != nil {
		return nil, err
	}

	next := current.Clone()
	mutate(next)
	next.Version = current.Version + 1

	oldCheck, newCheck := current.CheckID(), next.CheckID()
	if newCheck != oldCheck && newCheck != "" {
		if owner, taken := s.byCheckID[newCheck]; taken && owner != id {
			return nil, sentinel.ErrConflict
		}
	}
	if oldCheck != "" && oldCheck != newCheck {
		delete(s.byCheckID, oldCheck)
	}
	if newCheck != "" {
		s.byCheckID[newCheck] = id
	}
	s.investors[id] = next
	return next.Clone(), nil
}

func sortByCreated(list []*models.Investor) {
	slices.SortFunc(list, func(a, b *models.Investor) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
}
