package store

import (
	"context"
	"sort"
	"sync"

	"marketdesk/internal/listing/models"
	"marketdesk/pkg/domain"
)

// InMemoryStore keeps listings in a map. Suitable for tests and single-node
// development; production uses PostgresStore.
//
// Every listing crossing the store boundary is cloned, in both directions, so
// callers never share mutable state with the store or with each other.
type InMemoryStore struct {
	mu       sync.RWMutex
	listings map[domain.ListingID]*models.Listing
}

// NewInMemory creates an empty in-memory listing store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		listings: make(map[domain.ListingID]*models.Listing),
	}
}

// Create saves a new listing. Returns ErrConflict when the ID already exists.
func (s *InMemoryStore) Create(ctx context.Context, l *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.listings[l.ID]; exists {
		return ErrConflict
	}
	s.listings[l.ID] = l.Clone()
	return nil
}

// Update replaces an existing listing. Returns ErrNotFound when absent.
func (s *InMemoryStore) Update(ctx context.Context, l *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.listings[l.ID]; !exists {
		return ErrNotFound
	}
	s.listings[l.ID] = l.Clone()
	return nil
}

// FindByID returns the listing or ErrNotFound.
func (s *InMemoryStore) FindByID(ctx context.Context, id domain.ListingID) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, exists := s.listings[id]
	if !exists {
		return nil, ErrNotFound
	}
	return l.Clone(), nil
}

// List returns listings matching the filter, newest first.
func (s *InMemoryStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		if filter.Matches(l) {
			out = append(out, l.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes a listing. Returns ErrNotFound when absent.
func (s *InMemoryStore) Delete(ctx context.Context, id domain.ListingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.listings[id]; !exists {
		return ErrNotFound
	}
	delete(s.listings, id)
	return nil
}

// Execute atomically loads a listing, runs the validate callback, and applies
// the mutate callback under lock. The validate error aborts the mutation and
// is returned as-is so services can branch on its code.
func (s *InMemoryStore) Execute(ctx context.Context, id domain.ListingID,
	validate func(l *models.Listing) error,
	mutate func(l *models.Listing),
) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, exists := s.listings[id]
	if !exists {
		return nil, ErrNotFound
	}
	work := l.Clone()
	if err := validate(work); err != nil {
		return nil, err
	}
	mutate(work)
	s.listings[id] = work
	return work.Clone(), nil
}

// CountByStatus returns the number of listings per status.
func (s *InMemoryStore) CountByStatus(ctx context.Context) (map[domain.ListingStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.ListingStatus]int)
	for _, l := range s.listings {
		counts[l.Status]++
	}
	return counts, nil
}

// CountByType returns the number of listings per type.
func (s *InMemoryStore) CountByType(ctx context.Context) (map[domain.ListingType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.ListingType]int)
	for _, l := range s.listings {
		counts[l.Type]++
	}
	return counts, nil
}

// Recent returns the n most recently created listings.
func (s *InMemoryStore) Recent(ctx context.Context, n int) ([]*models.Listing, error) {
	all, err := s.List(ctx, models.ListFilter{})
	if err != nil {
		return nil, err
	}
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}
