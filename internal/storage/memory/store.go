package memory

import (
	"context"

	"github.com/yndnr/vitals/internal/core/domain"
	"github.com/yndnr/vitals/pkg/cmap"
)

// Store provides in-memory item storage.
type Store struct {
	items *cmap.Map[string, *domain.Item]
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		items: cmap.New[string, *domain.Item](),
	}
}

// Get retrieves an item by ID.
func (s *Store) Get(_ context.Context, id string) (*domain.Item, error) {
	item, ok := s.items.Get(id)
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return item.Clone(), nil
}

// Create stores a new item.
func (s *Store) Create(_ context.Context, item *domain.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if _, loaded := s.items.GetOrSet(item.ID, item.Clone()); loaded {
		return domain.ErrItemConflict
	}
	return nil
}

// Update applies fn to a copy of the stored item under the shard lock and
// stores the copy only if fn succeeds.
func (s *Store) Update(_ context.Context, id string, fn func(*domain.Item) error) (*domain.Item, error) {
	var fnErr error
	updated, ok := s.items.Update(id, func(existing *domain.Item) *domain.Item {
		next := existing.Clone()
		if fnErr = fn(next); fnErr != nil {
			return existing
		}
		return next
	})
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	if fnErr != nil {
		return nil, fnErr
	}
	return updated.Clone(), nil
}

// Delete removes an item.
func (s *Store) Delete(_ context.Context, id string) error {
	if _, ok := s.items.Pop(id); !ok {
		return domain.ErrItemNotFound
	}
	return nil
}

// List returns copies of all items in unspecified order.
func (s *Store) List(_ context.Context) ([]*domain.Item, error) {
	items := s.items.Values()
	for i, item := range items {
		items[i] = item.Clone()
	}
	return items, nil
}

// Count returns the number of stored items.
func (s *Store) Count(_ context.Context) (int, error) {
	return s.items.Count(), nil
}
