package service

import (
	"cmp"
	"context"
	"slices"

	"github.com/yndnr/vitals/internal/core/domain"
)

// DefaultMaxItems bounds the demo store.
const DefaultMaxItems = 10000

// ItemRepository defines the storage interface for items.
type ItemRepository interface {
	// Create stores a new item. It fails with domain.ErrItemConflict when
	// the ID is taken.
	Create(ctx context.Context, item *domain.Item) error

	// Get retrieves an item by ID.
	Get(ctx context.Context, id string) (*domain.Item, error)

	// Update applies fn to the stored item atomically.
	Update(ctx context.Context, id string, fn func(*domain.Item) error) (*domain.Item, error)

	// Delete removes an item by ID.
	Delete(ctx context.Context, id string) error

	// List returns all items in unspecified order.
	List(ctx context.Context) ([]*domain.Item, error)

	// Count returns the number of stored items.
	Count(ctx context.Context) (int, error)
}

// ItemService handles the demo item lifecycle.
type ItemService struct {
	repo     ItemRepository
	maxItems int
}

// ItemOption configures an ItemService.
type ItemOption func(*ItemService)

// WithMaxItems caps the number of stored items. Zero or less disables
// the cap.
func WithMaxItems(n int) ItemOption {
	return func(s *ItemService) { s.maxItems = n }
}

// NewItemService creates a new ItemService.
func NewItemService(repo ItemRepository, opts ...ItemOption) *ItemService {
	s := &ItemService{repo: repo, maxItems: DefaultMaxItems}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all items ordered by creation time, then ID.
func (s *ItemService) List(ctx context.Context) ([]*domain.Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(items, func(a, b *domain.Item) int {
		if c := cmp.Compare(a.CreatedAt, b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return items, nil
}

// Create validates and stores a new item.
func (s *ItemService) Create(ctx context.Context, name, value string) (*domain.Item, error) {
	if s.maxItems > 0 {
		n, err := s.repo.Count(ctx)
		if err != nil {
			return nil, err
		}
		if n >= s.maxItems {
			return nil, domain.ErrItemQuotaExceeded.WithDetailsf("limit %d", s.maxItems)
		}
	}

	item, err := domain.NewItem(name, value)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item.Clone(), nil
}

// Get returns the item with the given ID.
func (s *ItemService) Get(ctx context.Context, id string) (*domain.Item, error) {
	if id == "" {
		return nil, domain.ErrMissingArgument.WithDetails("id")
	}
	return s.repo.Get(ctx, id)
}

// Update replaces the name and value of an existing item.
func (s *ItemService) Update(ctx context.Context, id, name, value string) (*domain.Item, error) {
	if id == "" {
		return nil, domain.ErrMissingArgument.WithDetails("id")
	}
	return s.repo.Update(ctx, id, func(item *domain.Item) error {
		return item.Update(name, value)
	})
}

// Delete removes the item with the given ID.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrMissingArgument.WithDetails("id")
	}
	return s.repo.Delete(ctx, id)
}
