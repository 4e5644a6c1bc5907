// Package domain defines the core domain models for vitals.
package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Item constraints for the demo data API.
const (
	MaxItemNameLength  = 128
	MaxItemValueLength = 4096

	// ItemIDPrefix is the prefix for item IDs.
	ItemIDPrefix = "item-"
)

// Item is a record served by the demo /data API.
type Item struct {
	// ID is the unique identifier. Format: item-{ulid_lowercase}.
	ID string `json:"id"`

	// Name is a short human-readable label.
	Name string `json:"name"`

	// Value is an opaque payload.
	Value string `json:"value,omitempty"`

	// CreatedAt is the creation timestamp (Unix milliseconds).
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the last modification timestamp (Unix milliseconds).
	UpdatedAt int64 `json:"updated_at"`
}

// NewItem creates a new Item with a generated ID.
func NewItem(name, value string) (*Item, error) {
	id, err := GenerateItemID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	item := &Item{
		ID:        id,
		Name:      name,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// GenerateItemID generates a new item ID using ULID.
func GenerateItemID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return ItemIDPrefix + strings.ToLower(id.String()), nil
}

// Validate checks the item fields against the constraints.
func (i *Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrItemValidation.WithDetails("name is required")
	}
	if len(i.Name) > MaxItemNameLength {
		return ErrItemValidation.WithDetailsf("name exceeds %d characters", MaxItemNameLength)
	}
	if len(i.Value) > MaxItemValueLength {
		return ErrItemValidation.WithDetailsf("value exceeds %d bytes", MaxItemValueLength)
	}
	return nil
}

// Update replaces the mutable fields and bumps UpdatedAt.
func (i *Item) Update(name, value string) error {
	next := *i
	next.Name = name
	next.Value = value
	if err := next.Validate(); err != nil {
		return err
	}
	i.Name = name
	i.Value = value
	i.UpdatedAt = time.Now().UnixMilli()
	return nil
}

// Clone returns a copy of the item.
func (i *Item) Clone() *Item {
	c := *i
	return &c
}
