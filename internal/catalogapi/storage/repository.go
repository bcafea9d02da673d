// Package storage defines the persistence port for the catalog API.
// Handlers depend on this abstraction, not on SQLite directly, so the
// implementation can be swapped for Postgres or an in-memory fake in tests.
package storage

import (
	"context"
	"errors"

	"github.com/jcmexdev/partsmarket/internal/catalogapi/domain"
)

// ErrNotFound is returned when the requested record does not exist (or is
// not visible to the caller, e.g. a part outside their store).
var ErrNotFound = errors.New("storage: not found")

// ErrDuplicate is returned when a uniqueness constraint is violated,
// currently only the username.
var ErrDuplicate = errors.New("storage: duplicate")

// Repository is the persistence port.
type Repository interface {
	// CreateUser inserts a new user. Returns ErrDuplicate when the username
	// is already taken.
	CreateUser(ctx context.Context, user *domain.User) error
	// UserByUsername loads a user, with their store when they own one.
	UserByUsername(ctx context.Context, username string) (*domain.User, error)
	// UserByID loads a user by primary key, with their store.
	UserByID(ctx context.Context, id string) (*domain.User, error)
	// CreateStore inserts a seller storefront.
	CreateStore(ctx context.Context, store *domain.Store) error

	// CreatePart inserts a catalog item.
	CreatePart(ctx context.Context, part *domain.Part) error
	// PartByID loads a part scoped to storeID. Parts outside the store are
	// reported as ErrNotFound, not as a permission error.
	PartByID(ctx context.Context, id, storeID string) (*domain.Part, error)
	// PublicParts lists available parts matching the filter, newest first.
	PublicParts(ctx context.Context, filter domain.PartFilter) ([]domain.Part, error)
	// StoreParts lists a store's whole inventory, newest first.
	StoreParts(ctx context.Context, storeID string) ([]domain.Part, error)
	// UpdatePart rewrites the part's mutable fields.
	UpdatePart(ctx context.Context, part *domain.Part) error
	// DeletePart removes the part scoped to storeID.
	DeletePart(ctx context.Context, id, storeID string) error
}
