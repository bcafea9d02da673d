package ports

import (
	"context"

	"github.com/jcmexdev/partsmarket/internal/storefront/core/domain/entity"
)

// CatalogService is the port to the parts catalog API.
type CatalogService interface {
	// ListPublic returns every available part, optionally narrowed by filter.
	ListPublic(ctx context.Context, filter entity.PartFilter) ([]entity.Part, error)
	// ListMine returns the authenticated store owner's inventory.
	ListMine(ctx context.Context) ([]entity.Part, error)
	Get(ctx context.Context, id string) (*entity.Part, error)
	Create(ctx context.Context, input entity.PartInput) (*entity.Part, error)
	Update(ctx context.Context, id string, update entity.PartUpdate) (*entity.Part, error)
	Delete(ctx context.Context, id string) error
}
