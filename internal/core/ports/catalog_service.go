// internal/core/ports/catalog_service.go
package ports

import (
	"context"

	"github.com/pawmart/petorder-be/internal/core/domain"
)

// CatalogService is the store's business logic over its own catalog. It is
// consumed by the store HTTP handlers; the coordinator never sees it and
// only talks to stores over the wire.
type CatalogService interface {
	// CreateCategory registers a new category, resolving its taxonomy from
	// the external animals data source. Duplicate names (case-insensitive)
	// are rejected.
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	ListCategories(ctx context.Context, q domain.CategoryQuery) ([]domain.Category, error)
	// DeleteCategory removes an empty category; one that still has items
	// is a conflict.
	DeleteCategory(ctx context.Context, id string) error

	// CreateItem adds an item to a category. A picture URL, when given, is
	// fetched asynchronously; until then the item's picture is pending.
	CreateItem(ctx context.Context, categoryID string, item *domain.Item, pictureURL string) (*domain.Item, error)
	GetItem(ctx context.Context, categoryID, name string) (*domain.Item, error)
	ListItems(ctx context.Context, categoryID string, q domain.ItemQuery) ([]domain.Item, error)
	// UpdateItem renames an item and/or replaces its picture.
	UpdateItem(ctx context.Context, categoryID, name string, item *domain.Item, pictureURL string) (*domain.Item, error)
	// DeleteItem removes an item and releases its stored picture. This is
	// the claim target: the underlying row delete arbitrates races.
	DeleteItem(ctx context.Context, categoryID, name string) error

	// GetPicture returns a stored picture's bytes and content type.
	GetPicture(ctx context.Context, filename string) ([]byte, string, error)
}
