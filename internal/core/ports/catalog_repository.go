// internal/core/ports/catalog_repository.go
package ports

import (
	"context"

	"github.com/pawmart/petorder-be/internal/core/domain"
)

// CatalogRepository is the store service's persistence port for categories
// and their items. Every method operates on the single store the repository
// was created for; store-local ids never leak across stores.
type CatalogRepository interface {
	// Categories
	CreateCategory(ctx context.Context, cat *domain.Category) error
	FindCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// Items
	CreateItem(ctx context.Context, categoryID string, item *domain.Item) error
	FindItem(ctx context.Context, categoryID, name string) (*domain.Item, error)
	ListItems(ctx context.Context, categoryID string) ([]domain.Item, error)
	UpdateItem(ctx context.Context, categoryID, name string, item *domain.Item) error
	// DeleteItem returns the deleted item so the caller can release its
	// picture; domain.ErrNotFound when no row was removed. The row delete
	// is the atomic arbiter between racing claims.
	DeleteItem(ctx context.Context, categoryID, name string) (*domain.Item, error)
	// SetItemPicture records the stored picture filename once the async
	// download completes.
	SetItemPicture(ctx context.Context, categoryID, name, picture string) error

	// NextCategoryID returns the next store-local category id from the
	// store's durable counter.
	NextCategoryID(ctx context.Context) (string, error)
}
