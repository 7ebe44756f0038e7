// internal/core/ports/store_client.go
package ports

import (
	"context"

	"github.com/pawmart/petorder-be/internal/core/domain"
)

// StoreClient is the typed client for one autonomous store's inventory API.
// Every call has a bounded timeout; network failures, timeouts, and non-2xx
// responses are all reported as domain.ErrStoreUnavailable and are never
// distinguished to callers. The client does not retry — retry and fallback
// policy belongs to the coordinator so a slow store is not hit twice while
// a fast peer could serve the request.
type StoreClient interface {
	// ListCategories returns every category the store carries.
	ListCategories(ctx context.Context, store domain.StoreID) ([]domain.Category, error)

	// ListItems returns all items in a category.
	ListItems(ctx context.Context, store domain.StoreID, categoryID string) ([]domain.Item, error)

	// GetItem fetches one item by name. A missing item is (nil, nil).
	GetItem(ctx context.Context, store domain.StoreID, categoryID, itemName string) (*domain.Item, error)

	// DeleteItem performs the destructive claim. Only an acknowledged
	// removal returns nil; a missing item returns domain.ErrNotFound.
	DeleteItem(ctx context.Context, store domain.StoreID, categoryID, itemName string) error
}
