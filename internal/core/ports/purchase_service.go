// internal/core/ports/purchase_service.go
package ports

import (
	"context"

	"github.com/pawmart/petorder-be/internal/core/domain"
)

// PurchaseResult is the committed outcome of a purchase: the persisted
// order plus the claimed item's name, which is echoed to the caller but
// never stored in the ledger.
type PurchaseResult struct {
	Order    domain.Order
	ItemName string
}

// PurchaseService runs the end-to-end purchase protocol. A non-nil error is
// always one of the domain taxonomy errors (or wraps one); any other error
// is an internal failure.
type PurchaseService interface {
	// Purchase claims one item matching the request from one store and
	// records the sale. idempotencyKey may be empty; when set, a repeated
	// call with the same key replays the original result without claiming
	// a second item.
	Purchase(ctx context.Context, req *domain.PurchaseRequest, idempotencyKey string) (*PurchaseResult, error)
}

// OrderService answers ledger queries for the owner endpoints.
type OrderService interface {
	QueryOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}
