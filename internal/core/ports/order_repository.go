// internal/core/ports/order_repository.go
package ports

import (
	"context"

	"github.com/pawmart/petorder-be/internal/core/domain"
)

// OrderRepository is the append-only sales ledger. Records are never
// updated or deleted once written.
type OrderRepository interface {
	// Record appends a completed order. No dedup is performed.
	Record(ctx context.Context, order *domain.Order) error

	// Query returns orders matching every given predicate. String fields
	// match case-insensitively and exactly. No sort order is guaranteed.
	Query(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

// OrderSequencer issues globally unique, strictly increasing order numbers.
// The counter lives in storage shared by every coordinator instance; the
// first call ever creates it at 1. Gaps are acceptable, duplicates are not.
type OrderSequencer interface {
	Next(ctx context.Context) (string, error)
}
