// internal/core/domain/purchase.go
package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StoreID identifies one of the autonomous store instances.
type StoreID int

const (
	Store1 StoreID = 1
	Store2 StoreID = 2
)

// StorePriority is the fixed order in which stores are consulted when the
// caller does not pin one. Store 1 wins ties; availability is not pooled
// across stores.
var StorePriority = []StoreID{Store1, Store2}

// Valid reports whether the store id is one of the known stores.
func (s StoreID) Valid() bool {
	return s == Store1 || s == Store2
}

func (s StoreID) String() string {
	return strconv.Itoa(int(s))
}

// ParseStoreID converts a wire value (JSON number, numeric string, or int)
// into a StoreID. Anything outside {1,2} is malformed.
func ParseStoreID(v any) (StoreID, error) {
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("store is required: %w", ErrMalformed)
	case float64:
		if t != float64(int(t)) {
			return 0, fmt.Errorf("store must be an integer: %w", ErrMalformed)
		}
		return checkStore(StoreID(int(t)))
	case int:
		return checkStore(StoreID(t))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("store %q is not a number: %w", t, ErrMalformed)
		}
		return checkStore(StoreID(n))
	default:
		return 0, fmt.Errorf("store has unsupported type %T: %w", v, ErrMalformed)
	}
}

func checkStore(s StoreID) (StoreID, error) {
	if !s.Valid() {
		return 0, fmt.Errorf("store %d is not a known store: %w", s, ErrMalformed)
	}
	return s, nil
}

// Domain error taxonomy. The HTTP layer maps these to statuses; everything
// else surfaces as an internal error.
var (
	// ErrMalformed covers bad or missing request fields and disallowed
	// query filter keys.
	ErrMalformed = errors.New("malformed data")

	// ErrUnsupportedMedia is returned when a write endpoint receives a
	// non-JSON content type.
	ErrUnsupportedMedia = errors.New("expected application/json media type")

	// ErrNotAvailable means no item satisfied the request: the category is
	// absent from the required store(s), the store has no stock, or a named
	// item does not exist.
	ErrNotAvailable = errors.New("no pet of this type is available")

	// ErrClaimFailed means an item was selected but the destructive claim
	// against its store did not succeed, typically because a concurrent
	// purchase won the race.
	ErrClaimFailed = errors.New("failed to complete purchase")

	// ErrStoreUnavailable is the internal outcome for any failed store call:
	// network error, timeout, or non-2xx. Callers never see it directly; the
	// coordinator collapses it into ErrNotAvailable at the boundary.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is the store-side outcome for a missing category or item.
	ErrNotFound = errors.New("not found")

	// ErrConflict rejects a write that would violate a uniqueness or
	// referential rule, such as deleting a category that still has items.
	ErrConflict = errors.New("conflict")
)

// PurchaseRequest is the validated input to a purchase. Store and ItemName
// are optional; which ones are present determines how an item is selected.
type PurchaseRequest struct {
	Purchaser string
	Category  string
	Store     StoreID // 0 when the caller did not pin a store
	ItemName  string
}

// Validate checks the required fields. Store is validated during parsing
// because the wire format allows both numbers and numeric strings.
func (r *PurchaseRequest) Validate() error {
	if strings.TrimSpace(r.Purchaser) == "" {
		return fmt.Errorf("purchaser is required: %w", ErrMalformed)
	}
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("category is required: %w", ErrMalformed)
	}
	if r.Store != 0 && !r.Store.Valid() {
		return fmt.Errorf("store %d is not a known store: %w", r.Store, ErrMalformed)
	}
	return nil
}

// Order is the durable record of a completed purchase. It is append-only:
// once written it is never mutated or deleted. The claimed item's own name
// is deliberately not part of the record; it is only echoed back to the
// purchaser in the response.
type Order struct {
	Purchaser string    `json:"purchaser"`
	Category  string    `json:"category"`
	Store     StoreID   `json:"store"`
	OrderID   string    `json:"orderId"`
	CreatedAt time.Time `json:"-"`
}

// ResolvedCategory is the transient (store, store-local id) pair produced by
// category resolution. Local ids are not comparable across stores and must
// never be cached across requests.
type ResolvedCategory struct {
	Store      StoreID
	CategoryID string
}

// OrderFilter holds the allow-listed equality predicates for ledger queries.
// String fields match case-insensitively and exactly; Store matches the
// numeric value.
type OrderFilter struct {
	Purchaser *string
	Category  *string
	OrderID   *string
	Store     *StoreID
}

// OrderFilterKeys is the full allow-list of ledger query parameters. Any
// other key rejects the whole query as malformed rather than being ignored.
var OrderFilterKeys = map[string]struct{}{
	"purchaser": {},
	"category":  {},
	"orderId":   {},
	"store":     {},
}
