// internal/core/services/purchase.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/internal/core/ports"
)

// idempotencyPrefix namespaces purchase idempotency keys in redis.
const idempotencyPrefix = "idem:"

// idempotencyRecord is what lives behind an idempotency key: first a
// pending marker while the original request is in flight, then the
// committed result.
type idempotencyRecord struct {
	Pending bool                  `json:"pending"`
	Result  *ports.PurchaseResult `json:"result,omitempty"`
}

// PurchaseService coordinates the end-to-end purchase protocol:
// Validate → Resolve → Select → Claim → Sequence → Persist → Respond.
// It is stateless between requests; concurrency safety for racing
// purchases is delegated to the stores' atomic item delete, and order
// numbering to the shared durable sequencer.
type PurchaseService struct {
	stores   ports.StoreClient
	ledger   ports.OrderRepository
	seq      ports.OrderSequencer
	cache    ports.CacheRepository // nil disables idempotency keys
	idemTTL  time.Duration
	priority []domain.StoreID
	pick     func(n int) int
	logger   *slog.Logger
}

var _ ports.PurchaseService = (*PurchaseService)(nil)

// NewPurchaseService creates the coordinator. cache may be nil, in which
// case Idempotency-Key headers are ignored.
func NewPurchaseService(stores ports.StoreClient, ledger ports.OrderRepository,
	seq ports.OrderSequencer, cache ports.CacheRepository, idemTTL time.Duration,
	logger *slog.Logger) *PurchaseService {
	return &PurchaseService{
		stores:   stores,
		ledger:   ledger,
		seq:      seq,
		cache:    cache,
		idemTTL:  idemTTL,
		priority: domain.StorePriority,
		pick:     rand.Intn,
		logger:   logger.With(slog.String("service", "purchase")),
	}
}

// Purchase claims one item matching the request and records the sale.
func (s *PurchaseService) Purchase(ctx context.Context, req *domain.PurchaseRequest, idempotencyKey string) (*ports.PurchaseResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	useIdem := idempotencyKey != "" && s.cache != nil
	idemKey := idempotencyPrefix + idempotencyKey

	if useIdem {
		claimed, err := s.cache.SetNX(ctx, idemKey, idempotencyRecord{Pending: true}, s.idemTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to claim idempotency key: %w", err)
		}
		if !claimed {
			return s.replay(ctx, idemKey)
		}
	}

	result, claimed, err := s.purchase(ctx, req)

	if useIdem {
		switch {
		case err == nil:
			rec := idempotencyRecord{Result: result}
			if setErr := s.cache.SetWithTTL(ctx, idemKey, rec, s.idemTTL); setErr != nil {
				s.logger.WarnContext(ctx, "failed to store idempotent result",
					slog.String("key", idemKey),
					slog.String("error", setErr.Error()))
			}
		case claimed:
			// The item is gone but no order was committed. The key stays
			// held so a retry with it cannot claim a second item; duplicates
			// are rejected until the key expires.
			s.logger.WarnContext(ctx, "holding idempotency key after post-claim failure",
				slog.String("key", idemKey),
				slog.String("error", err.Error()))
		default:
			// Nothing was claimed; release the key so the caller may retry.
			if delErr := s.cache.Delete(ctx, idemKey); delErr != nil {
				s.logger.WarnContext(ctx, "failed to release idempotency key",
					slog.String("key", idemKey),
					slog.String("error", delErr.Error()))
			}
		}
	}

	return result, err
}

// replay answers a duplicate request for an idempotency key someone else
// holds. A committed result is returned as-is; a still-pending original
// rejects the duplicate rather than claiming a second item.
func (s *PurchaseService) replay(ctx context.Context, idemKey string) (*ports.PurchaseResult, error) {
	var rec idempotencyRecord
	if err := s.cache.Get(ctx, idemKey, &rec); err != nil {
		return nil, fmt.Errorf("failed to read idempotent result: %w", err)
	}
	if rec.Pending || rec.Result == nil {
		return nil, fmt.Errorf("purchase with this idempotency key is in flight: %w", domain.ErrClaimFailed)
	}

	s.logger.InfoContext(ctx, "replayed idempotent purchase",
		slog.String("order_id", rec.Result.Order.OrderID))
	return rec.Result, nil
}

// purchase runs the protocol proper: resolve and select an item, claim it,
// then sequence and persist the order. The claimed flag reports whether the
// store acknowledged the destructive delete, so the caller can tell
// retry-safe failures from post-claim ones.
func (s *PurchaseService) purchase(ctx context.Context, req *domain.PurchaseRequest) (*ports.PurchaseResult, bool, error) {
	resolved, item, err := s.selectItem(ctx, req)
	if err != nil {
		return nil, false, err
	}

	// The claim is the point of no return: once the store acknowledges the
	// delete, the item is gone and the request runs to completion.
	if err := s.stores.DeleteItem(ctx, resolved.Store, resolved.CategoryID, item.Name); err != nil {
		s.logger.WarnContext(ctx, "claim failed",
			slog.Int("store", int(resolved.Store)),
			slog.String("category_id", resolved.CategoryID),
			slog.String("item", item.Name),
			slog.String("error", err.Error()))
		return nil, false, fmt.Errorf("claim lost for item %q: %w", item.Name, domain.ErrClaimFailed)
	}

	orderID, err := s.seq.Next(ctx)
	if err != nil {
		// Claimed but not sequenced: the item is gone with no recorded
		// sale. Surfaced as an internal error and alerted on, not retried.
		s.logger.ErrorContext(ctx, "sequencer failed after successful claim",
			slog.Int("store", int(resolved.Store)),
			slog.String("item", item.Name),
			slog.String("error", err.Error()))
		return nil, true, fmt.Errorf("failed to sequence order: %w", err)
	}

	order := domain.Order{
		Purchaser: req.Purchaser,
		Category:  req.Category,
		Store:     resolved.Store,
		OrderID:   orderID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.ledger.Record(ctx, &order); err != nil {
		s.logger.ErrorContext(ctx, "ledger write failed after successful claim",
			slog.String("order_id", orderID),
			slog.Int("store", int(order.Store)),
			slog.String("item", item.Name),
			slog.String("error", err.Error()))
		return nil, true, fmt.Errorf("failed to record order %s: %w", orderID, err)
	}

	s.logger.InfoContext(ctx, "purchase committed",
		slog.String("order_id", orderID),
		slog.Int("store", int(order.Store)),
		slog.String("category", order.Category),
		slog.String("item", item.Name))

	return &ports.PurchaseResult{Order: order, ItemName: item.Name}, true, nil
}

// selectItem resolves the category and picks the item to claim. Selection
// is read-only and therefore safe against concurrent purchases; the claim
// decides races.
func (s *PurchaseService) selectItem(ctx context.Context, req *domain.PurchaseRequest) (*domain.ResolvedCategory, *domain.Item, error) {
	if req.Store != 0 {
		// A pinned store is authoritative: no fallback to its peer.
		resolved, err := s.resolveCategory(ctx, req.Store, req.Category)
		if err != nil {
			return nil, nil, err
		}
		if resolved == nil {
			return nil, nil, fmt.Errorf("category %q not in store %d: %w",
				req.Category, req.Store, domain.ErrNotAvailable)
		}
		item, err := s.selectInStore(ctx, resolved, req.ItemName)
		if err != nil {
			return nil, nil, err
		}
		if item == nil {
			return nil, nil, fmt.Errorf("no item matches in store %d: %w",
				req.Store, domain.ErrNotAvailable)
		}
		return resolved, item, nil
	}

	// No store pinned: consult stores in fixed priority order and stop at
	// the first one that can satisfy the request. Availability is not
	// pooled across stores.
	for _, store := range s.priority {
		resolved, err := s.resolveCategory(ctx, store, req.Category)
		if err != nil {
			if errors.Is(err, domain.ErrStoreUnavailable) {
				// Logged by the client; try the next store.
				continue
			}
			return nil, nil, err
		}
		if resolved == nil {
			continue
		}

		item, err := s.selectInStore(ctx, resolved, req.ItemName)
		if err != nil {
			if errors.Is(err, domain.ErrStoreUnavailable) {
				continue
			}
			return nil, nil, err
		}
		if item != nil {
			return resolved, item, nil
		}
	}

	return nil, nil, fmt.Errorf("no store can satisfy category %q: %w",
		req.Category, domain.ErrNotAvailable)
}

// resolveCategory finds the store-local id for a category name,
// case-insensitively. The pair is transient: local ids are not stable or
// comparable across stores and must be re-resolved per store, per request.
func (s *PurchaseService) resolveCategory(ctx context.Context, store domain.StoreID, name string) (*domain.ResolvedCategory, error) {
	cats, err := s.stores.ListCategories(ctx, store)
	if err != nil {
		return nil, err
	}

	for _, cat := range cats {
		if domain.EqualFold(cat.Name, name) {
			return &domain.ResolvedCategory{Store: store, CategoryID: cat.ID}, nil
		}
	}
	return nil, nil
}

// selectInStore picks an item within an already-resolved category: the
// exact named item when one was requested, otherwise a uniformly random
// in-stock item. (nil, nil) means the store cannot satisfy the request.
func (s *PurchaseService) selectInStore(ctx context.Context, resolved *domain.ResolvedCategory, itemName string) (*domain.Item, error) {
	if itemName != "" {
		return s.stores.GetItem(ctx, resolved.Store, resolved.CategoryID, itemName)
	}

	items, err := s.stores.ListItems(ctx, resolved.Store, resolved.CategoryID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[s.pick(len(items))], nil
}

// OrderService answers the owner's ledger queries.
type OrderService struct {
	ledger ports.OrderRepository
	logger *slog.Logger
}

var _ ports.OrderService = (*OrderService)(nil)

// NewOrderService creates the ledger query service.
func NewOrderService(ledger ports.OrderRepository, logger *slog.Logger) *OrderService {
	return &OrderService{
		ledger: ledger,
		logger: logger.With(slog.String("service", "orders")),
	}
}

// QueryOrders returns committed orders matching every filter predicate.
func (s *OrderService) QueryOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	orders, err := s.ledger.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	return orders, nil
}
