// internal/adapters/db/order_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/internal/core/ports"
	"github.com/pawmart/petorder-be/internal/pkg/logger"
)

// Compile-time interface checks
var (
	_ ports.OrderRepository = (*OrderRepository)(nil)
	_ ports.OrderSequencer  = (*OrderRepository)(nil)
)

// OrderRepository persists the append-only order ledger and hands out
// order numbers from a durable counter. Orders are never updated or
// deleted once recorded.
type OrderRepository struct {
	db     ports.Querier
	logger *slog.Logger
	sb     sq.StatementBuilderType
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db ports.Querier, log *slog.Logger) *OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: log.With(slog.String("repository", "orders")),
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Record appends one order to the ledger.
func (r *OrderRepository) Record(ctx context.Context, order *domain.Order) error {
	query, args, err := r.sb.
		Insert("orders").
		Columns("purchaser", "category", "store", "order_id", "created_at").
		Values(order.Purchaser, order.Category, int(order.Store), order.OrderID, order.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.logger.ErrorContext(ctx, "failed to record order",
			slog.String("order_id", order.OrderID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to record order: %w", err)
	}

	r.logger.InfoContext(ctx, "order recorded",
		slog.String(string(logger.ContextKeyOrderID), order.OrderID),
		slog.Int("store", int(order.Store)))

	return nil
}

// Query returns all orders matching the filter, every condition ANDed.
// String comparisons are case-insensitive. Results carry insertion order;
// the ledger guarantees no sorting beyond that.
func (r *OrderRepository) Query(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	builder := r.sb.
		Select("purchaser", "category", "store", "order_id", "created_at").
		From("orders")

	if filter.Purchaser != nil {
		builder = builder.Where(sq.Expr("LOWER(purchaser) = LOWER(?)", *filter.Purchaser))
	}
	if filter.Category != nil {
		builder = builder.Where(sq.Expr("LOWER(category) = LOWER(?)", *filter.Category))
	}
	if filter.OrderID != nil {
		builder = builder.Where(sq.Expr("LOWER(order_id) = LOWER(?)", *filter.OrderID))
	}
	if filter.Store != nil {
		builder = builder.Where(sq.Eq{"store": int(*filter.Store)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		var store int
		if err := rows.Scan(&o.Purchaser, &o.Category, &store, &o.OrderID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		o.Store = domain.StoreID(store)
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order rows: %w", err)
	}

	return orders, nil
}

// Next increments the order counter atomically and returns the new value as
// a decimal string. The first order ever issued is "1". The single-row
// upsert makes concurrent purchases serialize on the row lock, so no two
// orders share a number.
func (r *OrderRepository) Next(ctx context.Context) (string, error) {
	const query = `
		INSERT INTO order_sequence (id, seq)
		VALUES (TRUE, 1)
		ON CONFLICT (id)
		DO UPDATE SET seq = order_sequence.seq + 1
		RETURNING seq`

	var seq int64
	if err := r.db.QueryRow(ctx, query).Scan(&seq); err != nil {
		r.logger.ErrorContext(ctx, "failed to advance order sequence",
			slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to advance order sequence: %w", err)
	}

	return strconv.FormatInt(seq, 10), nil
}
