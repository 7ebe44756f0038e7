// internal/adapters/db/order_repository_test.go
package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawmart/petorder-be/internal/adapters/db"
	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/test/helpers"
)

func newOrderRepo(t *testing.T) (*db.OrderRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return db.NewOrderRepository(mock, helpers.TestLogger()), mock
}

func TestOrderRepository_Record(t *testing.T) {
	repo, mock := newOrderRepo(t)
	ctx := context.Background()

	order := helpers.TestOrder()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(order.Purchaser, order.Category, int(order.Store), order.OrderID, order.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Record(ctx, order))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Record_Error(t *testing.T) {
	repo, mock := newOrderRepo(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	err := repo.Record(ctx, helpers.TestOrder())
	assert.Error(t, err)
}

func TestOrderRepository_Query(t *testing.T) {
	t.Run("no_filter_returns_everything", func(t *testing.T) {
		repo, mock := newOrderRepo(t)
		ctx := context.Background()

		now := time.Now().UTC()
		mock.ExpectQuery("SELECT purchaser, category, store, order_id, created_at FROM orders").
			WillReturnRows(pgxmock.NewRows([]string{"purchaser", "category", "store", "order_id", "created_at"}).
				AddRow("Ana", "dog", 1, "1", now).
				AddRow("Bob", "cat", 2, "2", now))

		orders, err := repo.Query(ctx, domain.OrderFilter{})
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, domain.Store1, orders[0].Store)
		assert.Equal(t, domain.Store2, orders[1].Store)
	})

	t.Run("string_filters_compare_case_insensitively", func(t *testing.T) {
		repo, mock := newOrderRepo(t)
		ctx := context.Background()

		purchaser := "ANA"
		mock.ExpectQuery(`LOWER\(purchaser\) = LOWER\(\$1\)`).
			WithArgs(purchaser).
			WillReturnRows(pgxmock.NewRows([]string{"purchaser", "category", "store", "order_id", "created_at"}).
				AddRow("Ana", "dog", 1, "1", time.Now().UTC()))

		orders, err := repo.Query(ctx, domain.OrderFilter{Purchaser: &purchaser})
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "Ana", orders[0].Purchaser)
	})

	t.Run("store_filter_matches_numeric_value", func(t *testing.T) {
		repo, mock := newOrderRepo(t)
		ctx := context.Background()

		store := domain.Store2
		mock.ExpectQuery("FROM orders WHERE store").
			WithArgs(2).
			WillReturnRows(pgxmock.NewRows([]string{"purchaser", "category", "store", "order_id", "created_at"}))

		orders, err := repo.Query(ctx, domain.OrderFilter{Store: &store})
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestOrderRepository_Next(t *testing.T) {
	repo, mock := newOrderRepo(t)
	ctx := context.Background()

	mock.ExpectQuery("INSERT INTO order_sequence").
		WillReturnRows(pgxmock.NewRows([]string{"seq"}).AddRow(int64(1)))
	mock.ExpectQuery("INSERT INTO order_sequence").
		WillReturnRows(pgxmock.NewRows([]string{"seq"}).AddRow(int64(2)))

	first, err := repo.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", first)

	second, err := repo.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", second)
}

func TestOrderRepository_Next_Error(t *testing.T) {
	repo, mock := newOrderRepo(t)
	ctx := context.Background()

	mock.ExpectQuery("INSERT INTO order_sequence").
		WillReturnError(errors.New("deadlock detected"))

	_, err := repo.Next(ctx)
	assert.Error(t, err)
}
