// internal/handlers/orders_handler_test.go
package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/internal/handlers"
	"github.com/pawmart/petorder-be/test/helpers"
	"github.com/pawmart/petorder-be/test/mocks"
)

func newOrdersHandler(t *testing.T) (*handlers.OrdersHandler, *mocks.MockOrderService) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockOrderService(ctrl)
	h := handlers.NewOrdersHandler(service, helpers.TestLogger())
	return h, service
}

func TestOrdersHandler_ListOrders(t *testing.T) {
	t.Run("returns_filtered_orders", func(t *testing.T) {
		h, service := newOrdersHandler(t)

		service.EXPECT().
			QueryOrders(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, filter domain.OrderFilter) ([]domain.Order, error) {
				require.NotNil(t, filter.Purchaser)
				assert.Equal(t, "Ana", *filter.Purchaser)
				require.NotNil(t, filter.Store)
				assert.Equal(t, domain.Store2, *filter.Store)
				assert.Nil(t, filter.Category)
				return []domain.Order{*helpers.TestOrder()}, nil
			})

		req := httptest.NewRequest(http.MethodGet, "/orders?purchaser=Ana&store=2", nil)
		rec := httptest.NewRecorder()
		h.ListOrders(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var orders []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
		require.Len(t, orders, 1)
		assert.Equal(t, "Ana", orders[0]["purchaser"])
		// CreatedAt is internal bookkeeping and stays off the wire.
		assert.NotContains(t, orders[0], "CreatedAt")
	})

	t.Run("empty_ledger_is_an_empty_array", func(t *testing.T) {
		h, service := newOrdersHandler(t)

		service.EXPECT().QueryOrders(gomock.Any(), gomock.Any()).Return(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		rec := httptest.NewRecorder()
		h.ListOrders(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("unknown_filter_key_rejects_whole_query", func(t *testing.T) {
		h, _ := newOrdersHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/orders?purchaser=Ana&petname=Rex", nil)
		rec := httptest.NewRecorder()
		h.ListOrders(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Malformed data", decodeError(t, rec))
	})

	t.Run("bad_store_filter_is_400", func(t *testing.T) {
		h, _ := newOrdersHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/orders?store=nine", nil)
		rec := httptest.NewRecorder()
		h.ListOrders(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestOrdersHandler_ExportOrders(t *testing.T) {
	h, service := newOrdersHandler(t)

	service.EXPECT().
		QueryOrders(gomock.Any(), gomock.Any()).
		Return([]domain.Order{
			*helpers.TestOrder(),
			*helpers.TestOrder(func(o *domain.Order) {
				o.Purchaser = "Bob"
				o.OrderID = "2"
				o.Store = domain.Store2
			}),
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders/export", nil)
	rec := httptest.NewRecorder()
	h.ExportOrders(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	file, err := xlsx.OpenBinary(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Orders", sheet.Name)
	require.Equal(t, 3, sheet.MaxRow) // header + 2 orders

	header, err := sheet.Row(0)
	require.NoError(t, err)
	assert.Equal(t, "Order ID", header.GetCell(0).Value)
	assert.Equal(t, "Purchaser", header.GetCell(1).Value)

	second, err := sheet.Row(2)
	require.NoError(t, err)
	assert.Equal(t, "2", second.GetCell(0).Value)
	assert.Equal(t, "Bob", second.GetCell(1).Value)
	assert.Equal(t, "2", second.GetCell(3).Value)
}

func TestOrdersHandler_ExportOrders_BadFilter(t *testing.T) {
	h, _ := newOrdersHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/orders/export?when=today", nil)
	rec := httptest.NewRecorder()
	h.ExportOrders(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
