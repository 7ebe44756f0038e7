// internal/handlers/orders.go
package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/internal/core/ports"
)

// OrdersHandler exposes the owner's ledger endpoints. Routes using it sit
// behind the owner-auth middleware.
type OrdersHandler struct {
	service ports.OrderService
	logger  *slog.Logger
}

// NewOrdersHandler creates an orders handler.
func NewOrdersHandler(service ports.OrderService, logger *slog.Logger) *OrdersHandler {
	return &OrdersHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "orders")),
	}
}

// ListOrders handles GET /orders.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseOrderFilter(r)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	orders, err := h.service.QueryOrders(ctx, *filter)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	if orders == nil {
		orders = []domain.Order{}
	}
	respondJSON(w, h.logger, http.StatusOK, orders)
}

// ExportOrders handles GET /orders/export, returning the filtered ledger
// as a spreadsheet.
func (h *OrdersHandler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseOrderFilter(r)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	orders, err := h.service.QueryOrders(ctx, *filter)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	data, err := ordersToExcel(orders)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate export",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, msgInternal)
		return
	}

	filename := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(ctx, "failed to write export response",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "orders exported",
		slog.Int("rows", len(orders)),
		slog.String("filename", filename))
}

// parseOrderFilter builds the ledger filter from the query string. Any key
// outside the allow-list rejects the whole query.
func parseOrderFilter(r *http.Request) (*domain.OrderFilter, error) {
	var filter domain.OrderFilter

	for key, values := range r.URL.Query() {
		if _, ok := domain.OrderFilterKeys[key]; !ok {
			return nil, fmt.Errorf("filter key %q is not allowed: %w", key, domain.ErrMalformed)
		}
		if len(values) == 0 {
			continue
		}
		value := values[0]

		switch key {
		case "purchaser":
			filter.Purchaser = &value
		case "category":
			filter.Category = &value
		case "orderId":
			filter.OrderID = &value
		case "store":
			store, err := domain.ParseStoreID(value)
			if err != nil {
				return nil, err
			}
			filter.Store = &store
		}
	}

	return &filter, nil
}

func ordersToExcel(orders []domain.Order) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range []string{"Order ID", "Purchaser", "Category", "Store", "Created At"} {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
	}

	for _, order := range orders {
		row := sheet.AddRow()
		row.AddCell().Value = order.OrderID
		row.AddCell().Value = order.Purchaser
		row.AddCell().Value = order.Category
		row.AddCell().Value = order.Store.String()
		row.AddCell().Value = order.CreatedAt.Format(time.RFC3339)
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}
