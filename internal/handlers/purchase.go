// internal/handlers/purchase.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/internal/core/ports"
)

// PurchaseHandler exposes the coordinator's purchase endpoint.
type PurchaseHandler struct {
	service    ports.PurchaseService
	idemHeader string
	logger     *slog.Logger
}

// NewPurchaseHandler creates a purchase handler. idemHeader names the
// optional idempotency key request header.
func NewPurchaseHandler(service ports.PurchaseService, idemHeader string, logger *slog.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		service:    service,
		idemHeader: idemHeader,
		logger:     logger.With(slog.String("handler", "purchase")),
	}
}

// purchaseRequest is the wire shape of a purchase. Store is decoded as a
// raw value because the contract accepts both a JSON number and a numeric
// string.
type purchaseRequest struct {
	Purchaser string      `json:"purchaser"`
	Category  string      `json:"category"`
	Store     interface{} `json:"store"`
	ItemName  string      `json:"itemName"`
}

// purchaseResponse echoes the committed order plus the claimed item's
// name. The name is transient; it never appears in the ledger.
type purchaseResponse struct {
	Purchaser string         `json:"purchaser"`
	Category  string         `json:"category"`
	Store     domain.StoreID `json:"store"`
	OrderID   string         `json:"orderId"`
	ItemName  string         `json:"itemName"`
}

// CreatePurchase handles POST /purchases.
func (h *PurchaseHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := requireJSON(r); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	var body purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, msgMalformed)
		return
	}

	req := domain.PurchaseRequest{
		Purchaser: body.Purchaser,
		Category:  body.Category,
		ItemName:  body.ItemName,
	}

	if body.Store != nil {
		store, err := domain.ParseStoreID(body.Store)
		if err != nil {
			respondDomainError(w, h.logger, err)
			return
		}
		req.Store = store
	}

	result, err := h.service.Purchase(ctx, &req, r.Header.Get(h.idemHeader))
	if err != nil {
		h.logger.InfoContext(ctx, "purchase rejected",
			slog.String("purchaser", req.Purchaser),
			slog.String("category", req.Category),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, purchaseResponse{
		Purchaser: result.Order.Purchaser,
		Category:  result.Order.Category,
		Store:     result.Order.Store,
		OrderID:   result.Order.OrderID,
		ItemName:  result.ItemName,
	})
}
