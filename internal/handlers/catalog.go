// internal/handlers/catalog.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/internal/core/ports"
)

// CatalogHandler exposes a store's category and item endpoints. These are
// the endpoints the purchase coordinator consumes over the wire.
type CatalogHandler struct {
	service ports.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(service ports.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "catalog")),
	}
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

type itemRequest struct {
	Name       string `json:"name"`
	Birthdate  string `json:"birthdate"`
	PictureURL string `json:"picture-url"`
}

// CreateCategory handles POST /categories.
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := requireJSON(r); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	var body createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, msgMalformed)
		return
	}

	cat, err := h.service.CreateCategory(r.Context(), body.Name)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, cat)
}

// ListCategories handles GET /categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	query, err := parseCategoryQuery(r)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	cats, err := h.service.ListCategories(r.Context(), *query)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, cats)
}

// GetCategory handles GET /categories/{id}.
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.service.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, cat)
}

// DeleteCategory handles DELETE /categories/{id}.
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateItem handles POST /categories/{id}/items.
func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	if err := requireJSON(r); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	var body itemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, msgMalformed)
		return
	}

	item := domain.Item{Name: body.Name, Birthdate: body.Birthdate}
	created, err := h.service.CreateItem(r.Context(), r.PathValue("id"), &item, body.PictureURL)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, created)
}

// ListItems handles GET /categories/{id}/items.
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	query, err := parseItemQuery(r)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	items, err := h.service.ListItems(r.Context(), r.PathValue("id"), *query)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, items)
}

// GetItem handles GET /categories/{id}/items/{name}.
func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.Context(), r.PathValue("id"), r.PathValue("name"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, item)
}

// UpdateItem handles PUT /categories/{id}/items/{name}.
func (h *CatalogHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if err := requireJSON(r); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	var body itemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, msgMalformed)
		return
	}

	update := domain.Item{Name: body.Name, Birthdate: body.Birthdate}
	updated, err := h.service.UpdateItem(r.Context(), r.PathValue("id"), r.PathValue("name"), &update, body.PictureURL)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteItem handles DELETE /categories/{id}/items/{name}. This is the
// coordinator's claim target: of two racing deletes exactly one gets 204.
func (h *CatalogHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), r.PathValue("id"), r.PathValue("name")); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPicture handles GET /pictures/{filename}.
func (h *CatalogHandler) GetPicture(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.service.GetPicture(r.Context(), r.PathValue("filename"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write picture response",
			slog.String("error", err.Error()))
	}
}

func parseCategoryQuery(r *http.Request) (*domain.CategoryQuery, error) {
	var query domain.CategoryQuery

	for key, values := range r.URL.Query() {
		if _, ok := domain.CategoryQueryKeys[key]; !ok {
			return nil, fmt.Errorf("filter key %q is not allowed: %w", key, domain.ErrMalformed)
		}
		if len(values) == 0 {
			continue
		}
		value := values[0]

		switch key {
		case "name":
			query.Name = value
		case "family":
			query.Family = value
		case "genus":
			query.Genus = value
		case "lifespan":
			lifespan, err := domain.ParseLifespan(value)
			if err != nil {
				return nil, fmt.Errorf("lifespan %q is not a number: %w", value, domain.ErrMalformed)
			}
			query.Lifespan = lifespan
		case "hasAttribute":
			query.HasAttribute = value
		}
	}

	return &query, nil
}

func parseItemQuery(r *http.Request) (*domain.ItemQuery, error) {
	var query domain.ItemQuery

	for key, values := range r.URL.Query() {
		if _, ok := domain.ItemQueryKeys[key]; !ok {
			return nil, fmt.Errorf("filter key %q is not allowed: %w", key, domain.ErrMalformed)
		}
		if len(values) == 0 {
			continue
		}
		value := values[0]

		switch key {
		case "name":
			query.Name = value
		case "birthdate":
			query.Birthdate = value
		case "picture":
			query.Picture = value
		case "birthdateGT":
			if _, err := domain.ParseBirthdate(value); err != nil {
				return nil, err
			}
			query.BirthdateGT = value
		case "birthdateLT":
			if _, err := domain.ParseBirthdate(value); err != nil {
				return nil, err
			}
			query.BirthdateLT = value
		}
	}

	return &query, nil
}
