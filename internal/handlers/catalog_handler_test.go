// internal/handlers/catalog_handler_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/internal/handlers"
	"github.com/pawmart/petorder-be/test/helpers"
	"github.com/pawmart/petorder-be/test/mocks"
)

func newCatalogHandler(t *testing.T) (*mocks.MockCatalogService, http.Handler) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockCatalogService(ctrl)
	h := handlers.NewCatalogHandler(service, helpers.TestLogger())

	// Route with the same patterns the store binary registers, so path
	// values resolve in tests.
	mux := http.NewServeMux()
	mux.HandleFunc("POST /categories", h.CreateCategory)
	mux.HandleFunc("GET /categories", h.ListCategories)
	mux.HandleFunc("GET /categories/{id}", h.GetCategory)
	mux.HandleFunc("DELETE /categories/{id}", h.DeleteCategory)
	mux.HandleFunc("POST /categories/{id}/items", h.CreateItem)
	mux.HandleFunc("GET /categories/{id}/items", h.ListItems)
	mux.HandleFunc("GET /categories/{id}/items/{name}", h.GetItem)
	mux.HandleFunc("PUT /categories/{id}/items/{name}", h.UpdateItem)
	mux.HandleFunc("DELETE /categories/{id}/items/{name}", h.DeleteItem)
	mux.HandleFunc("GET /pictures/{filename}", h.GetPicture)

	return service, mux
}

func doJSON(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCatalogHandler_CreateCategory(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		service, mux := newCatalogHandler(t)

		service.EXPECT().
			CreateCategory(gomock.Any(), "dog").
			Return(helpers.TestCategory(), nil)

		rec := doJSON(mux, http.MethodPost, "/categories", `{"name":"dog"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var cat map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))
		assert.Equal(t, "dog", cat["name"])
		assert.Equal(t, "Canidae", cat["family"])
	})

	t.Run("duplicate_is_409", func(t *testing.T) {
		service, mux := newCatalogHandler(t)

		service.EXPECT().
			CreateCategory(gomock.Any(), "dog").
			Return(nil, fmt.Errorf("category %q already exists: %w", "dog", domain.ErrConflict))

		rec := doJSON(mux, http.MethodPost, "/categories", `{"name":"dog"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, decodeError(t, rec), "already exists")
	})

	t.Run("wrong_media_type_is_415", func(t *testing.T) {
		_, mux := newCatalogHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/categories", bytes.NewBufferString(`name=dog`))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestCatalogHandler_Categories(t *testing.T) {
	t.Run("list_with_filters", func(t *testing.T) {
		service, mux := newCatalogHandler(t)

		service.EXPECT().
			ListCategories(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, q domain.CategoryQuery) ([]domain.Category, error) {
				assert.Equal(t, "Canidae", q.Family)
				require.NotNil(t, q.Lifespan)
				assert.Equal(t, 10, *q.Lifespan)
				return []domain.Category{*helpers.TestCategory()}, nil
			})

		rec := doJSON(mux, http.MethodGet, "/categories?family=Canidae&lifespan=10", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown_filter_key_is_400", func(t *testing.T) {
		_, mux := newCatalogHandler(t)

		rec := doJSON(mux, http.MethodGet, "/categories?color=brown", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non_numeric_lifespan_is_400", func(t *testing.T) {
		_, mux := newCatalogHandler(t)

		rec := doJSON(mux, http.MethodGet, "/categories?lifespan=long", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get_missing_is_404", func(t *testing.T) {
		service, mux := newCatalogHandler(t)

		service.EXPECT().
			GetCategory(gomock.Any(), "99").
			Return(nil, fmt.Errorf("category 99: %w", domain.ErrNotFound))

		rec := doJSON(mux, http.MethodGet, "/categories/99", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not found", decodeError(t, rec))
	})

	t.Run("delete_empty_is_204", func(t *testing.T) {
		service, mux := newCatalogHandler(t)

		service.EXPECT().DeleteCategory(gomock.Any(), "1").Return(nil)

		rec := doJSON(mux, http.MethodDelete, "/categories/1", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("delete_non_empty_is_409", func(t *testing.T) {
		service, mux := newCatalogHandler(t)

		service.EXPECT().
			DeleteCategory(gomock.Any(), "1").
			Return(fmt.Errorf("category 1 still has 2 items: %w", domain.ErrConflict))

		rec := doJSON(mux, http.MethodDelete, "/categories/1", "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestCatalogHandler_Items(t *testing.T) {
	t.Run("create_passes_picture_url_through", func(t *testing.T) {
		service, mux := newCatalogHandler(t)

		service.EXPECT().
			CreateItem(gomock.Any(), "1", gomock.Any(), "http://img.example/rex.jpg").
			DoAndReturn(func(_ any, _ string, item *domain.Item, _ string) (*domain.Item, error) {
				assert.Equal(t, "Rex", item.Name)
				assert.Equal(t, "01-02-2020", item.Birthdate)
				item.Picture = domain.PicturePending
				return item, nil
			})

		rec := doJSON(mux, http.MethodPost, "/categories/1/items",
			`{"name":"Rex","birthdate":"01-02-2020","picture-url":"http://img.example/rex.jpg"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var item map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
		assert.Equal(t, domain.PicturePending, item["picture"])
	})

	t.Run("list_validates_birthdate_bounds", func(t *testing.T) {
		_, mux := newCatalogHandler(t)

		rec := doJSON(mux, http.MethodGet, "/categories/1/items?birthdateGT=2020-02-01", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update_returns_updated_item", func(t *testing.T) {
		service, mux := newCatalogHandler(t)

		service.EXPECT().
			UpdateItem(gomock.Any(), "1", "Rex", gomock.Any(), "").
			DoAndReturn(func(_ any, _, _ string, update *domain.Item, _ string) (*domain.Item, error) {
				assert.Equal(t, "Max", update.Name)
				update.Birthdate = "01-02-2020"
				update.Picture = domain.NA
				return update, nil
			})

		rec := doJSON(mux, http.MethodPut, "/categories/1/items/Rex", `{"name":"Max"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var item map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
		assert.Equal(t, "Max", item["name"])
	})

	t.Run("delete_claimed_item_races_to_404", func(t *testing.T) {
		service, mux := newCatalogHandler(t)

		service.EXPECT().
			DeleteItem(gomock.Any(), "1", "Rex").
			Return(fmt.Errorf("item %q in category 1: %w", "Rex", domain.ErrNotFound))

		rec := doJSON(mux, http.MethodDelete, "/categories/1/items/Rex", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete_winner_gets_204", func(t *testing.T) {
		service, mux := newCatalogHandler(t)

		service.EXPECT().DeleteItem(gomock.Any(), "1", "Rex").Return(nil)

		rec := doJSON(mux, http.MethodDelete, "/categories/1/items/Rex", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestCatalogHandler_GetPicture(t *testing.T) {
	t.Run("serves_bytes_with_content_type", func(t *testing.T) {
		service, mux := newCatalogHandler(t)

		service.EXPECT().
			GetPicture(gomock.Any(), "abc.jpg").
			Return([]byte{0xFF, 0xD8, 0xFF}, "image/jpeg", nil)

		rec := doJSON(mux, http.MethodGet, "/pictures/abc.jpg", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
		assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
		assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, rec.Body.Bytes())
	})

	t.Run("missing_is_404", func(t *testing.T) {
		service, mux := newCatalogHandler(t)

		service.EXPECT().
			GetPicture(gomock.Any(), "nope.png").
			Return(nil, "", fmt.Errorf("picture nope.png: %w", domain.ErrNotFound))

		rec := doJSON(mux, http.MethodGet, "/pictures/nope.png", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
