package petstore_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawmart/petorder-be/internal/adapters/petstore"
	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/test/helpers"
)

func newClient(t *testing.T, handler http.Handler) (*petstore.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := petstore.NewClient(map[domain.StoreID]string{
		domain.Store1: srv.URL,
	}, 2*time.Second, helpers.TestLogger())

	return client, srv
}

func TestClient_ListCategories(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"1","name":"dog","family":"Canidae","genus":"Canis","attributes":["Loyal"],"lifespan":10,"items":["Rex"]},
			{"id":"2","name":"cat","family":"Felidae","genus":"Felis","attributes":[],"lifespan":null,"items":[]}
		]`))
	}))

	cats, err := client.ListCategories(context.Background(), domain.Store1)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "dog", cats[0].Name)
	assert.Equal(t, "Canidae", cats[0].Family)
	assert.Equal(t, []string{"Rex"}, cats[0].Items)
	assert.Nil(t, cats[1].Lifespan)
}

func TestClient_ListItems(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories/7/items", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"Rex","birthdate":"01-02-2020","picture":"NA"},{"name":"Buddy","birthdate":"NA","picture":"NA"}]`))
	}))

	items, err := client.ListItems(context.Background(), domain.Store1, "7")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Rex", items[0].Name)
	assert.Equal(t, "01-02-2020", items[0].Birthdate)
}

func TestClient_GetItem(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantItem   bool
		wantErr    bool
		storeIsGon bool
	}{
		{
			name:     "found",
			status:   http.StatusOK,
			body:     `{"name":"Rex","birthdate":"NA","picture":"NA"}`,
			wantItem: true,
		},
		{
			name:   "not_found_resolves_to_nil",
			status: http.StatusNotFound,
			body:   `{"error":"not found"}`,
		},
		{
			name:    "server_error_is_unavailable",
			status:  http.StatusInternalServerError,
			body:    `boom`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/categories/3/items/Rex", r.URL.Path)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			item, err := client.GetItem(context.Background(), domain.Store1, "3", "Rex")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
				return
			}
			require.NoError(t, err)
			if tt.wantItem {
				require.NotNil(t, item)
				assert.Equal(t, "Rex", item.Name)
			} else {
				assert.Nil(t, item)
			}
		})
	}
}

func TestClient_DeleteItem(t *testing.T) {
	t.Run("claim_succeeds", func(t *testing.T) {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/categories/3/items/Rex", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}))

		err := client.DeleteItem(context.Background(), domain.Store1, "3", "Rex")
		require.NoError(t, err)
	})

	t.Run("lost_claim_is_not_found", func(t *testing.T) {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		err := client.DeleteItem(context.Background(), domain.Store1, "3", "Rex")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestClient_StoreUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := petstore.NewClient(map[domain.StoreID]string{
		domain.Store1: srv.URL,
	}, time.Second, helpers.TestLogger())

	_, err := client.ListCategories(context.Background(), domain.Store1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}

func TestClient_UnknownStore(t *testing.T) {
	client := petstore.NewClient(map[domain.StoreID]string{}, time.Second, helpers.TestLogger())

	_, err := client.ListCategories(context.Background(), domain.Store2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}
