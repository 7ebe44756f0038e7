package taxonomy_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/pawmart/petorder-be/internal/adapters/redis_adapter"
	"github.com/pawmart/petorder-be/internal/adapters/taxonomy"
	"github.com/pawmart/petorder-be/test/helpers"
)

const ninjaResponse = `[
	{
		"name": "Dog",
		"taxonomy": {"family": "Canidae", "genus": "Canis"},
		"characteristics": {"temperament": "Loyal, playful", "lifespan": "10 - 13 years"}
	},
	{
		"name": "African Wild Dog",
		"taxonomy": {"family": "Canidae", "genus": "Lycaon"},
		"characteristics": {"group_behavior": "Pack", "lifespan": "11 years"}
	}
]`

func TestNinjaResolver_Resolve(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		assert.Equal(t, "dog", r.URL.Query().Get("name"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(ninjaResponse))
	}))
	defer srv.Close()

	resolver := taxonomy.NewNinjaResolver(srv.URL, "test-key", time.Second, nil, 0, helpers.TestLogger())

	tax, err := resolver.Resolve(context.Background(), "dog")
	require.NoError(t, err)
	require.NotNil(t, tax)

	assert.Equal(t, "test-key", gotKey)
	// Exact case-insensitive match: "Dog", not "African Wild Dog"
	assert.Equal(t, "Dog", tax.Name)
	assert.Equal(t, "Canidae", tax.Family)
	assert.Equal(t, "Canis", tax.Genus)
	assert.Equal(t, []string{"Loyal", "playful"}, tax.Attributes)
	require.NotNil(t, tax.Lifespan)
	assert.Equal(t, 10, *tax.Lifespan)
}

func TestNinjaResolver_NoExactMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(ninjaResponse))
	}))
	defer srv.Close()

	resolver := taxonomy.NewNinjaResolver(srv.URL, "test-key", time.Second, nil, 0, helpers.TestLogger())

	tax, err := resolver.Resolve(context.Background(), "wild dog")
	require.NoError(t, err)
	assert.Nil(t, tax)
}

func TestNinjaResolver_GroupBehaviorFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(ninjaResponse))
	}))
	defer srv.Close()

	resolver := taxonomy.NewNinjaResolver(srv.URL, "test-key", time.Second, nil, 0, helpers.TestLogger())

	tax, err := resolver.Resolve(context.Background(), "african wild dog")
	require.NoError(t, err)
	require.NotNil(t, tax)
	assert.Equal(t, []string{"Pack"}, tax.Attributes)
	require.NotNil(t, tax.Lifespan)
	assert.Equal(t, 11, *tax.Lifespan)
}

func TestNinjaResolver_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	resolver := taxonomy.NewNinjaResolver(srv.URL, "test-key", time.Second, nil, 0, helpers.TestLogger())

	_, err := resolver.Resolve(context.Background(), "dog")
	require.Error(t, err)
}

func TestNinjaResolver_CachesLookups(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(ninjaResponse))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, time.Hour, helpers.TestLogger())

	resolver := taxonomy.NewNinjaResolver(srv.URL, "test-key", time.Second, cache, time.Hour, helpers.TestLogger())

	for i := 0; i < 3; i++ {
		tax, err := resolver.Resolve(context.Background(), "Dog")
		require.NoError(t, err)
		require.NotNil(t, tax)
		assert.Equal(t, "Canidae", tax.Family)
	}

	assert.Equal(t, 1, calls)
}
