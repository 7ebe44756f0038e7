// internal/adapters/petstore/client.go
package petstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/internal/core/ports"
)

var _ ports.StoreClient = (*Client)(nil)

// Client talks to the store services over HTTP. Every call is bounded by
// the client timeout; transport failures, timeouts and 5xx responses all
// collapse into domain.ErrStoreUnavailable so the purchase flow treats an
// unreachable store uniformly. The client never retries.
type Client struct {
	endpoints map[domain.StoreID]string
	http      *http.Client
	logger    *slog.Logger
}

// NewClient creates a store client for the configured endpoints.
func NewClient(endpoints map[domain.StoreID]string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		endpoints: endpoints,
		http:      &http.Client{Timeout: timeout},
		logger:    logger.With(slog.String("component", "store_client")),
	}
}

// ListCategories fetches every category the store carries.
func (c *Client) ListCategories(ctx context.Context, store domain.StoreID) ([]domain.Category, error) {
	var cats []domain.Category
	if err := c.getJSON(ctx, store, "/categories", &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// ListItems fetches the items of one category.
func (c *Client) ListItems(ctx context.Context, store domain.StoreID, categoryID string) ([]domain.Item, error) {
	path := fmt.Sprintf("/categories/%s/items", url.PathEscape(categoryID))
	var items []domain.Item
	if err := c.getJSON(ctx, store, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem fetches a single item by name. A 404 from the store resolves to
// (nil, nil): the item is simply not there.
func (c *Client) GetItem(ctx context.Context, store domain.StoreID, categoryID, name string) (*domain.Item, error) {
	path := fmt.Sprintf("/categories/%s/items/%s", url.PathEscape(categoryID), url.PathEscape(name))

	resp, err := c.do(ctx, store, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode >= 300:
		return nil, c.unexpected(ctx, store, path, resp.StatusCode)
	}

	var item domain.Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("%w: decoding item from store %d: %v", domain.ErrStoreUnavailable, store, err)
	}
	return &item, nil
}

// DeleteItem removes an item from the store. This is the claim: the store
// deletes atomically, so of two racing purchases exactly one gets a 2xx and
// the other gets domain.ErrNotFound.
func (c *Client) DeleteItem(ctx context.Context, store domain.StoreID, categoryID, name string) error {
	path := fmt.Sprintf("/categories/%s/items/%s", url.PathEscape(categoryID), url.PathEscape(name))

	resp, err := c.do(ctx, store, http.MethodDelete, path)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode >= 300:
		return c.unexpected(ctx, store, path, resp.StatusCode)
	}

	return nil
}

func (c *Client) getJSON(ctx context.Context, store domain.StoreID, path string, dest interface{}) error {
	resp, err := c.do(ctx, store, http.MethodGet, path)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode >= 300 {
		return c.unexpected(ctx, store, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: decoding response from store %d: %v", domain.ErrStoreUnavailable, store, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, store domain.StoreID, method, path string) (*http.Response, error) {
	base, ok := c.endpoints[store]
	if !ok {
		return nil, fmt.Errorf("%w: no endpoint for store %d", domain.ErrStoreUnavailable, store)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "store unreachable",
			slog.Int("store", int(store)),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: store %d: %v", domain.ErrStoreUnavailable, store, err)
	}
	return resp, nil
}

func (c *Client) unexpected(ctx context.Context, store domain.StoreID, path string, status int) error {
	c.logger.WarnContext(ctx, "unexpected store response",
		slog.Int("store", int(store)),
		slog.String("path", path),
		slog.Int("status", status))
	return fmt.Errorf("%w: store %d returned %d for %s", domain.ErrStoreUnavailable, store, status, path)
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
