// internal/core/services/purchase_test.go
package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/internal/core/ports"
	"github.com/pawmart/petorder-be/internal/core/services"
	"github.com/pawmart/petorder-be/test/helpers"
	"github.com/pawmart/petorder-be/test/mocks"
)

func newPurchaseService(stores *mocks.MockStoreClient, ledger *mocks.MockOrderRepository,
	seq *mocks.MockOrderSequencer, cache ports.CacheRepository) *services.PurchaseService {
	return services.NewPurchaseService(stores, ledger, seq, cache, time.Hour, helpers.TestLogger())
}

func TestPurchaseService_Purchase_PinnedStoreAndItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	stores := mocks.NewMockStoreClient(ctrl)
	ledger := mocks.NewMockOrderRepository(ctrl)
	seq := mocks.NewMockOrderSequencer(ctrl)

	stores.EXPECT().
		ListCategories(gomock.Any(), domain.Store2).
		Return([]domain.Category{*helpers.TestCategory(func(c *domain.Category) {
			c.ID = "7"
			c.Name = "Golden Retriever"
		})}, nil)
	stores.EXPECT().
		GetItem(gomock.Any(), domain.Store2, "7", "Lander").
		Return(helpers.TestItem(func(i *domain.Item) { i.Name = "Lander" }), nil)
	stores.EXPECT().
		DeleteItem(gomock.Any(), domain.Store2, "7", "Lander").
		Return(nil)
	seq.EXPECT().Next(gomock.Any()).Return("42", nil)
	ledger.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, order *domain.Order) error {
			assert.Equal(t, "Ana", order.Purchaser)
			assert.Equal(t, "golden retriever", order.Category)
			assert.Equal(t, domain.Store2, order.Store)
			assert.Equal(t, "42", order.OrderID)
			return nil
		})

	svc := newPurchaseService(stores, ledger, seq, nil)

	result, err := svc.Purchase(context.Background(), &domain.PurchaseRequest{
		Purchaser: "Ana",
		Category:  "golden retriever", // category matching ignores case
		Store:     domain.Store2,
		ItemName:  "Lander",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "42", result.Order.OrderID)
	assert.Equal(t, "Lander", result.ItemName)
}

func TestPurchaseService_Purchase_PinnedStoreNeverFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	stores := mocks.NewMockStoreClient(ctrl)
	ledger := mocks.NewMockOrderRepository(ctrl)
	seq := mocks.NewMockOrderSequencer(ctrl)

	// Only store 1 is consulted; no expectation exists for store 2, so any
	// call to it fails the test.
	stores.EXPECT().
		ListCategories(gomock.Any(), domain.Store1).
		Return([]domain.Category{}, nil)

	svc := newPurchaseService(stores, ledger, seq, nil)

	_, err := svc.Purchase(context.Background(), &domain.PurchaseRequest{
		Purchaser: "Ana",
		Category:  "dog",
		Store:     domain.Store1,
	}, "")
	assert.True(t, errors.Is(err, domain.ErrNotAvailable))
}

func TestPurchaseService_Purchase_NamedItemMissingInPinnedStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	stores := mocks.NewMockStoreClient(ctrl)
	ledger := mocks.NewMockOrderRepository(ctrl)
	seq := mocks.NewMockOrderSequencer(ctrl)

	stores.EXPECT().
		ListCategories(gomock.Any(), domain.Store1).
		Return([]domain.Category{*helpers.TestCategory()}, nil)
	stores.EXPECT().
		GetItem(gomock.Any(), domain.Store1, "1", "Ghost").
		Return(nil, nil)

	svc := newPurchaseService(stores, ledger, seq, nil)

	// No random substitution: a named item that is absent rejects.
	_, err := svc.Purchase(context.Background(), &domain.PurchaseRequest{
		Purchaser: "Ana",
		Category:  "dog",
		Store:     domain.Store1,
		ItemName:  "Ghost",
	}, "")
	assert.True(t, errors.Is(err, domain.ErrNotAvailable))
}

func TestPurchaseService_Purchase_FirstStoreWithStockWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	stores := mocks.NewMockStoreClient(ctrl)
	ledger := mocks.NewMockOrderRepository(ctrl)
	seq := mocks.NewMockOrderSequencer(ctrl)

	stores.EXPECT().
		ListCategories(gomock.Any(), domain.Store1).
		Return([]domain.Category{*helpers.TestCategory()}, nil)
	stores.EXPECT().
		ListItems(gomock.Any(), domain.Store1, "1").
		Return([]domain.Item{*helpers.TestItem()}, nil)
	stores.EXPECT().
		DeleteItem(gomock.Any(), domain.Store1, "1", "Rex").
		Return(nil)
	seq.EXPECT().Next(gomock.Any()).Return("1", nil)
	ledger.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	svc := newPurchaseService(stores, ledger, seq, nil)

	// Store 1 has stock, so store 2 is never consulted.
	result, err := svc.Purchase(context.Background(), &domain.PurchaseRequest{
		Purchaser: "Ana",
		Category:  "dog",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.Store1, result.Order.Store)
	assert.Equal(t, "Rex", result.ItemName)
}

func TestPurchaseService_Purchase_FallsToSecondStore(t *testing.T) {
	tests := []struct {
		name        string
		store1Setup func(*mocks.MockStoreClient)
	}{
		{
			name: "category_absent_in_store1",
			store1Setup: func(m *mocks.MockStoreClient) {
				m.EXPECT().
					ListCategories(gomock.Any(), domain.Store1).
					Return([]domain.Category{}, nil)
			},
		},
		{
			name: "store1_has_category_but_no_stock",
			store1Setup: func(m *mocks.MockStoreClient) {
				m.EXPECT().
					ListCategories(gomock.Any(), domain.Store1).
					Return([]domain.Category{*helpers.TestCategory()}, nil)
				m.EXPECT().
					ListItems(gomock.Any(), domain.Store1, "1").
					Return([]domain.Item{}, nil)
			},
		},
		{
			name: "store1_unreachable",
			store1Setup: func(m *mocks.MockStoreClient) {
				m.EXPECT().
					ListCategories(gomock.Any(), domain.Store1).
					Return(nil, domain.ErrStoreUnavailable)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			stores := mocks.NewMockStoreClient(ctrl)
			ledger := mocks.NewMockOrderRepository(ctrl)
			seq := mocks.NewMockOrderSequencer(ctrl)

			tt.store1Setup(stores)

			stores.EXPECT().
				ListCategories(gomock.Any(), domain.Store2).
				Return([]domain.Category{*helpers.TestCategory(func(c *domain.Category) {
					c.ID = "9" // same logical category, different local id
				})}, nil)
			stores.EXPECT().
				ListItems(gomock.Any(), domain.Store2, "9").
				Return([]domain.Item{*helpers.TestItem(func(i *domain.Item) { i.Name = "Buddy" })}, nil)
			stores.EXPECT().
				DeleteItem(gomock.Any(), domain.Store2, "9", "Buddy").
				Return(nil)
			seq.EXPECT().Next(gomock.Any()).Return("2", nil)
			ledger.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

			svc := newPurchaseService(stores, ledger, seq, nil)

			result, err := svc.Purchase(context.Background(), &domain.PurchaseRequest{
				Purchaser: "Ana",
				Category:  "dog",
			}, "")
			require.NoError(t, err)
			assert.Equal(t, domain.Store2, result.Order.Store)
		})
	}
}

func TestPurchaseService_Purchase_NamedItemAcrossStores(t *testing.T) {
	ctrl := gomock.NewController(t)
	stores := mocks.NewMockStoreClient(ctrl)
	ledger := mocks.NewMockOrderRepository(ctrl)
	seq := mocks.NewMockOrderSequencer(ctrl)

	// Store 1 carries the category but not the named item; store 2 has it.
	stores.EXPECT().
		ListCategories(gomock.Any(), domain.Store1).
		Return([]domain.Category{*helpers.TestCategory()}, nil)
	stores.EXPECT().
		GetItem(gomock.Any(), domain.Store1, "1", "Buddy").
		Return(nil, nil)
	stores.EXPECT().
		ListCategories(gomock.Any(), domain.Store2).
		Return([]domain.Category{*helpers.TestCategory(func(c *domain.Category) { c.ID = "3" })}, nil)
	stores.EXPECT().
		GetItem(gomock.Any(), domain.Store2, "3", "Buddy").
		Return(helpers.TestItem(func(i *domain.Item) { i.Name = "Buddy" }), nil)
	stores.EXPECT().
		DeleteItem(gomock.Any(), domain.Store2, "3", "Buddy").
		Return(nil)
	seq.EXPECT().Next(gomock.Any()).Return("3", nil)
	ledger.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	svc := newPurchaseService(stores, ledger, seq, nil)

	result, err := svc.Purchase(context.Background(), &domain.PurchaseRequest{
		Purchaser: "Ana",
		Category:  "dog",
		ItemName:  "Buddy",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.Store2, result.Order.Store)
	assert.Equal(t, "Buddy", result.ItemName)
}

func TestPurchaseService_Purchase_NoStoreCanSatisfy(t *testing.T) {
	ctrl := gomock.NewController(t)
	stores := mocks.NewMockStoreClient(ctrl)
	ledger := mocks.NewMockOrderRepository(ctrl)
	seq := mocks.NewMockOrderSequencer(ctrl)

	stores.EXPECT().
		ListCategories(gomock.Any(), domain.Store1).
		Return(nil, domain.ErrStoreUnavailable)
	stores.EXPECT().
		ListCategories(gomock.Any(), domain.Store2).
		Return(nil, domain.ErrStoreUnavailable)

	svc := newPurchaseService(stores, ledger, seq, nil)

	// Upstream unavailability collapses into not-available.
	_, err := svc.Purchase(context.Background(), &domain.PurchaseRequest{
		Purchaser: "Ana",
		Category:  "dog",
	}, "")
	assert.True(t, errors.Is(err, domain.ErrNotAvailable))
}

func TestPurchaseService_Purchase_LostClaim(t *testing.T) {
	ctrl := gomock.NewController(t)
	stores := mocks.NewMockStoreClient(ctrl)
	ledger := mocks.NewMockOrderRepository(ctrl)
	seq := mocks.NewMockOrderSequencer(ctrl)

	stores.EXPECT().
		ListCategories(gomock.Any(), domain.Store1).
		Return([]domain.Category{*helpers.TestCategory()}, nil)
	stores.EXPECT().
		ListItems(gomock.Any(), domain.Store1, "1").
		Return([]domain.Item{*helpers.TestItem()}, nil)
	// A concurrent purchase deleted the item first. No re-selection, no
	// fallback: the whole purchase fails and nothing is sequenced or
	// recorded.
	stores.EXPECT().
		DeleteItem(gomock.Any(), domain.Store1, "1", "Rex").
		Return(domain.ErrNotFound)

	svc := newPurchaseService(stores, ledger, seq, nil)

	_, err := svc.Purchase(context.Background(), &domain.PurchaseRequest{
		Purchaser: "Ana",
		Category:  "dog",
	}, "")
	assert.True(t, errors.Is(err, domain.ErrClaimFailed))
}

func TestPurchaseService_Purchase_SequencerFailureAfterClaim(t *testing.T) {
	ctrl := gomock.NewController(t)
	stores := mocks.NewMockStoreClient(ctrl)
	ledger := mocks.NewMockOrderRepository(ctrl)
	seq := mocks.NewMockOrderSequencer(ctrl)

	stores.EXPECT().
		ListCategories(gomock.Any(), domain.Store1).
		Return([]domain.Category{*helpers.TestCategory()}, nil)
	stores.EXPECT().
		ListItems(gomock.Any(), domain.Store1, "1").
		Return([]domain.Item{*helpers.TestItem()}, nil)
	stores.EXPECT().
		DeleteItem(gomock.Any(), domain.Store1, "1", "Rex").
		Return(nil)
	seq.EXPECT().Next(gomock.Any()).Return("", errors.New("connection reset"))

	svc := newPurchaseService(stores, ledger, seq, nil)

	_, err := svc.Purchase(context.Background(), &domain.PurchaseRequest{
		Purchaser: "Ana",
		Category:  "dog",
	}, "")
	require.Error(t, err)
	// An internal failure, not part of the rejection taxonomy.
	assert.False(t, errors.Is(err, domain.ErrNotAvailable))
	assert.False(t, errors.Is(err, domain.ErrClaimFailed))
}

func TestPurchaseService_Purchase_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	stores := mocks.NewMockStoreClient(ctrl)
	ledger := mocks.NewMockOrderRepository(ctrl)
	seq := mocks.NewMockOrderSequencer(ctrl)

	svc := newPurchaseService(stores, ledger, seq, nil)

	tests := []struct {
		name string
		req  *domain.PurchaseRequest
	}{
		{"missing_purchaser", &domain.PurchaseRequest{Category: "dog"}},
		{"missing_category", &domain.PurchaseRequest{Purchaser: "Ana"}},
		{"unknown_store", &domain.PurchaseRequest{Purchaser: "Ana", Category: "dog", Store: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Purchase(context.Background(), tt.req, "")
			assert.True(t, errors.Is(err, domain.ErrMalformed))
		})
	}
}

func TestPurchaseService_Purchase_IdempotentReplay(t *testing.T) {
	ctrl := gomock.NewController(t)
	stores := mocks.NewMockStoreClient(ctrl)
	ledger := mocks.NewMockOrderRepository(ctrl)
	seq := mocks.NewMockOrderSequencer(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	// The key is already claimed with a committed result; no store call is
	// made and the stored order is replayed.
	cache.EXPECT().
		SetNX(gomock.Any(), "idem:abc", gomock.Any(), time.Hour).
		Return(false, nil)
	cache.EXPECT().
		Get(gomock.Any(), "idem:abc", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, dest interface{}) error {
			stored := `{"pending":false,"result":{"Order":{"purchaser":"Ana","category":"dog","store":1,"orderId":"7"},"ItemName":"Rex"}}`
			return json.Unmarshal([]byte(stored), dest)
		})

	svc := newPurchaseService(stores, ledger, seq, cache)

	result, err := svc.Purchase(context.Background(), &domain.PurchaseRequest{
		Purchaser: "Ana",
		Category:  "dog",
	}, "abc")
	require.NoError(t, err)
	assert.Equal(t, "7", result.Order.OrderID)
	assert.Equal(t, "Rex", result.ItemName)
}

func TestPurchaseService_Purchase_IdempotentInFlightDuplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	stores := mocks.NewMockStoreClient(ctrl)
	ledger := mocks.NewMockOrderRepository(ctrl)
	seq := mocks.NewMockOrderSequencer(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	cache.EXPECT().
		SetNX(gomock.Any(), "idem:abc", gomock.Any(), time.Hour).
		Return(false, nil)
	cache.EXPECT().
		Get(gomock.Any(), "idem:abc", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, dest interface{}) error {
			return json.Unmarshal([]byte(`{"pending":true}`), dest)
		})

	svc := newPurchaseService(stores, ledger, seq, cache)

	_, err := svc.Purchase(context.Background(), &domain.PurchaseRequest{
		Purchaser: "Ana",
		Category:  "dog",
	}, "abc")
	assert.True(t, errors.Is(err, domain.ErrClaimFailed))
}

func TestPurchaseService_Purchase_IdempotentKeyReleasedOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	stores := mocks.NewMockStoreClient(ctrl)
	ledger := mocks.NewMockOrderRepository(ctrl)
	seq := mocks.NewMockOrderSequencer(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	cache.EXPECT().
		SetNX(gomock.Any(), "idem:xyz", gomock.Any(), time.Hour).
		Return(true, nil)
	stores.EXPECT().
		ListCategories(gomock.Any(), domain.Store1).
		Return([]domain.Category{}, nil)
	stores.EXPECT().
		ListCategories(gomock.Any(), domain.Store2).
		Return([]domain.Category{}, nil)
	// Failed purchases release the key so the caller can retry.
	cache.EXPECT().Delete(gomock.Any(), "idem:xyz").Return(nil)

	svc := newPurchaseService(stores, ledger, seq, cache)

	_, err := svc.Purchase(context.Background(), &domain.PurchaseRequest{
		Purchaser: "Ana",
		Category:  "dog",
	}, "xyz")
	assert.True(t, errors.Is(err, domain.ErrNotAvailable))
}

func TestPurchaseService_Purchase_IdempotentKeyHeldAfterPostClaimFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	stores := mocks.NewMockStoreClient(ctrl)
	ledger := mocks.NewMockOrderRepository(ctrl)
	seq := mocks.NewMockOrderSequencer(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	// First call: the claim succeeds, then the sequencer fails. The key is
	// NOT released (no Delete expectation: any Delete call fails the test).
	cache.EXPECT().
		SetNX(gomock.Any(), "idem:key-1", gomock.Any(), time.Hour).
		Return(true, nil)
	stores.EXPECT().
		ListCategories(gomock.Any(), domain.Store1).
		Return([]domain.Category{*helpers.TestCategory()}, nil)
	stores.EXPECT().
		ListItems(gomock.Any(), domain.Store1, "1").
		Return([]domain.Item{*helpers.TestItem()}, nil)
	// The claim happens exactly once across both calls.
	stores.EXPECT().
		DeleteItem(gomock.Any(), domain.Store1, "1", "Rex").
		Return(nil).
		Times(1)
	seq.EXPECT().Next(gomock.Any()).Return("", errors.New("connection reset"))

	// Retry with the same key: the still-held marker rejects the duplicate
	// instead of claiming a second item.
	cache.EXPECT().
		SetNX(gomock.Any(), "idem:key-1", gomock.Any(), time.Hour).
		Return(false, nil)
	cache.EXPECT().
		Get(gomock.Any(), "idem:key-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, dest interface{}) error {
			return json.Unmarshal([]byte(`{"pending":true}`), dest)
		})

	svc := newPurchaseService(stores, ledger, seq, cache)

	req := &domain.PurchaseRequest{Purchaser: "Ana", Category: "dog"}

	_, err := svc.Purchase(context.Background(), req, "key-1")
	require.Error(t, err)

	_, err = svc.Purchase(context.Background(), req, "key-1")
	assert.True(t, errors.Is(err, domain.ErrClaimFailed))
}

func TestPurchaseService_Purchase_IdempotentResultStored(t *testing.T) {
	ctrl := gomock.NewController(t)
	stores := mocks.NewMockStoreClient(ctrl)
	ledger := mocks.NewMockOrderRepository(ctrl)
	seq := mocks.NewMockOrderSequencer(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	cache.EXPECT().
		SetNX(gomock.Any(), "idem:k1", gomock.Any(), time.Hour).
		Return(true, nil)
	stores.EXPECT().
		ListCategories(gomock.Any(), domain.Store1).
		Return([]domain.Category{*helpers.TestCategory()}, nil)
	stores.EXPECT().
		ListItems(gomock.Any(), domain.Store1, "1").
		Return([]domain.Item{*helpers.TestItem()}, nil)
	stores.EXPECT().
		DeleteItem(gomock.Any(), domain.Store1, "1", "Rex").
		Return(nil)
	seq.EXPECT().Next(gomock.Any()).Return("5", nil)
	ledger.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
	cache.EXPECT().
		SetWithTTL(gomock.Any(), "idem:k1", gomock.Any(), time.Hour).
		Return(nil)

	svc := newPurchaseService(stores, ledger, seq, cache)

	result, err := svc.Purchase(context.Background(), &domain.PurchaseRequest{
		Purchaser: "Ana",
		Category:  "dog",
	}, "k1")
	require.NoError(t, err)
	assert.Equal(t, "5", result.Order.OrderID)
}

func TestOrderService_QueryOrders(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockOrderRepository(ctrl)

	purchaser := "Ana"
	store := domain.Store2
	filter := domain.OrderFilter{Purchaser: &purchaser, Store: &store}

	ledger.EXPECT().
		Query(gomock.Any(), filter).
		Return([]domain.Order{*helpers.TestOrder()}, nil)

	svc := services.NewOrderService(ledger, helpers.TestLogger())

	orders, err := svc.QueryOrders(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Ana", orders[0].Purchaser)
}
