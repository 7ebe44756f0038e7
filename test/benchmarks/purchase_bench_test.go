package benchmarks

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/internal/core/services"
	"github.com/pawmart/petorder-be/test/helpers"
)

func BenchmarkCategoryQueryMatches(b *testing.B) {
	cats := make([]domain.Category, 100)
	for i := range cats {
		lifespan := 5 + i%15
		cats[i] = domain.Category{
			ID:         strconv.Itoa(i + 1),
			Name:       fmt.Sprintf("species-%d", i),
			Family:     "Canidae",
			Genus:      "Canis",
			Attributes: []string{"Loyal", "playful", "social"},
			Lifespan:   &lifespan,
		}
	}

	query := domain.CategoryQuery{Family: "canidae", HasAttribute: "loyal"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		matched := 0
		for j := range cats {
			if query.Matches(&cats[j]) {
				matched++
			}
		}
		if matched == 0 {
			b.Fatal("expected matches")
		}
	}
}

func BenchmarkItemQueryMatches(b *testing.B) {
	items := make([]domain.Item, 100)
	for i := range items {
		items[i] = domain.Item{
			Name:      fmt.Sprintf("pet-%d", i),
			Birthdate: fmt.Sprintf("%02d-06-20%02d", 1+i%28, 10+i%15),
			Picture:   domain.NA,
		}
	}

	query := domain.ItemQuery{BirthdateGT: "01-01-2015", BirthdateLT: "31-12-2022"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := range items {
			query.Matches(&items[j])
		}
	}
}

func BenchmarkParseStoreID(b *testing.B) {
	inputs := []interface{}{float64(1), float64(2), "1", "2", " 2 "}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := domain.ParseStoreID(inputs[i%len(inputs)]); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkPurchaseSelection measures the coordinator's resolve-and-select
// path against an in-memory store, isolating it from network and database
// cost.
func BenchmarkPurchaseSelection(b *testing.B) {
	stores := newMemStores(50, 200)
	ledger := &memLedger{}
	seq := &memSequencer{}

	svc := services.NewPurchaseService(stores, ledger, seq, nil, 0, helpers.TestLogger())
	ctx := context.Background()

	b.Run("AnyItem", func(b *testing.B) {
		req := &domain.PurchaseRequest{Purchaser: "bench", Category: "species-25"}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := svc.Purchase(ctx, req, ""); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("NamedItem", func(b *testing.B) {
		req := &domain.PurchaseRequest{
			Purchaser: "bench",
			Category:  "species-25",
			ItemName:  "pet-100",
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := svc.Purchase(ctx, req, ""); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("PinnedStore", func(b *testing.B) {
		req := &domain.PurchaseRequest{
			Purchaser: "bench",
			Category:  "species-25",
			Store:     domain.Store2,
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := svc.Purchase(ctx, req, ""); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// memStores serves a fixed catalog from memory. Claims always succeed and
// never shrink the catalog so iteration counts stay stable.
type memStores struct {
	categories []domain.Category
	items      []domain.Item
}

func newMemStores(numCategories, itemsPerCategory int) *memStores {
	s := &memStores{
		categories: make([]domain.Category, numCategories),
		items:      make([]domain.Item, itemsPerCategory),
	}
	for i := range s.categories {
		s.categories[i] = domain.Category{
			ID:   strconv.Itoa(i + 1),
			Name: fmt.Sprintf("species-%d", i),
		}
	}
	for i := range s.items {
		s.items[i] = domain.Item{
			Name:      fmt.Sprintf("pet-%d", i),
			Birthdate: domain.NA,
			Picture:   domain.NA,
		}
	}
	return s
}

func (s *memStores) ListCategories(ctx context.Context, store domain.StoreID) ([]domain.Category, error) {
	return s.categories, nil
}

func (s *memStores) ListItems(ctx context.Context, store domain.StoreID, categoryID string) ([]domain.Item, error) {
	return s.items, nil
}

func (s *memStores) GetItem(ctx context.Context, store domain.StoreID, categoryID, itemName string) (*domain.Item, error) {
	for i := range s.items {
		if domain.EqualFold(s.items[i].Name, itemName) {
			return &s.items[i], nil
		}
	}
	return nil, nil
}

func (s *memStores) DeleteItem(ctx context.Context, store domain.StoreID, categoryID, itemName string) error {
	return nil
}

type memLedger struct{}

func (l *memLedger) Record(ctx context.Context, order *domain.Order) error { return nil }

func (l *memLedger) Query(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	return nil, nil
}

type memSequencer struct {
	n atomic.Int64
}

func (s *memSequencer) Next(ctx context.Context) (string, error) {
	return strconv.FormatInt(s.n.Add(1), 10), nil
}
