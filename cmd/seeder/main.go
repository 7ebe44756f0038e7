// cmd/seeder/main.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/pawmart/petorder-be/internal/adapters/db"
	"github.com/pawmart/petorder-be/internal/core/domain"
)

// seedCategory is one row of the Categories sheet plus its pets from the
// Pets sheet.
type seedCategory struct {
	category domain.Category
	pets     []domain.Item
}

// catalogSeeder loads a workbook of categories and pets into a store's
// catalog database.
type catalogSeeder struct {
	repo   *db.CatalogRepository
	logger *slog.Logger
}

// LoadWorkbook parses the seed workbook. Sheet "Categories" holds one
// category per row (name, family, genus, attributes, lifespan); sheet
// "Pets" holds one pet per row (category, name, birthdate).
func (s *catalogSeeder) LoadWorkbook(path string) ([]seedCategory, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed workbook: %w", err)
	}

	catSheet, ok := file.Sheet["Categories"]
	if !ok {
		return nil, fmt.Errorf("seed workbook has no Categories sheet")
	}

	byName := make(map[string]*seedCategory)
	var order []string

	rowIdx := 0
	err = catSheet.ForEachRow(func(r *xlsx.Row) error {
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		name := strings.TrimSpace(cellValue(r, 0))
		if name == "" {
			return nil
		}
		key := strings.ToLower(name)
		if _, exists := byName[key]; exists {
			return fmt.Errorf("duplicate category %q in workbook", name)
		}

		cat := domain.Category{
			Name:   name,
			Family: orNA(cellValue(r, 1)),
			Genus:  orNA(cellValue(r, 2)),
		}
		if attrs := strings.TrimSpace(cellValue(r, 3)); attrs != "" {
			for _, a := range strings.Split(attrs, ",") {
				if a = strings.TrimSpace(a); a != "" {
					cat.Attributes = append(cat.Attributes, a)
				}
			}
		}
		if raw := strings.TrimSpace(cellValue(r, 4)); raw != "" {
			years, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("category %q has non-numeric lifespan %q", name, raw)
			}
			cat.Lifespan = &years
		}

		byName[key] = &seedCategory{category: cat}
		order = append(order, key)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if petSheet, ok := file.Sheet["Pets"]; ok {
		rowIdx = 0
		err = petSheet.ForEachRow(func(r *xlsx.Row) error {
			if rowIdx == 0 {
				rowIdx++
				return nil
			}
			rowIdx++

			category := strings.TrimSpace(cellValue(r, 0))
			petName := strings.TrimSpace(cellValue(r, 1))
			if category == "" || petName == "" {
				return nil
			}

			entry, ok := byName[strings.ToLower(category)]
			if !ok {
				return fmt.Errorf("pet %q references unknown category %q", petName, category)
			}

			birthdate := strings.TrimSpace(cellValue(r, 2))
			if birthdate == "" {
				birthdate = domain.NA
			} else if _, err := domain.ParseBirthdate(birthdate); err != nil {
				return fmt.Errorf("pet %q has invalid birthdate %q: %w", petName, birthdate, err)
			}

			entry.pets = append(entry.pets, domain.Item{
				Name:      petName,
				Birthdate: birthdate,
				Picture:   domain.NA,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	seeds := make([]seedCategory, 0, len(order))
	for _, key := range order {
		seeds = append(seeds, *byName[key])
	}
	return seeds, nil
}

// Seed writes the parsed categories to the catalog. Categories that already
// exist are skipped entirely so reruns stay idempotent.
func (s *catalogSeeder) Seed(ctx context.Context, seeds []seedCategory, dryRun bool) (categories, pets, skipped int, err error) {
	for _, seed := range seeds {
		existing, err := s.repo.FindCategoryByName(ctx, seed.category.Name)
		if err != nil {
			return categories, pets, skipped, err
		}
		if existing != nil {
			s.logger.Info("category already present, skipping",
				slog.String("name", seed.category.Name))
			skipped++
			continue
		}

		if dryRun {
			categories++
			pets += len(seed.pets)
			continue
		}

		id, err := s.repo.NextCategoryID(ctx)
		if err != nil {
			return categories, pets, skipped, err
		}
		seed.category.ID = id

		if err := s.repo.CreateCategory(ctx, &seed.category); err != nil {
			return categories, pets, skipped, fmt.Errorf("failed to seed category %q: %w", seed.category.Name, err)
		}
		categories++

		for i := range seed.pets {
			if err := s.repo.CreateItem(ctx, id, &seed.pets[i]); err != nil {
				return categories, pets, skipped, fmt.Errorf("failed to seed pet %q: %w", seed.pets[i].Name, err)
			}
			pets++
		}
	}
	return categories, pets, skipped, nil
}

func cellValue(r *xlsx.Row, i int) string {
	c := r.GetCell(i)
	if c == nil {
		return ""
	}
	if s, err := c.FormattedValue(); err == nil {
		return s
	}
	return c.String()
}

func orNA(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return domain.NA
	}
	return s
}

func main() {
	var (
		seedFile    = flag.String("file", "./seed/catalog.xlsx", "Workbook with Categories and Pets sheets")
		logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun      = flag.Bool("dry-run", false, "Preview changes without modifying the database")
		coordinator = flag.String("coordinator", "", "Coordinator base URL; fires sample purchases after seeding")
		purchases   = flag.Int("purchases", 3, "Sample purchases per seeded category (with -coordinator)")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()

	dbConfig := db.DefaultConfig()
	dbConfig.Host = getEnv("DB_HOST", "localhost")
	dbConfig.Port = getEnv("DB_PORT", "5432")
	dbConfig.User = getEnv("DB_USER", "pawmart")
	dbConfig.Password = getEnv("DB_PASSWORD", "pawmart_dev_2026")
	dbConfig.Database = getEnv("DB_NAME", "pawmart_store")
	dbConfig.SSLMode = getEnv("DB_SSL_MODE", "disable")
	dbConfig.MaxConnections = 4
	dbConfig.MinConnections = 1

	database, err := db.NewDatabase(ctx, dbConfig, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	seeder := &catalogSeeder{
		repo:   db.NewCatalogRepository(database, logger),
		logger: logger,
	}

	seeds, err := seeder.LoadWorkbook(*seedFile)
	if err != nil {
		logger.Error("failed to load seed workbook",
			slog.String("file", *seedFile),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("loaded seed workbook",
		slog.String("file", *seedFile),
		slog.Int("categories", len(seeds)))

	categories, pets, skipped, err := seeder.Seed(ctx, seeds, *dryRun)
	if err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var ordered, rejected int
	if *coordinator != "" && !*dryRun {
		ordered, rejected = firePurchases(ctx, logger, *coordinator, seeds, *purchases)
	}

	fmt.Println(strings.Repeat("=", 40))
	fmt.Println("CATALOG SEEDING SUMMARY")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("Categories created: %d\n", categories)
	fmt.Printf("Pets created:       %d\n", pets)
	fmt.Printf("Categories skipped: %d\n", skipped)
	if *coordinator != "" {
		fmt.Printf("Purchases placed:   %d\n", ordered)
		fmt.Printf("Purchases rejected: %d\n", rejected)
	}
	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the database")
	}

	logger.Info("seed operation completed",
		slog.Int("categories_created", categories),
		slog.Int("pets_created", pets),
		slog.Int("categories_skipped", skipped))
}

// firePurchases posts sample purchases against the coordinator so a fresh
// environment has ledger entries to look at. Rejections (for example an
// exhausted category) are expected and only counted.
func firePurchases(ctx context.Context, logger *slog.Logger, baseURL string, seeds []seedCategory, perCategory int) (ordered, rejected int) {
	client := &http.Client{Timeout: 10 * time.Second}
	purchasers := []string{"Ana", "Bob", "Carol", "Dana"}

	for _, seed := range seeds {
		for i := 0; i < perCategory; i++ {
			payload, err := json.Marshal(map[string]string{
				"purchaser": purchasers[i%len(purchasers)],
				"category":  seed.category.Name,
			})
			if err != nil {
				logger.Error("failed to encode purchase", slog.String("error", err.Error()))
				return ordered, rejected
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodPost,
				strings.TrimSuffix(baseURL, "/")+"/purchases", bytes.NewReader(payload))
			if err != nil {
				logger.Error("failed to build purchase request", slog.String("error", err.Error()))
				return ordered, rejected
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := client.Do(req)
			if err != nil {
				logger.Error("coordinator unreachable",
					slog.String("url", baseURL),
					slog.String("error", err.Error()))
				return ordered, rejected
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			if resp.StatusCode == http.StatusCreated {
				ordered++
			} else {
				rejected++
				logger.Info("sample purchase rejected",
					slog.String("category", seed.category.Name),
					slog.Int("status", resp.StatusCode))
			}
		}
	}
	return ordered, rejected
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
