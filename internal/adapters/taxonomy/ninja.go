// internal/adapters/taxonomy/ninja.go
package taxonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	redis_a "github.com/pawmart/petorder-be/internal/adapters/redis_adapter"
	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/internal/core/ports"
)

var _ ports.TaxonomyResolver = (*NinjaResolver)(nil)

// NinjaResolver resolves animal taxonomy through the API Ninjas animals
// endpoint. The API matches names fuzzily; only an exact case-insensitive
// name match counts. Results are cached since taxonomy never changes.
type NinjaResolver struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	cache    ports.CacheRepository
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewNinjaResolver creates a resolver for the configured API endpoint.
// cache may be nil to disable caching.
func NewNinjaResolver(baseURL, apiKey string, timeout time.Duration,
	cache ports.CacheRepository, cacheTTL time.Duration, logger *slog.Logger) *NinjaResolver {
	return &NinjaResolver{
		baseURL:  baseURL,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With(slog.String("component", "taxonomy")),
	}
}

// ninjaAnimal mirrors the subset of the API response we read.
type ninjaAnimal struct {
	Name     string `json:"name"`
	Taxonomy struct {
		Family string `json:"family"`
		Genus  string `json:"genus"`
	} `json:"taxonomy"`
	Characteristics struct {
		Temperament   string `json:"temperament"`
		GroupBehavior string `json:"group_behavior"`
		Lifespan      string `json:"lifespan"`
	} `json:"characteristics"`
}

// Resolve looks a name up. No exact match resolves to (nil, nil); the
// caller falls back to NA taxonomy.
func (r *NinjaResolver) Resolve(ctx context.Context, name string) (*domain.Taxonomy, error) {
	if r.cache == nil {
		return r.resolve(ctx, name)
	}

	key := redis_a.BuildKey(redis_a.PrefixTaxonomy, strings.ToLower(name))

	var cached domain.Taxonomy
	err := r.cache.GetOrSet(ctx, key, &cached, func() (interface{}, error) {
		tax, err := r.resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		if tax == nil {
			// Cache the miss too; an empty name marks it.
			return &domain.Taxonomy{}, nil
		}
		return tax, nil
	}, r.cacheTTL)
	if err != nil {
		return nil, err
	}

	if cached.Name == "" {
		return nil, nil
	}
	return &cached, nil
}

func (r *NinjaResolver) resolve(ctx context.Context, name string) (*domain.Taxonomy, error) {
	endpoint := fmt.Sprintf("%s?name=%s", r.baseURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build taxonomy request: %w", err)
	}
	req.Header.Set("X-Api-Key", r.apiKey)

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("taxonomy lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("taxonomy API returned %d", resp.StatusCode)
	}

	var animals []ninjaAnimal
	if err := json.NewDecoder(resp.Body).Decode(&animals); err != nil {
		return nil, fmt.Errorf("failed to decode taxonomy response: %w", err)
	}

	for _, a := range animals {
		if !strings.EqualFold(a.Name, name) {
			continue
		}

		tax := &domain.Taxonomy{
			Name:       a.Name,
			Family:     orNA(a.Taxonomy.Family),
			Genus:      orNA(a.Taxonomy.Genus),
			Attributes: splitAttributes(a.Characteristics.Temperament, a.Characteristics.GroupBehavior),
			Lifespan:   minLifespan(a.Characteristics.Lifespan),
		}

		r.logger.DebugContext(ctx, "taxonomy resolved",
			slog.String("name", name),
			slog.String("family", tax.Family),
			slog.String("genus", tax.Genus))

		return tax, nil
	}

	r.logger.DebugContext(ctx, "no exact taxonomy match", slog.String("name", name))
	return nil, nil
}

func orNA(s string) string {
	if s == "" {
		return domain.NA
	}
	return s
}

// splitAttributes prefers temperament and falls back to group behavior,
// splitting the comma-separated phrase the API returns.
func splitAttributes(temperament, groupBehavior string) []string {
	src := temperament
	if src == "" {
		src = groupBehavior
	}
	if src == "" {
		return []string{}
	}

	parts := strings.Split(src, ",")
	attrs := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			attrs = append(attrs, trimmed)
		}
	}
	return attrs
}

var lifespanDigits = regexp.MustCompile(`\d+`)

// minLifespan extracts the smallest number from a lifespan phrase such as
// "10 - 15 years". Nil when no number appears.
func minLifespan(s string) *int {
	matches := lifespanDigits.FindAllString(s, -1)
	if len(matches) == 0 {
		return nil
	}

	min := 0
	for i, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if i == 0 || n < min {
			min = n
		}
	}
	return &min
}
