// internal/core/domain/query_test.go
package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawmart/petorder-be/internal/core/domain"
)

func testDogCategory() *domain.Category {
	lifespan := 10
	return &domain.Category{
		ID:         "1",
		Name:       "dog",
		Family:     "Canidae",
		Genus:      "Canis",
		Attributes: []string{"Loyal", "playful"},
		Lifespan:   &lifespan,
	}
}

func TestCategoryQuery_Matches(t *testing.T) {
	ten, nine := 10, 9
	tests := []struct {
		name  string
		query domain.CategoryQuery
		want  bool
	}{
		{"empty_query_matches_all", domain.CategoryQuery{}, true},
		{"name_case_insensitive", domain.CategoryQuery{Name: "DOG"}, true},
		{"name_mismatch", domain.CategoryQuery{Name: "cat"}, false},
		{"family_case_insensitive", domain.CategoryQuery{Family: "canidae"}, true},
		{"genus", domain.CategoryQuery{Genus: "Canis"}, true},
		{"lifespan_match", domain.CategoryQuery{Lifespan: &ten}, true},
		{"lifespan_mismatch", domain.CategoryQuery{Lifespan: &nine}, false},
		{"attribute_case_insensitive", domain.CategoryQuery{HasAttribute: "loyal"}, true},
		{"attribute_absent", domain.CategoryQuery{HasAttribute: "aquatic"}, false},
		{"all_predicates_and_together", domain.CategoryQuery{Name: "dog", Family: "Canidae", HasAttribute: "playful"}, true},
		{"one_failing_predicate_rejects", domain.CategoryQuery{Name: "dog", Family: "Felidae"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Matches(testDogCategory()))
		})
	}
}

func TestCategoryQuery_NilLifespanNeverMatchesBound(t *testing.T) {
	ten := 10
	cat := testDogCategory()
	cat.Lifespan = nil

	query := domain.CategoryQuery{Lifespan: &ten}
	assert.False(t, query.Matches(cat))
}

func TestParseLifespan(t *testing.T) {
	n, err := domain.ParseLifespan("12")
	require.NoError(t, err)
	assert.Equal(t, 12, *n)

	_, err = domain.ParseLifespan("dozen")
	assert.ErrorIs(t, err, domain.ErrMalformed)
}

func TestItemQuery_Matches(t *testing.T) {
	item := &domain.Item{Name: "Rex", Birthdate: "15-06-2020", Picture: domain.NA}

	tests := []struct {
		name  string
		query domain.ItemQuery
		want  bool
	}{
		{"empty_query_matches_all", domain.ItemQuery{}, true},
		{"name_case_insensitive", domain.ItemQuery{Name: "rex"}, true},
		{"name_mismatch", domain.ItemQuery{Name: "Buddy"}, false},
		{"birthdate_exact", domain.ItemQuery{Birthdate: "15-06-2020"}, true},
		{"birthdate_exact_is_literal", domain.ItemQuery{Birthdate: "15-6-2020"}, false},
		{"picture_exact", domain.ItemQuery{Picture: domain.NA}, true},
		{"born_after", domain.ItemQuery{BirthdateGT: "01-01-2020"}, true},
		{"born_after_excludes_boundary", domain.ItemQuery{BirthdateGT: "15-06-2020"}, false},
		{"born_before", domain.ItemQuery{BirthdateLT: "01-01-2021"}, true},
		{"range", domain.ItemQuery{BirthdateGT: "01-01-2020", BirthdateLT: "01-01-2021"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Matches(item))
		})
	}
}
