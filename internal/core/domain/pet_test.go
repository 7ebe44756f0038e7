// internal/core/domain/pet_test.go
package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawmart/petorder-be/internal/core/domain"
)

func TestItem_Validate(t *testing.T) {
	tests := []struct {
		name      string
		item      domain.Item
		wantError bool
	}{
		{"valid", domain.Item{Name: "Rex", Birthdate: "01-02-2020"}, false},
		{"valid_without_birthdate", domain.Item{Name: "Rex"}, false},
		{"valid_na_birthdate", domain.Item{Name: "Rex", Birthdate: domain.NA}, false},
		{"missing_name", domain.Item{Birthdate: "01-02-2020"}, true},
		{"blank_name", domain.Item{Name: "  "}, true},
		{"iso_birthdate_rejected", domain.Item{Name: "Rex", Birthdate: "2020-02-01"}, true},
		{"garbage_birthdate", domain.Item{Name: "Rex", Birthdate: "yesterday"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrMalformed))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseBirthdate(t *testing.T) {
	parsed, err := domain.ParseBirthdate("15-06-2021")
	require.NoError(t, err)
	assert.Equal(t, 2021, parsed.Year())
	assert.Equal(t, 6, int(parsed.Month()))
	assert.Equal(t, 15, parsed.Day())

	for _, bad := range []string{"2021-06-15", "15/06/2021", "31-02-2021", "", domain.NA} {
		_, err := domain.ParseBirthdate(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestItem_BirthdateBounds(t *testing.T) {
	item := domain.Item{Name: "Rex", Birthdate: "15-06-2020"}

	assert.True(t, item.BirthdateAfter("01-01-2020"))
	assert.False(t, item.BirthdateAfter("15-06-2020")) // strict
	assert.False(t, item.BirthdateAfter("01-01-2021"))

	assert.True(t, item.BirthdateBefore("01-01-2021"))
	assert.False(t, item.BirthdateBefore("15-06-2020")) // strict
	assert.False(t, item.BirthdateBefore("01-01-2020"))

	unknown := domain.Item{Name: "Ghost", Birthdate: domain.NA}
	assert.False(t, unknown.BirthdateAfter("01-01-2000"))
	assert.False(t, unknown.BirthdateBefore("01-01-2100"))
}

func TestEqualFold(t *testing.T) {
	assert.True(t, domain.EqualFold("Golden Retriever", "golden retriever"))
	assert.True(t, domain.EqualFold("REX", "rex"))
	assert.False(t, domain.EqualFold("dog", "dogs"))
}
