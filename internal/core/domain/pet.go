// internal/core/domain/pet.go
package domain

import (
	"fmt"
	"strings"
	"time"
)

// NA marks an absent optional value on the store wire format. The upstream
// contract uses the literal string rather than null.
const NA = "NA"

// BirthdateLayout is the only accepted birthdate format (day-month-year).
const BirthdateLayout = "02-01-2006"

// PicturePending marks an item whose picture download has been queued but
// not yet completed.
const PicturePending = "pending"

// Category is a store-local grouping of items, enriched with taxonomy data
// resolved from the external animals API at creation time. IDs are assigned
// per store and carry no meaning outside it.
type Category struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Family     string   `json:"family"`
	Genus      string   `json:"genus"`
	Attributes []string `json:"attributes"`
	Lifespan   *int     `json:"lifespan"`
	Items      []string `json:"items"`
}

// Item is a concrete animal inside a category. Names are unique within
// their category, case-insensitively. Items are only ever created, read,
// renamed, or deleted by their owning store; the coordinator reads and
// deletes them.
type Item struct {
	Name      string `json:"name"`
	Birthdate string `json:"birthdate"`
	Picture   string `json:"picture"`
}

// Validate checks item fields on create/update.
func (i *Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("name is required: %w", ErrMalformed)
	}
	if i.Birthdate != "" && i.Birthdate != NA {
		if _, err := ParseBirthdate(i.Birthdate); err != nil {
			return err
		}
	}
	return nil
}

// ParseBirthdate parses a DD-MM-YYYY date string.
func ParseBirthdate(s string) (time.Time, error) {
	t, err := time.Parse(BirthdateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("birthdate %q is not DD-MM-YYYY: %w", s, ErrMalformed)
	}
	return t, nil
}

// BirthdateAfter reports whether the item's birthdate is strictly after the
// given bound. Items without a parseable birthdate never match.
func (i *Item) BirthdateAfter(bound string) bool {
	return compareBirthdates(i.Birthdate, bound) > 0
}

// BirthdateBefore reports whether the item's birthdate is strictly before
// the given bound.
func (i *Item) BirthdateBefore(bound string) bool {
	return compareBirthdates(i.Birthdate, bound) < 0
}

// compareBirthdates returns -1/0/+1 like strings.Compare, or 0 when either
// side fails to parse (unparseable dates match nothing).
func compareBirthdates(a, b string) int {
	ta, errA := ParseBirthdate(a)
	tb, errB := ParseBirthdate(b)
	if errA != nil || errB != nil {
		return 0
	}
	switch {
	case ta.After(tb):
		return 1
	case ta.Before(tb):
		return -1
	default:
		return 0
	}
}

// Taxonomy is the result of resolving an animal name against the external
// data source.
type Taxonomy struct {
	Name       string
	Family     string
	Genus      string
	Attributes []string
	Lifespan   *int
}

// EqualFold is a helper for the store's pervasive case-insensitive name
// matching.
func EqualFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
