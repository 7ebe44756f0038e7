// internal/core/domain/query.go
package domain

import "strconv"

// CategoryQuery holds the store's category listing filters. All predicates
// are optional and combined with AND; strings match case-insensitively.
type CategoryQuery struct {
	Name         string
	Family       string
	Genus        string
	Lifespan     *int
	HasAttribute string
}

// CategoryQueryKeys is the allow-list of category query parameters.
var CategoryQueryKeys = map[string]struct{}{
	"name":         {},
	"family":       {},
	"genus":        {},
	"lifespan":     {},
	"hasAttribute": {},
}

// Matches reports whether the category satisfies every set predicate.
func (q *CategoryQuery) Matches(c *Category) bool {
	if q.Name != "" && !EqualFold(c.Name, q.Name) {
		return false
	}
	if q.Family != "" && !EqualFold(c.Family, q.Family) {
		return false
	}
	if q.Genus != "" && !EqualFold(c.Genus, q.Genus) {
		return false
	}
	if q.Lifespan != nil && (c.Lifespan == nil || *c.Lifespan != *q.Lifespan) {
		return false
	}
	if q.HasAttribute != "" {
		found := false
		for _, a := range c.Attributes {
			if EqualFold(a, q.HasAttribute) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ParseLifespan parses the lifespan query value.
func ParseLifespan(s string) (*int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, ErrMalformed
	}
	return &n, nil
}

// ItemQuery holds the store's item listing filters. Birthdate bounds are
// DD-MM-YYYY strings and exclude items without a parseable birthdate.
type ItemQuery struct {
	Name        string
	Birthdate   string
	Picture     string
	BirthdateGT string
	BirthdateLT string
}

// ItemQueryKeys is the allow-list of item query parameters.
var ItemQueryKeys = map[string]struct{}{
	"name":        {},
	"birthdate":   {},
	"picture":     {},
	"birthdateGT": {},
	"birthdateLT": {},
}

// Matches reports whether the item satisfies every set predicate.
func (q *ItemQuery) Matches(i *Item) bool {
	if q.Name != "" && !EqualFold(i.Name, q.Name) {
		return false
	}
	if q.Birthdate != "" && i.Birthdate != q.Birthdate {
		return false
	}
	if q.Picture != "" && i.Picture != q.Picture {
		return false
	}
	if q.BirthdateGT != "" && !i.BirthdateAfter(q.BirthdateGT) {
		return false
	}
	if q.BirthdateLT != "" && !i.BirthdateBefore(q.BirthdateLT) {
		return false
	}
	return true
}
