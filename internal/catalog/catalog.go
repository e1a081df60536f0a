// Package catalog derives the displayed listing sequence from the full
// listing set and the caller's filter state. Everything here is pure.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"codemarket/internal/domain"
)

// SortBy selects the ordering of derived listings
type SortBy string

const (
	SortNewest    SortBy = "newest"
	SortPriceLow  SortBy = "price-low"
	SortPriceHigh SortBy = "price-high"
	SortRating    SortBy = "rating"
)

// AllCategories disables the category filter
const AllCategories = "all"

// Filter is the transient filter/sort state supplied by the caller. The zero
// Filter keeps every listing newest first: an empty Category is the same as
// AllCategories.
type Filter struct {
	Query    string
	Category string
	SortBy   SortBy
}

// ParseSortBy maps a query parameter to a SortBy. Empty means newest.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case "":
		return SortNewest, nil
	case SortNewest, SortPriceLow, SortPriceHigh, SortRating:
		return SortBy(s), nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// Derive returns the listings matching f, ordered by f.SortBy. The input
// slice is left untouched; ties keep their input order.
func Derive(listings []domain.Listing, f Filter) []domain.Listing {
	query := strings.ToLower(f.Query)

	out := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if matches(l, query, f.Category) {
			out = append(out, l)
		}
	}

	slices.SortStableFunc(out, comparator(f.SortBy))
	return out
}

// matches reports whether l passes both the search and category predicates.
// query must already be lowercased.
func matches(l domain.Listing, query, category string) bool {
	return matchesQuery(l, query) && matchesCategory(l, category)
}

func matchesQuery(l domain.Listing, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(l.Title), query) ||
		strings.Contains(strings.ToLower(l.Description), query) {
		return true
	}
	for _, tag := range l.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func matchesCategory(l domain.Listing, category string) bool {
	return category == "" || category == AllCategories || l.Category == category
}

func comparator(sortBy SortBy) func(a, b domain.Listing) int {
	switch sortBy {
	case SortPriceLow:
		return func(a, b domain.Listing) int { return a.Price.Cmp(b.Price) }
	case SortPriceHigh:
		return func(a, b domain.Listing) int { return b.Price.Cmp(a.Price) }
	case SortRating:
		return func(a, b domain.Listing) int { return compareFloat(b.Rating, a.Rating) }
	default:
		return func(a, b domain.Listing) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Categories lists the distinct listing categories in first-appearance order
func Categories(listings []domain.Listing) []string {
	seen := make(map[string]struct{}, len(listings))
	out := []string{}
	for _, l := range listings {
		if _, ok := seen[l.Category]; ok {
			continue
		}
		seen[l.Category] = struct{}{}
		out = append(out, l.Category)
	}
	return out
}
