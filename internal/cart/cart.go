// Package cart holds the per-session selection of listings. A Cart is an
// immutable value: every operation returns a new cart.
package cart

import (
	"codemarket/internal/domain"

	"github.com/shopspring/decimal"
)

// Cart is an ordered set of listings keyed by listing id
type Cart struct {
	items []domain.Listing
}

// New returns an empty cart
func New() Cart {
	return Cart{}
}

// Add appends listing unless a listing with the same id is already present
func (c Cart) Add(listing domain.Listing) Cart {
	if c.Contains(listing.ID) {
		return c
	}
	items := make([]domain.Listing, len(c.items), len(c.items)+1)
	copy(items, c.items)
	return Cart{items: append(items, listing.Clone())}
}

// Remove drops the listing with id, if present
func (c Cart) Remove(id string) Cart {
	items := make([]domain.Listing, 0, len(c.items))
	for _, l := range c.items {
		if l.ID != id {
			items = append(items, l)
		}
	}
	return Cart{items: items}
}

// Clear returns an empty cart
func (c Cart) Clear() Cart {
	return Cart{}
}

// Contains reports whether a listing with id is in the cart
func (c Cart) Contains(id string) bool {
	for _, l := range c.items {
		if l.ID == id {
			return true
		}
	}
	return false
}

// Len returns the number of listings in the cart
func (c Cart) Len() int {
	return len(c.items)
}

// Items returns a copy of the cart's listings in insertion order
func (c Cart) Items() []domain.Listing {
	out := make([]domain.Listing, len(c.items))
	for i, l := range c.items {
		out[i] = l.Clone()
	}
	return out
}

// First returns the earliest added listing
func (c Cart) First() (domain.Listing, bool) {
	if len(c.items) == 0 {
		return domain.Listing{}, false
	}
	return c.items[0].Clone(), true
}

// Total sums the listing prices, rounded to 2 decimal places
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.items {
		total = total.Add(l.Price)
	}
	return total.Round(2)
}
