// Package cart implements the per-user shopping cart.
package cart

import (
	"github.com/shopease/orderbot/internal/catalog"
)

// Cart maps product id to quantity. Every stored quantity is positive;
// setting a quantity to zero removes the entry instead of storing it.
type Cart map[string]int

// Line is one cart row resolved against the catalog.
type Line struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int    `json:"price"`
	LineTotal int    `json:"line_total"`
}

// New returns an empty cart.
func New() Cart {
	return make(Cart)
}

// Add increases the quantity for a product. Repeated adds accumulate.
// Non-positive quantities are ignored.
func (c Cart) Add(productID string, qty int) {
	if qty <= 0 {
		return
	}
	c[productID] += qty
}

// Set replaces the quantity for a product. A quantity of zero (or less)
// removes the entry.
func (c Cart) Set(productID string, qty int) {
	if qty <= 0 {
		delete(c, productID)
		return
	}
	c[productID] = qty
}

// Remove deletes a product from the cart.
func (c Cart) Remove(productID string) {
	delete(c, productID)
}

// Quantity returns the stored quantity for a product, 0 if absent.
func (c Cart) Quantity(productID string) int {
	return c[productID]
}

// Has reports whether the product is in the cart.
func (c Cart) Has(productID string) bool {
	_, ok := c[productID]
	return ok
}

// IsEmpty reports whether the cart has no entries.
func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// ItemCount returns the sum of all quantities.
func (c Cart) ItemCount() int {
	count := 0
	for _, qty := range c {
		count += qty
	}
	return count
}

// Total returns the grand total priced against the catalog. Products no
// longer in the catalog contribute nothing.
func (c Cart) Total(cat *catalog.Catalog) int {
	total := 0
	for pid, qty := range c {
		if p, ok := cat.Get(pid); ok {
			total += p.Price * qty
		}
	}
	return total
}

// Lines resolves the cart against the catalog in catalog order. Products
// no longer in the catalog are skipped.
func (c Cart) Lines(cat *catalog.Catalog) []Line {
	lines := make([]Line, 0, len(c))
	for _, p := range cat.All() {
		qty, ok := c[p.ID]
		if !ok {
			continue
		}
		lines = append(lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  qty,
			Price:     p.Price,
			LineTotal: p.Price * qty,
		})
	}
	return lines
}

// Clone returns an independent copy of the cart.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for pid, qty := range c {
		out[pid] = qty
	}
	return out
}

// Clear removes every entry.
func (c Cart) Clear() {
	for pid := range c {
		delete(c, pid)
	}
}
