// Package catalog provides the static product catalog shared by all sessions.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Product is a single sellable item. Prices are whole rupees.
type Product struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Price int    `yaml:"price" json:"price"`
}

// Catalog is an immutable, ordered set of products. It is built once at
// startup and shared read-only across all sessions.
type Catalog struct {
	byID  map[string]Product
	order []Product
}

// New builds a catalog from an ordered product list.
func New(products []Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("catalog cannot be empty")
	}

	c := &Catalog{
		byID:  make(map[string]Product, len(products)),
		order: make([]Product, 0, len(products)),
	}

	for _, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("product with empty id")
		}
		if p.Name == "" {
			return nil, fmt.Errorf("product %s has empty name", p.ID)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %s has negative price %d", p.ID, p.Price)
		}
		if _, exists := c.byID[p.ID]; exists {
			return nil, fmt.Errorf("duplicate product id %s", p.ID)
		}
		c.byID[p.ID] = p
		c.order = append(c.order, p)
	}

	return c, nil
}

// catalogFile is the on-disk YAML shape.
type catalogFile struct {
	Products []Product `yaml:"products"`
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	c, err := New(file.Products)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog in %s: %w", path, err)
	}
	return c, nil
}

// Default returns the built-in ShopEase catalog, used when no catalog file
// is configured.
func Default() *Catalog {
	c, err := New([]Product{
		{ID: "1", Name: "Wireless Mouse", Price: 650},
		{ID: "2", Name: "Bluetooth Headphones", Price: 799},
		{ID: "3", Name: "USB-C Charger", Price: 1499},
		{ID: "4", Name: "Laptop Stand", Price: 699},
	})
	if err != nil {
		// The built-in list is known-good; this cannot happen.
		panic(err)
	}
	return c
}

// Get returns the product with the given id. Unknown ids are a normal
// not-found result, never an error.
func (c *Catalog) Get(id string) (Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// All returns every product in configuration order.
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.order)
}
