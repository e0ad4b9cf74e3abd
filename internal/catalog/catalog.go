// Package catalog loads the product listings produced by the crawler
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pdp-recon/internal/model"
	"pdp-recon/internal/normalize"
)

// Catalog indexes crawler records by normalized product name
type Catalog struct {
	products []model.Product
	byName   map[string]*model.Product
}

// Path returns the crawler output file of a section and region
func Path(dir string, section model.Section, region model.Region) string {
	return filepath.Join(dir, string(section), fmt.Sprintf("products-%s.json", region.Lower()))
}

// Load reads the crawler output of a section and region
func Load(dir string, section model.Section, region model.Region) (*Catalog, error) {
	path := Path(dir, section, region)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return New(products), nil
}

// New indexes products. When two records share a name the first wins.
func New(products []model.Product) *Catalog {
	c := &Catalog{products: products, byName: make(map[string]*model.Product, len(products))}
	for i := range c.products {
		key := normalize.Name(c.products[i].Name)
		if _, ok := c.byName[key]; !ok {
			c.byName[key] = &c.products[i]
		}
	}
	return c
}

// Lookup finds a product by name, or returns nil
func (c *Catalog) Lookup(name string) *model.Product {
	if c == nil {
		return nil
	}
	return c.byName[normalize.Name(name)]
}

// Len returns the number of records
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}
