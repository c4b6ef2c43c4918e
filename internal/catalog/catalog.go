package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fjod/storefront/internal/domain"
)

//go:embed products.json
var defaultProducts []byte

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("duplicate product id")
)

// Catalog is the read-only product source. It is loaded once at startup and
// never changes for the lifetime of the process.
type Catalog interface {
	ListAll() []domain.Product
	FindByID(id int64) (domain.Product, bool)
}

// MemoryCatalog holds the products in load order. It is never written after
// New returns, so concurrent readers need no locking.
type MemoryCatalog struct {
	products []domain.Product
	byID     map[int64]int
}

func New(products []domain.Product) (*MemoryCatalog, error) {
	c := &MemoryCatalog{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("product %d: %w", p.ID, err)
		}
		if _, exists := c.byID[p.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateProduct, p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// Load decodes a JSON array of products.
func Load(r io.Reader) (*MemoryCatalog, error) {
	var products []domain.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return New(products)
}

func LoadFile(path string) (*MemoryCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// LoadDefault loads the catalog bundled with the binary.
func LoadDefault() (*MemoryCatalog, error) {
	return Load(bytes.NewReader(defaultProducts))
}

// ListAll returns a copy of the listing; callers may reorder it freely.
func (c *MemoryCatalog) ListAll() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *MemoryCatalog) FindByID(id int64) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}
