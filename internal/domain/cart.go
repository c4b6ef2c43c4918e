package domain

import "github.com/shopspring/decimal"

// Cart is the single shared cart. Items hold full product snapshots taken at
// add time; the same product may appear more than once.
type Cart struct {
	Items      []Product `json:"items" bson:"items"`
	TotalItems int       `json:"totalItems" bson:"total_items"`
	TotalCost  float64   `json:"totalCost" bson:"total_cost"`
}

func NewCart() *Cart {
	return &Cart{Items: []Product{}}
}

// Add appends one entry for p.
func (c *Cart) Add(p Product) {
	c.Items = append(c.Items, p)
	c.recalculate()
}

// Remove drops every entry whose id matches and returns how many were dropped.
// Totals are reduced by exactly what was removed.
func (c *Cart) Remove(productID int64) int {
	kept := make([]Product, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ID != productID {
			kept = append(kept, item)
		}
	}
	removed := len(c.Items) - len(kept)
	c.Items = kept
	c.recalculate()
	return removed
}

// Cost sums the canonical prices of all entries.
func (c *Cart) Cost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price())
	}
	return total
}

// Clone copies the item slice. Product snapshots are shared, they are never
// modified in place.
func (c *Cart) Clone() *Cart {
	items := make([]Product, len(c.Items))
	copy(items, c.Items)
	return &Cart{
		Items:      items,
		TotalItems: c.TotalItems,
		TotalCost:  c.TotalCost,
	}
}

// totals are derived from Items so they cannot drift or go negative
func (c *Cart) recalculate() {
	if c.Items == nil {
		c.Items = []Product{}
	}
	c.TotalItems = len(c.Items)
	c.TotalCost = c.Cost().InexactFloat64()
}
