package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNoVariants is returned for a product without any variant, which leaves it
// without a canonical price.
var ErrNoVariants = errors.New("product has no variants")

var (
	ErrMissingPrice  = errors.New("variant has no price")
	ErrNegativePrice = errors.New("variant price is negative")
)

type Product struct {
	ID          int64     `json:"id" bson:"id"`
	Title       string    `json:"title" bson:"title"`
	Handle      string    `json:"handle" bson:"handle"`
	BodyHTML    string    `json:"body_html" bson:"body_html"`
	PublishedAt string    `json:"published_at" bson:"published_at"`
	CreatedAt   string    `json:"created_at" bson:"created_at"`
	UpdatedAt   string    `json:"updated_at" bson:"updated_at"`
	Vendor      string    `json:"vendor" bson:"vendor"`
	ProductType string    `json:"product_type" bson:"product_type"`
	Tags        []string  `json:"tags" bson:"tags"`
	Variants    []Variant `json:"variants" bson:"variants"`
	Images      []Image   `json:"images" bson:"images"`
	Options     []Option  `json:"options" bson:"options"`
}

// Variant prices arrive as strings ("10.00"). They are decoded straight into a
// decimal so that a malformed price fails the decode instead of travelling
// through the system as text.
type Variant struct {
	ID               int64           `json:"id" bson:"id"`
	Title            string          `json:"title" bson:"title"`
	Option1          string          `json:"option1" bson:"option1"`
	Option2          string          `json:"option2" bson:"option2"`
	Option3          *string         `json:"option3" bson:"option3"`
	SKU              string          `json:"sku" bson:"sku"`
	RequiresShipping bool            `json:"requires_shipping" bson:"requires_shipping"`
	Taxable          bool            `json:"taxable" bson:"taxable"`
	FeaturedImage    map[string]any  `json:"featured_image" bson:"featured_image"`
	Available        bool            `json:"available" bson:"available"`
	Price            decimal.Decimal `json:"price" bson:"price"`
	Grams            int             `json:"grams" bson:"grams"`
	CompareAtPrice   *string         `json:"compare_at_price" bson:"compare_at_price"`
	Position         int             `json:"position" bson:"position"`
	ProductID        int64           `json:"product_id" bson:"product_id"`
	CreatedAt        string          `json:"created_at" bson:"created_at"`
	UpdatedAt        string          `json:"updated_at" bson:"updated_at"`
}

type Image struct {
	ID         int64   `json:"id" bson:"id"`
	CreatedAt  string  `json:"created_at" bson:"created_at"`
	Position   int     `json:"position" bson:"position"`
	UpdatedAt  string  `json:"updated_at" bson:"updated_at"`
	ProductID  int64   `json:"product_id" bson:"product_id"`
	VariantIDs []int64 `json:"variant_ids" bson:"variant_ids"`
	Src        string  `json:"src" bson:"src"`
	Width      int     `json:"width" bson:"width"`
	Height     int     `json:"height" bson:"height"`
}

type Option struct {
	Name     string   `json:"name" bson:"name"`
	Position int      `json:"position" bson:"position"`
	Values   []string `json:"values" bson:"values"`
}

// Price is the canonical price of the product: the price of its first variant.
func (p Product) Price() decimal.Decimal {
	if len(p.Variants) == 0 {
		return decimal.Zero
	}
	return p.Variants[0].Price
}

// Validate checks that the product carries a canonical price and that no
// variant is priced below zero.
func (p Product) Validate() error {
	if len(p.Variants) == 0 {
		return ErrNoVariants
	}
	for _, v := range p.Variants {
		if v.Price.IsNegative() {
			return fmt.Errorf("%w: variant %d: %s", ErrNegativePrice, v.ID, v.Price)
		}
	}
	return nil
}

// UnmarshalJSON requires a price. A missing or null price would otherwise
// decode as zero.
func (v *Variant) UnmarshalJSON(data []byte) error {
	type plain Variant
	var aux struct {
		plain
		Price json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Price) == 0 || bytes.Equal(aux.Price, []byte("null")) {
		return fmt.Errorf("%w: variant %d", ErrMissingPrice, aux.ID)
	}
	var price decimal.Decimal
	if err := json.Unmarshal(aux.Price, &price); err != nil {
		return fmt.Errorf("variant %d: %w", aux.ID, err)
	}
	*v = Variant(aux.plain)
	v.Price = price
	return nil
}

// MarshalJSON keeps the price a string with at least two decimals, the form
// the catalog uses ("40.00", not "40").
func (v Variant) MarshalJSON() ([]byte, error) {
	type plain Variant
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain(v), FormatPrice(v.Price)})
}

// FormatPrice renders d with at least two decimal places and never drops
// significant digits.
func FormatPrice(d decimal.Decimal) string {
	places := int32(2)
	if exp := -d.Exponent(); exp > places {
		places = exp
	}
	return d.StringFixed(places)
}
