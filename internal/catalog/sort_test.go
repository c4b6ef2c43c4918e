package catalog

import (
	"testing"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func p(id int64, title, price string) domain.Product {
	return domain.Product{
		ID:       id,
		Title:    title,
		Variants: []domain.Variant{{Price: decimal.RequireFromString(price)}},
	}
}

func ids(products []domain.Product) []int64 {
	out := make([]int64, len(products))
	for i, product := range products {
		out[i] = product.ID
	}
	return out
}

var allModes = []SortMode{TitleAsc, TitleDesc, PriceDesc, PriceAsc}

func TestParseSortMode(t *testing.T) {
	for _, raw := range []string{"a", "b", "c", "d"} {
		mode, err := ParseSortMode(raw)
		require.NoError(t, err)
		assert.Equal(t, SortMode(raw), mode)
	}

	for _, raw := range []string{"", "e", "A", "title"} {
		_, err := ParseSortMode(raw)
		assert.ErrorIs(t, err, ErrInvalidSortMode, raw)
	}
}

func TestSort_TwoProductScenario(t *testing.T) {
	products := []domain.Product{p(1, "B", "5"), p(2, "A", "10")}

	byTitle := Sort(products, TitleAsc)
	assert.Equal(t, []int64{2, 1}, ids(byTitle))

	byPrice := Sort(products, PriceDesc)
	assert.Equal(t, []int64{2, 1}, ids(byPrice))
}

func TestSort_AllModes(t *testing.T) {
	products := []domain.Product{
		p(1, "Cardigan", "30.00"),
		p(2, "anorak", "120.00"),
		p(3, "Beanie", "9.99"),
	}

	assert.Equal(t, []int64{2, 3, 1}, ids(Sort(products, TitleAsc)))
	assert.Equal(t, []int64{1, 3, 2}, ids(Sort(products, TitleDesc)))
	assert.Equal(t, []int64{2, 1, 3}, ids(Sort(products, PriceDesc)))
	assert.Equal(t, []int64{3, 1, 2}, ids(Sort(products, PriceAsc)))
}

func TestSort_TitlesUseCollationNotBytes(t *testing.T) {
	products := []domain.Product{
		p(1, "Zebra", "1"),
		p(2, "émile", "1"),
		p(3, "apple", "1"),
		p(4, "Banana", "1"),
	}

	// byte order would be Banana, Zebra, apple, émile
	assert.Equal(t, []int64{3, 4, 2, 1}, ids(Sort(products, TitleAsc)))
}

func TestSort_PricesCompareNumerically(t *testing.T) {
	products := []domain.Product{p(1, "A", "9.5"), p(2, "B", "10"), p(3, "C", "100")}

	// string comparison would put "10" and "100" before "9.5"
	assert.Equal(t, []int64{1, 2, 3}, ids(Sort(products, PriceAsc)))
}

func TestSort_StableOnTies(t *testing.T) {
	products := []domain.Product{
		p(1, "Same", "40.00"),
		p(2, "Other", "10.00"),
		p(3, "Same", "40"),
		p(4, "Same", "40.0"),
	}

	assert.Equal(t, []int64{1, 3, 4, 2}, ids(Sort(products, PriceDesc)))
	assert.Equal(t, []int64{2, 1, 3, 4}, ids(Sort(products, PriceAsc)))
	assert.Equal(t, []int64{2, 1, 3, 4}, ids(Sort(products, TitleAsc)))
	assert.Equal(t, []int64{1, 3, 4, 2}, ids(Sort(products, TitleDesc)))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	products := []domain.Product{p(1, "B", "5"), p(2, "A", "10"), p(3, "C", "1")}

	for _, mode := range allModes {
		_ = Sort(products, mode)
		assert.Equal(t, []int64{1, 2, 3}, ids(products), mode)
	}
}

func TestSort_IsPermutationAndIdempotent(t *testing.T) {
	c, err := LoadDefault()
	require.NoError(t, err)
	products := c.ListAll()

	for _, mode := range allModes {
		once := Sort(products, mode)
		assert.ElementsMatch(t, ids(products), ids(once), mode)
		assert.Equal(t, ids(once), ids(Sort(once, mode)), mode)
	}
}

func TestSort_DefaultCatalogOrders(t *testing.T) {
	c, err := LoadDefault()
	require.NoError(t, err)

	titles := func(products []domain.Product) []string {
		out := make([]string, len(products))
		for i, product := range products {
			out[i] = product.Title
		}
		return out
	}

	assert.Equal(t, []string{
		"Alpaca Wool Beanie",
		"canvas Tote",
		"Classic Denim Jacket",
		"Émile Linen Shirt",
		"Leather Weekender Bag",
		"Running Socks (3-Pack)",
		"Short Sleeve T-Shirt",
		"Zip Hoodie",
	}, titles(Sort(c.ListAll(), TitleAsc)))

	assert.Equal(t, []string{
		"Leather Weekender Bag",
		"Émile Linen Shirt",
		"Classic Denim Jacket",
		"Zip Hoodie",
		"Short Sleeve T-Shirt",
		"canvas Tote",
		"Alpaca Wool Beanie",
		"Running Socks (3-Pack)",
	}, titles(Sort(c.ListAll(), PriceDesc)))
}

func TestSort_UnknownModePassesThrough(t *testing.T) {
	products := []domain.Product{p(1, "B", "5"), p(2, "A", "10")}

	out := Sort(products, SortMode("z"))
	assert.Equal(t, []int64{1, 2}, ids(out))

	out[0] = p(9, "X", "1")
	assert.Equal(t, int64(1), products[0].ID)
}

func TestSort_EmptyInput(t *testing.T) {
	assert.Empty(t, Sort(nil, TitleAsc))
	assert.NotNil(t, Sort(nil, TitleAsc))
}
