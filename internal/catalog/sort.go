package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/fjod/storefront/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortMode values match the sortBy query parameter.
type SortMode string

const (
	TitleAsc  SortMode = "a"
	TitleDesc SortMode = "b"
	PriceDesc SortMode = "c"
	PriceAsc  SortMode = "d"
)

var ErrInvalidSortMode = errors.New("invalid sort mode")

func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(s); m {
	case TitleAsc, TitleDesc, PriceDesc, PriceAsc:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortMode, s)
	}
}

// Sort returns a new slice ordered by mode and leaves products untouched.
// The sort is stable, so ties keep their catalog order. An unknown mode
// yields an unchanged copy.
func Sort(products []domain.Product, mode SortMode) []domain.Product {
	out := slices.Clone(products)
	if out == nil {
		out = []domain.Product{}
	}

	switch mode {
	case TitleAsc, TitleDesc:
		// Collator keeps internal buffers and is not safe for concurrent use.
		col := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			if mode == TitleDesc {
				a, b = b, a
			}
			return col.CompareString(a.Title, b.Title)
		})
	case PriceDesc, PriceAsc:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			if mode == PriceDesc {
				a, b = b, a
			}
			return a.Price().Cmp(b.Price())
		})
	}

	return out
}
