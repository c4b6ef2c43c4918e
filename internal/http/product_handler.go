package http

import (
	"net/http"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
)

type ProductLister interface {
	ListProducts(mode catalog.SortMode) []domain.Product
}

type ProductHandler struct {
	products ProductLister
}

func NewProductHandler(products ProductLister) *ProductHandler {
	return &ProductHandler{products: products}
}

// List serves the catalog in the order selected by the sortBy query
// parameter.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	mode, err := catalog.ParseSortMode(r.URL.Query().Get("sortBy"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_sort", "sortBy must be one of a, b, c, d")
		return
	}

	respondJSON(w, http.StatusOK, h.products.ListProducts(mode))
}
