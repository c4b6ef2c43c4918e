package store

import (
	"context"
	"testing"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id int64, title, price string) domain.Product {
	return domain.Product{
		ID:     id,
		Title:  title,
		Handle: "test-handle",
		Tags:   []string{"test"},
		Variants: []domain.Variant{
			{ID: id * 10, Title: "Default", Price: decimal.RequireFromString(price), ProductID: id},
		},
	}
}

func sampleCart() *domain.Cart {
	cart := domain.NewCart()
	cart.Add(testProduct(1, "Shirt", "29.99"))
	cart.Add(testProduct(2, "Jacket", "40.00"))
	cart.Add(testProduct(1, "Shirt", "29.99"))
	return cart
}

func assertSameCart(t *testing.T, want, got *domain.Cart) {
	t.Helper()
	require.NotNil(t, got)
	require.Len(t, got.Items, len(want.Items))
	for i := range want.Items {
		assert.Equal(t, want.Items[i].ID, got.Items[i].ID)
		assert.Equal(t, want.Items[i].Title, got.Items[i].Title)
		assert.True(t, want.Items[i].Price().Equal(got.Items[i].Price()),
			"price of item %d: want %s, got %s", i, want.Items[i].Price(), got.Items[i].Price())
	}
	assert.Equal(t, want.TotalItems, got.TotalItems)
	assert.InDelta(t, want.TotalCost, got.TotalCost, 1e-9)
}

// testCartStore runs the behaviour every backend must share.
func testCartStore(t *testing.T, newStore func(t *testing.T) CartStore) {
	t.Run("load before any save returns empty cart", func(t *testing.T) {
		s := newStore(t)
		cart, err := s.Load(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, cart.Items)
		assert.Empty(t, cart.Items)
		assert.Equal(t, 0, cart.TotalItems)
		assert.Equal(t, 0.0, cart.TotalCost)
	})

	t.Run("save then load round trips", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		want := sampleCart()

		require.NoError(t, s.Save(ctx, want))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assertSameCart(t, want, got)
	})

	t.Run("save replaces the previous record", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, sampleCart()))

		next := sampleCart()
		next.Remove(1)
		require.NoError(t, s.Save(ctx, next))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assertSameCart(t, next, got)
		assert.Equal(t, 1, got.TotalItems)
	})

	t.Run("saving an emptied cart keeps an empty item list", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		cart := sampleCart()
		require.NoError(t, s.Save(ctx, cart))
		cart.Remove(1)
		cart.Remove(2)
		require.NoError(t, s.Save(ctx, cart))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.NotNil(t, got.Items)
		assert.Empty(t, got.Items)
		assert.Equal(t, 0.0, got.TotalCost)
	})

	t.Run("later changes to saved cart are not visible", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		cart := sampleCart()
		require.NoError(t, s.Save(ctx, cart))
		cart.Add(testProduct(3, "Beanie", "18.50"))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, got.TotalItems)
	})
}
