package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
)

// ErrStorageUnavailable wraps every failure to read, decode or write the cart
// record, including timeouts.
var ErrStorageUnavailable = errors.New("storage unavailable")

// CartStore keeps the one cart record of the deployment.
type CartStore interface {
	// Load returns the stored cart, or a new empty cart when nothing has been
	// saved yet. The empty cart is not persisted by Load.
	// A record that cannot be decoded is an error, never an empty cart.
	Load(ctx context.Context) (*domain.Cart, error)

	// Save replaces the whole record atomically. If it fails, the previously
	// saved record stays readable.
	Save(ctx context.Context, cart *domain.Cart) error

	// Close releases the underlying connection or file handles
	Close() error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}

// normalize makes a decoded record safe to hand out
func normalize(cart *domain.Cart) *domain.Cart {
	if cart.Items == nil {
		cart.Items = []domain.Product{}
	}
	return cart
}
