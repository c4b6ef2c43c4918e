package cache

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, name string) (*domain.Cart, error)
	Set(ctx context.Context, name string, cart *domain.Cart) error
	Delete(ctx context.Context, name string) error
}

var ErrCacheMiss = errors.New("cache miss")
