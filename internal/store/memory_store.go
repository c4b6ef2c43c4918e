package store

import (
	"context"
	"sync"

	"github.com/fjod/storefront/internal/domain"
)

// MemoryStore keeps the cart in process memory. It does not survive restarts
// and exists for local runs and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	cart *domain.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("load cart", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cart == nil {
		return domain.NewCart(), nil
	}
	return s.cart.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, cart *domain.Cart) error {
	if err := ctx.Err(); err != nil {
		return unavailable("save cart", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = normalize(cart.Clone())
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
