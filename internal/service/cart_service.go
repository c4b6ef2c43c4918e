package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/fjod/storefront/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultStoreTimeout = 5 * time.Second

	// there is one cart per deployment
	cartKey = "shared"
)

type Option func(*CartService)

// WithCache puts a write-through cache in front of the store.
func WithCache(c cache.CartCache) Option {
	return func(s *CartService) { s.cache = c }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *CartService) { s.publisher = p }
}

func WithStoreTimeout(d time.Duration) Option {
	return func(s *CartService) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// CartService owns every read-modify-write of the cart. Mutations are
// serialized by mu, so two concurrent adds can never lose one another.
type CartService struct {
	catalog      catalog.Catalog
	store        store.CartStore
	cache        cache.CartCache
	publisher    events.Publisher
	logger       *zap.Logger
	storeTimeout time.Duration

	mu  sync.Mutex
	sfg singleflight.Group // coalesces concurrent reads
}

func NewCartService(cat catalog.Catalog, st store.CartStore, logger *zap.Logger, opts ...Option) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CartService{
		catalog:      cat,
		store:        st,
		publisher:    events.NopPublisher{},
		logger:       logger,
		storeTimeout: DefaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListProducts returns the catalog ordered by mode. An unrecognized mode
// returns the catalog order.
func (s *CartService) ListProducts(mode catalog.SortMode) []domain.Product {
	return catalog.Sort(s.catalog.ListAll(), mode)
}

// GetCart returns a private copy of the stored cart.
func (s *CartService) GetCart(ctx context.Context) (*domain.Cart, error) {
	ch := s.sfg.DoChan(cartKey, func() (interface{}, error) {
		// the flight is shared, so it must outlive the caller that started it
		flightCtx := context.WithoutCancel(ctx)
		if s.cache != nil {
			cart, err := s.cacheGet(flightCtx)
			if err == nil {
				return cart, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				s.logger.Warn("cache get error", zap.Error(err))
			}
		}
		return s.load(flightCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// the shared result may be handed to several callers
		return res.Val.(*domain.Cart).Clone(), nil
	case <-ctx.Done():
		return nil, storageError(ctx.Err())
	}
}

func (s *CartService) cacheGet(ctx context.Context) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.cache.Get(ctx, cartKey)
}

// AddProduct appends one snapshot of the product to the cart.
func (s *CartService) AddProduct(ctx context.Context, productID int64) (*domain.Cart, error) {
	product, err := s.findProduct(productID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	cart.Add(product)

	if err := s.commit(ctx, cart, events.ActionAdded, productID); err != nil {
		return nil, err
	}

	s.logger.Info("product added to cart",
		zap.Int64("product_id", productID),
		zap.Int("total_items", cart.TotalItems))
	return cart.Clone(), nil
}

// RemoveProduct drops every entry of the product from the cart. Removing a
// product that is not in the cart leaves the cart unchanged.
func (s *CartService) RemoveProduct(ctx context.Context, productID int64) (*domain.Cart, error) {
	if _, err := s.findProduct(productID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	removed := cart.Remove(productID)
	if removed == 0 {
		return cart, nil
	}

	if err := s.commit(ctx, cart, events.ActionRemoved, productID); err != nil {
		return nil, err
	}

	s.logger.Info("product removed from cart",
		zap.Int64("product_id", productID),
		zap.Int("removed", removed),
		zap.Int("total_items", cart.TotalItems))
	return cart.Clone(), nil
}

func (s *CartService) findProduct(productID int64) (domain.Product, error) {
	product, ok := s.catalog.FindByID(productID)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %d", catalog.ErrProductNotFound, productID)
	}
	return product, nil
}

func (s *CartService) load(ctx context.Context) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	cart, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error("cart load failed", zap.Error(err))
		return nil, storageError(err)
	}
	return cart, nil
}

// commit saves the cart and, only once the save succeeded, refreshes the
// cache and publishes the event. Must be called with mu held.
func (s *CartService) commit(ctx context.Context, cart *domain.Cart, action events.Action, productID int64) error {
	saveCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.store.Save(saveCtx, cart); err != nil {
		s.logger.Error("cart save failed",
			zap.String("action", string(action)),
			zap.Int64("product_id", productID),
			zap.Error(err))
		return storageError(err)
	}

	// the save is committed; a client hanging up must not skip the rest
	bgCtx, bgCancel := context.WithTimeout(context.WithoutCancel(ctx), s.storeTimeout)
	defer bgCancel()

	s.refreshCache(bgCtx, cart)

	event := events.NewCartUpdated(action, productID, cart)
	if err := s.publisher.PublishCartUpdated(bgCtx, event); err != nil {
		s.logger.Warn("cart event publish failed",
			zap.String("event_id", event.ID.String()),
			zap.Error(err))
	}
	return nil
}

func (s *CartService) refreshCache(ctx context.Context, cart *domain.Cart) {
	if s.cache == nil {
		return
	}
	errSet := s.cache.Set(ctx, cartKey, cart)
	if errSet == nil {
		return
	}
	s.logger.Warn("cache set error", zap.Error(errSet))

	// a stale entry would outlive the committed cart
	if errDelete := s.cache.Delete(ctx, cartKey); errDelete != nil {
		s.logger.Warn("cache invalidate error", zap.Error(errDelete))
	}
}

func storageError(err error) error {
	if errors.Is(err, store.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
}
