package store

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerStore fails fast with ErrStorageUnavailable while the backend keeps
// failing, instead of letting every request wait for its own timeout.
type BreakerStore struct {
	next CartStore
	cb   *gobreaker.CircuitBreaker[*domain.Cart]
}

// DefaultBreakerSettings opens after 5 consecutive failures and probes again
// after 30 seconds.
func DefaultBreakerSettings(logger *zap.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "cart-store",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	}
}

func WithBreaker(next CartStore, settings gobreaker.Settings) *BreakerStore {
	if settings.IsSuccessful == nil {
		// a caller giving up is not a backend failure
		settings.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		}
	}
	return &BreakerStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*domain.Cart](settings),
	}
}

func (b *BreakerStore) Load(ctx context.Context) (*domain.Cart, error) {
	cart, err := b.cb.Execute(func() (*domain.Cart, error) {
		return b.next.Load(ctx)
	})
	if err != nil {
		return nil, breakerError("load cart", err)
	}
	return cart, nil
}

func (b *BreakerStore) Save(ctx context.Context, cart *domain.Cart) error {
	_, err := b.cb.Execute(func() (*domain.Cart, error) {
		return nil, b.next.Save(ctx, cart)
	})
	if err != nil {
		return breakerError("save cart", err)
	}
	return nil
}

func (b *BreakerStore) Close() error {
	return b.next.Close()
}

// State reports the breaker state for health checks.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func breakerError(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return unavailable(op, err)
	}
	return err
}
