package events

import (
	"context"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/google/uuid"
)

type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
)

// CartUpdated describes a committed cart mutation.
type CartUpdated struct {
	ID         uuid.UUID `json:"id"`
	Action     Action    `json:"action"`
	ProductID  int64     `json:"productId"`
	TotalItems int       `json:"totalItems"`
	TotalCost  float64   `json:"totalCost"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewCartUpdated(action Action, productID int64, cart *domain.Cart) CartUpdated {
	return CartUpdated{
		ID:         uuid.New(),
		Action:     action,
		ProductID:  productID,
		TotalItems: cart.TotalItems,
		TotalCost:  cart.TotalCost,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	PublishCartUpdated(ctx context.Context, event CartUpdated) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishCartUpdated(context.Context, CartUpdated) error { return nil }

func (NopPublisher) Close() error { return nil }
