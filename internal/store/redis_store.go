package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fjod/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the cart as a JSON string under a single key. SET replaces
// the value atomically.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore takes ownership of client; Close closes it.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "cart"
	}
	return &RedisStore{
		client: client,
		key:    key,
	}
}

func (r *RedisStore) Load(ctx context.Context) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewCart(), nil
	}
	if err != nil {
		return nil, unavailable("redis get", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, unavailable("decode cart", err)
	}
	return normalize(&cart), nil
}

func (r *RedisStore) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(normalize(cart.Clone()))
	if err != nil {
		return unavailable("encode cart", err)
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return unavailable("redis set", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
