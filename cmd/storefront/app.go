package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/config"
	"github.com/fjod/storefront/internal/events"
	"github.com/fjod/storefront/internal/service"
	"github.com/fjod/storefront/internal/store"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// app owns every long-lived resource. Close releases them in reverse order of
// creation.
type app struct {
	service   *service.CartService
	store     store.CartStore
	breaker   *store.BreakerStore
	cache     *cache.RedisCache
	publisher events.Publisher
	logger    *zap.Logger
}

func build(ctx context.Context, cfg *config.Config, lg *zap.Logger) (*app, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	lg.Info("catalog loaded", zap.Int("products", len(cat.ListAll())))

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{store: st, publisher: events.NopPublisher{}, logger: lg}

	if cfg.BreakerEnabled {
		a.breaker = store.WithBreaker(st, store.DefaultBreakerSettings(lg))
		a.store = a.breaker
	}

	opts := []service.Option{service.WithStoreTimeout(cfg.StoreTimeout)}

	if cfg.CacheRedisAddr != "" {
		client, err := newRedisClient(ctx, &redis.Options{Addr: cfg.CacheRedisAddr})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("cache %w", err)
		}
		a.cache = cache.NewRedisCache(client)
		opts = append(opts, service.WithCache(a.cache))
		lg.Info("cart cache enabled", zap.String("addr", cfg.CacheRedisAddr))
	}

	if len(cfg.KafkaBrokers) > 0 {
		a.publisher = events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		lg.Info("cart events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	opts = append(opts, service.WithPublisher(a.publisher))

	a.service = service.NewCartService(cat, a.store, lg, opts...)
	return a, nil
}

func loadCatalog(cfg *config.Config) (*catalog.MemoryCatalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.LoadDefault()
	}
	return catalog.LoadFile(cfg.CatalogPath)
}

func openStore(ctx context.Context, cfg *config.Config) (store.CartStore, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	case config.DriverFile:
		return store.NewFileStore(cfg.CartFile)
	case config.DriverRedis:
		client, err := newRedisClient(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return store.NewRedisStore(client, cfg.RedisCartKey), nil
	case config.DriverMongo:
		db, err := store.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		return store.NewMongoStore(db), nil
	case config.DriverSQLite:
		return store.OpenSQLite(cfg.SQLitePath)
	case config.DriverPostgres:
		return store.OpenPostgres(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// newRedisClient returns a traced client that has answered a ping.
func newRedisClient(ctx context.Context, opts *redis.Options) (*redis.Client, error) {
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis instrumentation failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// Health fails while the store breaker is open.
func (a *app) Health() error {
	if a.breaker != nil && a.breaker.State() == gobreaker.StateOpen {
		return errors.New("cart storage circuit is open")
	}
	return nil
}

func (a *app) Close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("failed to close event publisher", zap.Error(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close cache", zap.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close cart store", zap.Error(err))
	}
}
