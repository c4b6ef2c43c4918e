package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	Logger         *zap.Logger
	// Health reports an error when the service should be taken out of
	// rotation. Nil means always healthy.
	Health func() error
}

func NewRouter(cart CartService, products ProductLister, cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	cartHandler := NewCartHandler(cart, cfg.RequestTimeout)
	productHandler := NewProductHandler(products)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDHeader)
	r.Use(AccessLog(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(); err != nil {
				respondError(w, http.StatusServiceUnavailable, "unhealthy", err.Error())
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/products", func(r chi.Router) {
		r.Get("/", productHandler.List)
		r.Get("/cart", cartHandler.GetCart)
		r.Post("/{productId}/cart", cartHandler.AddProduct)
		r.Delete("/{productId}/cart", cartHandler.RemoveProduct)
	})

	return otelhttp.NewHandler(r, "storefront")
}
