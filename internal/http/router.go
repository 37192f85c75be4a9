package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/cartstore/internal/tracing"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Cart           CartService
	RequestTimeout time.Duration
	Logger         *zap.Logger
	Gatherer       prometheus.Gatherer
	Catalog        http.Handler // mounted under /catalog when set
}

func NewRouter(cfg RouterConfig) http.Handler {
	cartHandler := NewCartHandler(cfg.Cart, cfg.RequestTimeout, cfg.Logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(cfg.Logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", cartHandler.GetCart)
		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{product_id}", cartHandler.UpdateAmount)
		r.Delete("/items/{product_id}", cartHandler.RemoveItem)
	})

	if cfg.Catalog != nil {
		r.Mount("/catalog", cfg.Catalog)
	}

	return otelhttp.NewHandler(r, "cartstore", otelhttp.WithPropagators(tracing.Propagator()))
}
