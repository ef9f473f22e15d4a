package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiterhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"

	"github.com/noah-isme/ngepos/internal/catalog"
	"github.com/noah-isme/ngepos/internal/common"
	"github.com/noah-isme/ngepos/internal/health"
	"github.com/noah-isme/ngepos/internal/obs"
	"github.com/noah-isme/ngepos/internal/pos"
	"github.com/noah-isme/ngepos/internal/security"
)

// RouterConfig configures the HTTP surface.
type RouterConfig struct {
	Logger         zerolog.Logger
	CORSOrigins    []string
	HTTPMetrics    *obs.HTTPMetrics
	Tracing        bool
	MetricsHandler http.Handler
	Pprof          http.Handler
	Redis          *redis.Client
	IdempotencyTTL time.Duration
	Probes         []health.Probe
	BodyLimit      int64
	HSTSMaxAge     int
}

// Router builds the chi router serving the till API.
func (a *App) Router(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	r.Use(obs.HTTPObs{Metrics: cfg.HTTPMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: cfg.Logger}.Middleware)
	r.Use(security.Headers{HSTSMaxAge: cfg.HSTSMaxAge}.Middleware)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{common.ReplayHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.Pprof != nil {
		r.Mount("/debug/pprof", cfg.Pprof)
	}

	probes := cfg.Probes
	if probes == nil {
		probes = a.Probes()
	}
	hh := health.Handler{Probes: probes}
	r.Get("/health/live", hh.Live)
	r.Get("/health/ready", hh.Ready)

	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: a.Catalog})
	posHandler := pos.NewHandler(pos.HandlerConfig{Session: a.Session})

	checkoutGuard := func(next http.Handler) http.Handler { return next }
	if cfg.Redis != nil {
		checkoutGuard = common.Idem{R: cfg.Redis, TTL: cfg.IdempotencyTTL}.Middleware
	}

	r.Route("/api/v1", func(api chi.Router) {
		if a.Limiter != nil {
			api.Use(limiterhttp.NewMiddleware(a.Limiter, limiterhttp.WithLimitReachedHandler(limitReached)).Handler)
		}

		api.Use(security.BodyLimit{Max: cfg.BodyLimit}.Middleware)

		api.Get("/products", catalogHandler.Products)
		api.Get("/products/{id}", catalogHandler.Product)

		api.Get("/cart", posHandler.Cart)
		api.Delete("/cart", posHandler.ClearCart)
		api.Post("/cart/items", posHandler.AddItem)
		api.Patch("/cart/items/{productId}", posHandler.UpdateItem)
		api.Delete("/cart/items/{productId}", posHandler.RemoveItem)

		api.Get("/checkout/quick-amounts", posHandler.QuickAmounts)
		api.Get("/checkout/evaluate", posHandler.Evaluate)
		api.With(checkoutGuard).Post("/checkout", posHandler.Checkout)

		api.Get("/transactions", posHandler.Transactions)
		api.Delete("/transactions", posHandler.ClearTransactions)
		api.Get("/dashboard", posHandler.Dashboard)
	})

	return r
}

// Probes lists the readiness checks for the App's dependencies.
func (a *App) Probes() []health.Probe {
	return []health.Probe{
		{Name: "ledger_store", Pinger: a.Store},
		{Name: "catalog_cache", Pinger: a.Catalog},
	}
}

func limitReached(w http.ResponseWriter, _ *http.Request) {
	common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
}
