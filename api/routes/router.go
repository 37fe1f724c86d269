package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/rental-pricing/api/controllers"
	"github.com/angelmondragon/rental-pricing/api/middleware"
	"github.com/angelmondragon/rental-pricing/internal/quotes"
	"github.com/angelmondragon/rental-pricing/pkg/config"
	"github.com/angelmondragon/rental-pricing/pkg/logger"
	"github.com/angelmondragon/rental-pricing/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	quoteService quotes.Service,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	// keep these nil interfaces when Redis is not configured
	var redisP controllers.Pinger
	var limiter middleware.WindowLimiter
	if redisClient != nil {
		redisP = redisClient
		limiter = redisClient
	}

	searchPolicy := middleware.NewRateLimitPolicy(
		"quote_search",
		cfg.RateLimit.SearchWindow,
		cfg.RateLimit.SearchIPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/quotes", func(r chi.Router) {
		r.With(middleware.RateLimit(searchPolicy, limiter, logg)).Post("/search", controllers.QuoteSearch(quoteService, logg))
		r.Get("/{quoteId}", controllers.QuoteDetail(quoteService, logg))
	})

	return r
}
