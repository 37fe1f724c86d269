package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/rental-pricing/api/controllers"
	"github.com/angelmondragon/rental-pricing/api/routes"
	"github.com/angelmondragon/rental-pricing/internal/directory"
	"github.com/angelmondragon/rental-pricing/internal/quotecache"
	"github.com/angelmondragon/rental-pricing/internal/quotes"
	"github.com/angelmondragon/rental-pricing/pkg/config"
	"github.com/angelmondragon/rental-pricing/pkg/db"
	"github.com/angelmondragon/rental-pricing/pkg/logger"
	"github.com/angelmondragon/rental-pricing/pkg/metrics"
	"github.com/angelmondragon/rental-pricing/pkg/migrate"
	"github.com/angelmondragon/rental-pricing/pkg/pubsub"
	"github.com/angelmondragon/rental-pricing/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

type directorySource interface {
	quotes.Directory
	quotes.PolicyCatalog
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "rental-pricing-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "rental-pricing-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}

	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		closers = append(closers, redisClient.Close)
	}

	var dbPinger controllers.Pinger
	var source directorySource
	if cfg.Directory.UsesDB() {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return err
		}
		closers = append(closers, dbClient.Close)
		dbPinger = dbClient

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			return err
		}

		repo, err := directory.NewRepository(dbClient.DB())
		if err != nil {
			return err
		}
		source = repo
	} else {
		httpClient, err := directory.NewHTTPClient(
			cfg.Directory.BaseDataURL,
			cfg.Directory.ProductURL,
			directory.WithTimeout(cfg.Directory.Timeout),
		)
		if err != nil {
			return err
		}
		source = httpClient
	}

	var cache quotes.Cache
	if cfg.Cache.UsesMemory() {
		cache, err = quotecache.NewMemory(cfg.Pricing.QuoteTTL, nil)
	} else {
		cache, err = quotecache.NewRedis(redisClient, cfg.Pricing.QuoteTTL, logg, nil)
	}
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	quoteMetrics := metrics.NewQuoteMetrics(registry)

	var events quotes.EventPublisher
	if cfg.PubSub.Enabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return err
		}
		closers = append(closers, psClient.Close)

		publisher, err := pubsub.NewTopicPublisher(psClient, cfg.PubSub.SearchEventsTopic)
		if err != nil {
			return err
		}
		closers = append(closers, func() error {
			publisher.Stop()
			return nil
		})
		events = publisher
	}

	quoteService, err := quotes.NewService(quotes.ServiceParams{
		Directory: source,
		Policies:  source,
		Cache:     cache,
		Logger:    logg,
		Metrics:   quoteMetrics,
		Events:    events,
		Pricing:   cfg.Pricing,
		Location:  loc,
	})
	if err != nil {
		return err
	}
	if d, ok := quoteService.(quotes.Drainer); ok {
		// runs before the publisher is stopped
		closers = append(closers, func() error {
			drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return d.Drain(drainCtx)
		})
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbPinger, redisClient, quoteService, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"directory_mode": cfg.Directory.Mode,
		"cache_driver":   cfg.Cache.Driver,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
