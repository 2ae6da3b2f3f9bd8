package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"avasile/pricetracker/config"
	"avasile/pricetracker/internal/api"
	"avasile/pricetracker/internal/fetch"
	"avasile/pricetracker/internal/scraper"
	"avasile/pricetracker/internal/store"
	"avasile/pricetracker/logger"
	"avasile/pricetracker/services/cache"
	"avasile/pricetracker/services/publisher"
	"avasile/pricetracker/services/worker"
)

func main() {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	logger.Init()
	log := logger.Default

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	blocklist := cache.NewBlocklist(cache.NewMemcacheService(cfg.MemcacheAddr))
	client := fetch.NewClient(cfg, blocklist)

	scrapers, err := scraper.Registry(client, cfg.EnabledRetailers)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build scraper registry")
	}
	coordinator := scraper.NewCoordinator(scrapers)
	log.Info().Strs("retailers", coordinator.SupportedRetailers()).Msg("Scrapers registered")

	var pub publisher.Publisher
	redisPub, err := publisher.NewRedisPublisher(ctx, cfg)
	if err != nil {
		// The tracker still works without the stream; consumers just see nothing.
		log.Warn().Err(err).Msg("Redis unavailable, price events will not be published")
	} else {
		pub = redisPub
		defer redisPub.Close()
	}

	if cfg.WorkerEnabled {
		w := worker.New(db.Products, db.Prices, coordinator, pub, cfg.ScrapeInterval)
		go w.Start(ctx)
	}

	server := api.NewServer(db.Products, db.Prices, db.Alerts, coordinator, pub)
	httpServer := &http.Server{
		Addr:    cfg.APIAddr,
		Handler: server.Router(),
	}

	go func() {
		log.Info().Str("addr", cfg.APIAddr).Msg("API server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("API server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down API server cleanly")
		os.Exit(1)
	}
}
