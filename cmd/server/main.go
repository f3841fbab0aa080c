package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/komparator/backend/config"
	httpDelivery "github.com/komparator/backend/internal/delivery/http"
	"github.com/komparator/backend/internal/domain"
	"github.com/komparator/backend/internal/infrastructure/cache"
	"github.com/komparator/backend/internal/infrastructure/fetch"
	"github.com/komparator/backend/internal/infrastructure/marketplace"
	"github.com/komparator/backend/internal/infrastructure/progress"
	"github.com/komparator/backend/internal/pkg/logger"
	"github.com/komparator/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Server.Environment, cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLogger.Sync() //nolint:errcheck

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, appLogger *zap.Logger) error {
	appLogger.Info("starting komparator backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache", cfg.Cache.Type),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
		zap.Int("workers", cfg.Compare.Workers))

	// Initialize infrastructure dependencies
	resultCache, closeCache, err := newCache(cfg.Cache, appLogger)
	if err != nil {
		return err
	}
	defer closeCache()

	fetchClient, err := fetch.NewClient(fetch.Options{
		UserAgent:         cfg.Scraper.UserAgent,
		Timeout:           cfg.Scraper.Timeout,
		MaxRetries:        cfg.Scraper.MaxRetries,
		RequestsPerSecond: cfg.Scraper.RequestsPerSecond,
		Burst:             cfg.Scraper.Burst,
		Parallelism:       cfg.Compare.Workers,
		RandomDelay:       cfg.Scraper.RandomDelay,
	}, fetch.NewNoopCaptchaSolver(appLogger), appLogger)
	if err != nil {
		return fmt.Errorf("failed to create fetch client: %w", err)
	}

	// Enable debug mode in development environment
	if cfg.Server.IsDevelopment() {
		fetchClient.SetDebug(true)
		appLogger.Debug("fetch client debug mode enabled")
	}

	extractor := marketplace.NewExtractor(appLogger)
	locator := marketplace.NewLocator(appLogger)
	hub := progress.NewHub(0, appLogger)

	// Initialize usecase layer
	collector := usecase.NewCollector(cfg.Compare.Workers, appLogger)
	comparator := usecase.NewComparator(fetchClient, extractor, locator, collector, hub, appLogger)
	finder := usecase.NewFinderService(
		resultCache,
		fetchClient,
		extractor,
		comparator,
		usecase.FinderServiceConfig{CacheTTL: cfg.Cache.TTL},
		appLogger,
	)

	// Create HTTP handler with dependencies and setup router
	handler := httpDelivery.NewHandler(finder, hub, appLogger)
	router := httpDelivery.SetupRouter(cfg, handler, appLogger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		appLogger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newCache builds the configured result cache and its close function
func newCache(cfg config.CacheConfig, appLogger *zap.Logger) (domain.CacheRepository, func(), error) {
	switch cfg.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisCache.Ping(ctx); err != nil {
			redisCache.Close()
			return nil, nil, err
		}
		appLogger.Info("using redis cache")
		return redisCache, func() { redisCache.Close() }, nil
	default:
		memoryCache := cache.NewMemoryCache(0)
		return memoryCache, func() { memoryCache.Close() }, nil
	}
}
