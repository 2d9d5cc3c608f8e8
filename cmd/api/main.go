package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"recipevault/internal/api"
	"recipevault/internal/cache"
	"recipevault/internal/config"
	"recipevault/internal/logging"
	"recipevault/internal/platform/spoonacular"
	"recipevault/internal/recipe"
)

const name = "recipevault"

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	if cfg == nil {
		// help was shown
		return nil
	}

	logging.SetDefaultStructuredLogger(name, config.GetVersion(), cfg.LogLevel)
	log := slog.Default()
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := recipe.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("error creating postgres store: %w", err)
	}
	defer store.Close()
	log.Info("connected to database")

	recipeCache, closeCache, err := newRecipeCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	client := spoonacular.NewClient(spoonacular.Config{
		BaseURL:   cfg.SpoonacularBaseURL,
		APIKey:    cfg.SpoonacularAPIKey,
		Timeout:   cfg.UpstreamTimeout,
		RateLimit: cfg.UpstreamRate,
		Burst:     cfg.UpstreamBurst,
	})

	aggregator := recipe.NewAggregator(client, recipeCache, recipe.NewAnnotator(store), log)
	handler := api.NewHandler(aggregator, store, cfg.RequestTimeout, log)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(handler, cfg.CORSOrigins),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting http server", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("http server error: %w", err)
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	log.Info("http server stopped")
	return nil
}

// newRecipeCache builds the in-process LRU and, when a Redis address is
// configured, puts it in front of a shared Redis tier.
func newRecipeCache(ctx context.Context, cfg *config.Config) (recipe.Cache, func(), error) {
	local := cache.NewMemory[*recipe.Recipe](cfg.CacheSize, cfg.CacheTTL)
	if cfg.RedisAddr == "" {
		return local, func() {}, nil
	}

	shared, err := cache.NewRedis[*recipe.Recipe](ctx, cache.RedisConfig{
		Address:  cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   "recipe",
		TTL:      cfg.RedisTTL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to redis: %w", err)
	}
	slog.Info("using redis recipe cache", "address", cfg.RedisAddr)

	closeFn := func() {
		if err := shared.Close(); err != nil {
			slog.Warn("failed to close redis client", "error", err)
		}
	}
	return cache.NewTiered[*recipe.Recipe](local, shared), closeFn, nil
}
