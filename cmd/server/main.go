/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the tuition engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (config.yaml + environment), then apply flags
  2. Build the zap logger
  3. Initialize SQLite store
  4. Connect the Redis result cache when REDIS_ADDR is set
  5. Create API handler, router and warm-up scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides APP_PORT)
  -db      SQLite database path (overrides DATABASE_PATH)
           Use ":memory:" for in-memory database
  -seed    Load a demo scenario into an empty database

ENVIRONMENT:
  APP_PORT, DATABASE_PATH, ENV, LOG_LEVEL, REDIS_ADDR, REDIS_PASSWORD,
  REDIS_DB, CACHE_TTL_MINUTES, SEED_DEMO. See config/config.go.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the warm-up scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close cache and database connections

EXAMPLES:
  # Run with file database
  ./server -db="./data/tuition.db"

  # Run in memory with the demo roster
  ./server -db=":memory:" -seed=mixed-roster

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Settings
*/
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/primeswim/tuition/api"
	"github.com/primeswim/tuition/cache"
	"github.com/primeswim/tuition/config"
	"github.com/primeswim/tuition/logging"
	"github.com/primeswim/tuition/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags
	port := flag.String("port", cfg.AppPort, "HTTP server port")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path")
	seed := flag.String("seed", "", "demo scenario to load into an empty database")
	flag.Parse()
	if *seed == "" && cfg.SeedDemo {
		*seed = "gold-march"
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	logging.Init(logger)

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.String("path", *dbPath), zap.Error(err))
	}
	defer store.Close()

	// Result cache
	var client cache.Client = cache.NopClient{}
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rc, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer rc.Close()
			client = rc
			logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		}
	}

	handler := api.NewHandler(store, cache.NewResultCache(client, cfg.CacheTTL()), logger)

	if *seed != "" {
		seedIfEmpty(handler, *seed, logger)
	}

	scheduler := api.NewWarmupScheduler(handler)
	scheduler.Start()

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", zap.String("url", "http://localhost:"+*port+"/api"))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}

func seedIfEmpty(h *api.Handler, scenario string, logger *zap.Logger) {
	ctx := context.Background()
	levels, err := h.Store.ListLevels(ctx)
	if err != nil {
		logger.Error("failed to check for existing levels", zap.Error(err))
		return
	}
	if len(levels) > 0 {
		logger.Info("database not empty, skipping seed", zap.String("scenario", scenario))
		return
	}
	if err := h.SeedScenario(ctx, scenario); err != nil {
		logger.Error("failed to seed scenario", zap.String("scenario", scenario), zap.Error(err))
	}
}
