package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/sjktech/odledger/internal/cache"
	"github.com/sjktech/odledger/internal/config"
	"github.com/sjktech/odledger/internal/handler"
	"github.com/sjktech/odledger/internal/logger"
	"github.com/sjktech/odledger/internal/service"
	"github.com/sjktech/odledger/internal/tracing"
)

func main() {
	// Bootstrap logger until configuration is loaded.
	log := logger.New("info", "json")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, "odledger-server", cfg.Tracing.Endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Tracer shutdown failed")
		}
	}()

	// Redis backs the optional result cache; with no address configured the
	// service runs every simulation from scratch.
	var redisClient *redis.Client
	var resultCache cache.ResultCache
	if cfg.CacheEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		resultCache = cache.NewRedisCache(redisClient, cfg.GetCacheTTL())
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Result cache enabled")
	}

	ledgerService := service.NewLedgerService(resultCache, cfg)
	simulationHandler := handler.NewSimulationHandler(ledgerService)
	healthHandler := handler.NewHealthHandler(redisClient, cfg)

	router := handler.NewRouter(simulationHandler, healthHandler, log)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Server.Env).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
