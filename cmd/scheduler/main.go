package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/sjktech/odledger/internal/batch"
	"github.com/sjktech/odledger/internal/config"
	"github.com/sjktech/odledger/internal/logger"
	"github.com/sjktech/odledger/internal/service"
)

func main() {
	log := logger.New("info", "json")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = logger.New(cfg.Logging.Level, cfg.Logging.Format)

	// The exporter recomputes every sweep, so it runs without a result cache.
	exporter := batch.NewExporter(service.NewLedgerService(nil, cfg), cfg)

	c := cron.New(cron.WithSeconds())
	if err := scheduleExports(c, cfg, exporter, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule export sweep")
	}

	c.Start()
	log.Info().Str("cron_spec", cfg.Export.CronSpec).Msg("Scheduler started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Info().Msg("Scheduler stopped")
}

func scheduleExports(c *cron.Cron, cfg *config.Config, exporter *batch.Exporter, log zerolog.Logger) error {
	_, err := c.AddFunc(cfg.Export.CronSpec, func() {
		ctx := logger.WithContext(context.Background(), log)
		if err := exporter.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Export sweep failed")
		}
	})
	return err
}
