// Package main is the entry point of the rewards daemon.
// It applies migrations, starts the analytics dispatcher, the cron scheduler
// and the metrics server, and shuts down gracefully on SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"ecosignal.fr/rewards/internal/app"
	"ecosignal.fr/rewards/internal/config"
	"ecosignal.fr/rewards/internal/logging"
)

func main() {
	logging.Setup("info", "development")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Could not load configuration")
	}
	logging.Setup(cfg.AppLogLevel, cfg.AppEnv)

	log.Info("=== Rewards engine starting ===")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Could not initialize the application")
	}
	defer application.Close()

	if err := application.Scheduler.Start(ctx); err != nil {
		log.WithError(err).Fatal("Could not start the scheduler")
	}
	defer application.Scheduler.Stop()

	application.Server.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Info("=== Rewards engine ready ===")

	sig := <-quit
	log.Infof("Received %s, shutting down", sig)

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Metrics server shutdown")
	}
	cancel()

	log.Info("=== Rewards engine stopped ===")
}
