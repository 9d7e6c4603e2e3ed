// Package app wires the application together.
// app.go is the assembly point: it creates the database pool, the analytics
// dispatcher, repositories and services, and the background components.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"ecosignal.fr/rewards/internal/config"
	"ecosignal.fr/rewards/internal/db/postgres"
	"ecosignal.fr/rewards/internal/features/admin"
	"ecosignal.fr/rewards/internal/features/analytics"
	"ecosignal.fr/rewards/internal/features/badges"
	"ecosignal.fr/rewards/internal/features/history"
	"ecosignal.fr/rewards/internal/features/ledger"
	"ecosignal.fr/rewards/internal/features/levels"
	"ecosignal.fr/rewards/internal/features/reports"
	"ecosignal.fr/rewards/internal/features/rewards"
	"ecosignal.fr/rewards/internal/features/users"
	"ecosignal.fr/rewards/internal/jobs"
	"ecosignal.fr/rewards/internal/server"
)

// App holds every component of the application.
type App struct {
	Config *config.Config
	DB     *pgxpool.Pool
	Events *analytics.Dispatcher

	Users     *users.Repository
	Ledger    *ledger.Service
	History   *history.Service
	Badges    *badges.Service
	Levels    *levels.Service
	Rewards   *rewards.Service
	Reports   *reports.Service
	Analytics *analytics.Service
	Admin     *admin.Authenticator

	Scheduler *jobs.Scheduler
	Server    *server.Server

	closers []func() error
}

// New connects to the database, applies migrations and builds the services.
// The analytics dispatcher is started; call Close to drain it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Database ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	a := &App{Config: cfg, DB: pool}

	// === 2. Repositories ===
	userRepo := users.NewRepository(pool)
	ledgerRepo := ledger.NewRepository(pool)
	historyRepo := history.NewRepository(pool)
	badgeRepo := badges.NewRepository(pool)
	levelRepo := levels.NewRepository(pool)
	reportRepo := reports.NewRepository(pool)
	analyticsRepo := analytics.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)
	a.Users = userRepo

	// === 3. Analytics ===
	a.Events = analytics.NewDispatcher(cfg.AnalyticsBufferSize, cfg.AnalyticsWriteTimeout, a.sinks(ctx, analyticsRepo)...)
	a.Events.Start()

	// === 4. Services ===
	a.History = history.NewService(historyRepo)
	a.Ledger = ledger.NewService(userRepo, ledgerRepo, a.Events)
	a.Badges = badges.NewService(pool, userRepo, badgeRepo, a.Ledger, a.History, a.Events)
	a.Levels = levels.NewService(userRepo, levelRepo, a.History, a.Events)
	a.Rewards = rewards.NewService(a.Badges, a.Levels)
	a.Reports = reports.NewService(pool, reportRepo, userRepo, a.Ledger, a.Rewards, a.Events)
	a.Analytics = analytics.NewService(analyticsRepo, cfg.AnalyticsRetentionDays)
	a.Admin = admin.NewAuthenticator(adminRepo, userRepo, cfg.AdminPasswordHash)

	// === 5. Background ===
	a.Scheduler = jobs.NewScheduler(a.Analytics, cfg.AnalyticsPurgeSchedule, cfg.AppTimezone)
	a.Server = server.New(cfg.MetricsAddr, pool)

	return a, nil
}

// sinks builds the analytics sinks selected by ANALYTICS_SINK.
// An unreachable Redis only disables that sink.
func (a *App) sinks(ctx context.Context, pg *analytics.Repository) []analytics.Sink {
	var sinks []analytics.Sink
	if a.Config.UsesPostgresSink() {
		sinks = append(sinks, pg)
	}
	if a.Config.UsesRedisSink() {
		rs, err := analytics.NewRedisSink(ctx, a.Config.RedisURL, a.Config.RedisChannel)
		if err != nil {
			log.WithError(err).Error("Redis analytics sink disabled")
		} else {
			sinks = append(sinks, rs)
			a.closers = append(a.closers, rs.Close)
		}
	}
	log.WithField("sink", a.Config.AnalyticsSink).Info("Analytics configured")
	return sinks
}

// Close drains the analytics queue and releases connections.
func (a *App) Close() {
	a.Events.Close()
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.WithError(err).Warn("Close failed")
		}
	}
	a.DB.Close()
}
