// Package main provides the entry point for the projection service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-comps/internal/config"
	"github.com/yourusername/nba-comps/internal/database"
	"github.com/yourusername/nba-comps/internal/datasource"
	"github.com/yourusername/nba-comps/internal/health"
	"github.com/yourusername/nba-comps/internal/logger"
	"github.com/yourusername/nba-comps/internal/metrics"
	"github.com/yourusername/nba-comps/internal/projection"
	"github.com/yourusername/nba-comps/internal/repository"
	"github.com/yourusername/nba-comps/internal/scheduler"
	"github.com/yourusername/nba-comps/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.LoadWithDefaults("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		log.Fatalf("Failed to load secrets: %v", err)
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"source":      cfg.Data.Source,
		"version":     Version,
	}).Info("Projection service starting")

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	var (
		db    *database.DB
		repos *repository.Repositories
	)
	if cfg.UsesDatabase() {
		db, err = database.Initialize(ctx, cfg)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		repos, err = repository.NewRepositories(db)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to initialize repositories")
		}
		appLog.Info("Database connection established")
	}

	factory := datasource.NewFactory(cfg, appLog)
	if repos != nil {
		factory = factory.WithLister(repos.PlayerSeason)
	}
	source, err := factory.Create()
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create data source")
	}

	engineCfg, err := service.EngineConfigFromConfig(cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Invalid projection configuration")
	}
	engine := service.NewEngine(source, engineCfg, appLog)

	var saver service.BatchSaver
	if cfg.Service.Persist && repos != nil {
		saver = repos.Projection
	}
	refresher := service.NewRefreshService(engine, saver, cfg.Service.RefreshSeason, appLog)

	events := health.NewEventHub(appLog)
	refresher.OnComplete(func(stats *service.RefreshStats) {
		events.Publish("refresh", stats)
	})

	serverCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        strconv.Itoa(cfg.Service.Port),
		Logger:      appLog,
		Projections: engine,
		Events:      events,

		ShutdownTimeout: time.Duration(cfg.Service.ShutdownTimeoutSeconds) * time.Second,
	}
	if db != nil {
		serverCfg.DB = db
	}
	if cfg.Metrics.Enabled {
		serverCfg.Metrics = metrics.Handler()
		serverCfg.MetricsPath = cfg.Metrics.Path
	}
	server := health.NewServer(serverCfg)
	if err := server.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start HTTP server")
	}

	engine.OnReload(func(*projection.Projector) {
		server.SetReady(true)
	})

	// A failed initial load leaves the service up but not ready until a
	// scheduled refresh loads a snapshot.
	sched := scheduler.NewScheduler(refresher, appLog)
	if stats, err := sched.RunNow(ctx); err != nil {
		appLog.WithError(err).Error("Initial snapshot load failed")
	} else {
		appLog.WithField("stats", stats.String()).Info("Initial snapshot loaded")
	}

	if cfg.Service.RefreshSchedule != "" {
		if _, err := sched.ScheduleRefresh(cfg.Service.RefreshSchedule); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule refresh")
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
		appLog.WithField("next_run", sched.GetNextRun()).Info("Refresh scheduler started")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	server.SetReady(false)
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Warn("Scheduler did not stop cleanly")
	}
	if err := server.Shutdown(); err != nil {
		appLog.WithError(err).Warn("HTTP server did not stop cleanly")
	}
	cancel()

	appLog.Info("Projection service stopped")
}
