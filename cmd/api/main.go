package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Alishanbouraa/quicktech-pos/api/routes"
	"github.com/Alishanbouraa/quicktech-pos/internal/drawer"
	"github.com/Alishanbouraa/quicktech-pos/pkg/config"
	"github.com/Alishanbouraa/quicktech-pos/pkg/db"
	"github.com/Alishanbouraa/quicktech-pos/pkg/events"
	"github.com/Alishanbouraa/quicktech-pos/pkg/logger"
	"github.com/Alishanbouraa/quicktech-pos/pkg/metrics"
	"github.com/Alishanbouraa/quicktech-pos/pkg/migrate"
	"github.com/Alishanbouraa/quicktech-pos/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	locker, err := drawer.NewRedisLocker(redisClient, cfg.Drawer.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create drawer locker", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(promRegistry)

	bus := events.NewBus(logg)
	bus.Subscribe(func(ctx context.Context, event events.DrawerUpdate) {
		ctx = logg.WithFields(ctx, map[string]any{
			"event_type": event.Type,
			"amount":     event.Amount.StringFixed(2),
		})
		logg.Info(ctx, "drawer.update")
	})

	repo := drawer.NewRepository(dbClient.DB())

	drawerService, err := drawer.NewService(drawer.ServiceParams{
		Repo:      repo,
		Tx:        dbClient,
		Locker:    locker,
		Publisher: bus,
		Metrics:   ledgerMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create drawer service", err)
		os.Exit(1)
	}

	correctionService, err := drawer.NewCorrectionService(repo, dbClient, locker, bus)
	if err != nil {
		logg.Error(context.Background(), "failed to create correction service", err)
		os.Exit(1)
	}

	reconciliationService, err := drawer.NewReconciliationService(repo, dbClient, locker, bus, ledgerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciliation service", err)
		os.Exit(1)
	}

	reportingService, err := drawer.NewReportingService(repo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create reporting service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promRegistry,
			drawerService,
			correctionService,
			reconciliationService,
			reportingService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
