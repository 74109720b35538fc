package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/wholesale-backoffice/internal/cron"
	"github.com/angelmondragon/wholesale-backoffice/internal/inventory"
	"github.com/angelmondragon/wholesale-backoffice/internal/ledger"
	"github.com/angelmondragon/wholesale-backoffice/internal/orders"
	"github.com/angelmondragon/wholesale-backoffice/internal/restock"
	"github.com/angelmondragon/wholesale-backoffice/pkg/config"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
	"github.com/angelmondragon/wholesale-backoffice/pkg/metrics"
	"github.com/angelmondragon/wholesale-backoffice/pkg/migrate"
	"github.com/angelmondragon/wholesale-backoffice/pkg/outbox"
	"github.com/angelmondragon/wholesale-backoffice/pkg/redis"
)

const lockName = "cron"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry, err := buildRegistry(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron jobs", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockName, cfg.Restock.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Restock.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"jobs":        registry.Names(),
		"interval":    cfg.Restock.Interval.String(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	conn := dbClient.DB()
	outboxRepo := outbox.NewRepository(conn)
	publisher := outbox.NewService(outboxRepo, logg)
	orderMetrics := metrics.NewOrderMetrics(prometheus.DefaultRegisterer)

	itemRepo := inventory.NewRepository(conn)
	stock, err := inventory.NewLedger(itemRepo)
	if err != nil {
		return nil, err
	}
	journal, err := ledger.NewService(ledger.NewRepository(conn))
	if err != nil {
		return nil, err
	}

	planner, err := restock.NewPlanner(restock.PlannerParams{
		Repo:       restock.NewRepository(conn),
		Items:      itemRepo,
		Tx:         dbClient,
		Outbox:     publisher,
		Multiplier: cfg.Restock.Multiplier(),
		Metrics:    orderMetrics,
		Logger:     logg,
	})
	if err != nil {
		return nil, err
	}
	restockJob, err := cron.NewRestockJob(logg, planner)
	if err != nil {
		return nil, err
	}

	validator, err := orders.NewValidator(orders.NewCatalog(conn), cfg.Orders)
	if err != nil {
		return nil, err
	}
	orderRepo := orders.NewRepository(conn)
	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:      orderRepo,
		Validator: validator,
		Ledger:    stock,
		Journal:   journal,
		Tx:        dbClient,
		Outbox:    publisher,
		Metrics:   orderMetrics,
		Logger:    logg,
	})
	if err != nil {
		return nil, err
	}
	deadlineJob, err := cron.NewPaymentDeadlineJob(cron.PaymentDeadlineJobParams{
		Logger: logg,
		Orders: orderRepo,
		Cancel: ordersSvc,
	})
	if err != nil {
		return nil, err
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:         logg,
		DB:             dbClient,
		Repository:     outboxRepo,
		Retention:      cfg.Outbox.Retention,
		ParkedAttempts: cfg.Outbox.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}

	return cron.NewRegistry(restockJob, deadlineJob, retentionJob), nil
}
