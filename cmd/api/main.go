package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/wholesale-backoffice/api/controllers"
	"github.com/angelmondragon/wholesale-backoffice/api/routes"
	"github.com/angelmondragon/wholesale-backoffice/internal/categories"
	"github.com/angelmondragon/wholesale-backoffice/internal/customers"
	"github.com/angelmondragon/wholesale-backoffice/internal/inventory"
	"github.com/angelmondragon/wholesale-backoffice/internal/ledger"
	"github.com/angelmondragon/wholesale-backoffice/internal/orders"
	"github.com/angelmondragon/wholesale-backoffice/internal/providers"
	"github.com/angelmondragon/wholesale-backoffice/internal/restock"
	pkgAuth "github.com/angelmondragon/wholesale-backoffice/pkg/auth"
	"github.com/angelmondragon/wholesale-backoffice/pkg/config"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
	"github.com/angelmondragon/wholesale-backoffice/pkg/metrics"
	"github.com/angelmondragon/wholesale-backoffice/pkg/migrate"
	"github.com/angelmondragon/wholesale-backoffice/pkg/outbox"
	"github.com/angelmondragon/wholesale-backoffice/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	params, err := wire(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
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

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(params),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}()

	logg.Info(ctx, "starting api server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func wire(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (routes.Params, error) {
	conn := dbClient.DB()
	orderMetrics := metrics.NewOrderMetrics(prometheus.DefaultRegisterer)
	publisher := outbox.NewService(outbox.NewRepository(conn), logg)

	itemRepo := inventory.NewRepository(conn)
	stock, err := inventory.NewLedger(itemRepo)
	if err != nil {
		return routes.Params{}, err
	}
	journal, err := ledger.NewService(ledger.NewRepository(conn))
	if err != nil {
		return routes.Params{}, err
	}
	inventorySvc, err := inventory.NewService(itemRepo, stock, journal, dbClient, logg)
	if err != nil {
		return routes.Params{}, err
	}

	validator, err := orders.NewValidator(orders.NewCatalog(conn), cfg.Orders)
	if err != nil {
		return routes.Params{}, err
	}
	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:      orders.NewRepository(conn),
		Validator: validator,
		Ledger:    stock,
		Journal:   journal,
		Tx:        dbClient,
		Outbox:    publisher,
		Metrics:   orderMetrics,
		Logger:    logg,
	})
	if err != nil {
		return routes.Params{}, err
	}

	providerOrderRepo := restock.NewRepository(conn)
	providerOrdersSvc, err := restock.NewService(providerOrderRepo, stock, journal, dbClient, publisher, logg)
	if err != nil {
		return routes.Params{}, err
	}
	planner, err := restock.NewPlanner(restock.PlannerParams{
		Repo:       providerOrderRepo,
		Items:      itemRepo,
		Tx:         dbClient,
		Outbox:     publisher,
		Multiplier: cfg.Restock.Multiplier(),
		Metrics:    orderMetrics,
		Logger:     logg,
	})
	if err != nil {
		return routes.Params{}, err
	}

	customersSvc, err := customers.NewService(conn, dbClient, logg)
	if err != nil {
		return routes.Params{}, err
	}
	providersSvc, err := providers.NewService(conn)
	if err != nil {
		return routes.Params{}, err
	}
	categoriesSvc, err := categories.NewService(conn)
	if err != nil {
		return routes.Params{}, err
	}
	revocations, err := pkgAuth.NewRevocations(redisClient)
	if err != nil {
		return routes.Params{}, err
	}

	return routes.Params{
		Config:      cfg,
		Logger:      logg,
		Readiness:   map[string]controllers.Pinger{"postgres": dbClient, "redis": redisClient},
		Cache:       redisClient,
		Revocations: revocations,
		Gatherer:    prometheus.DefaultGatherer,

		Orders:         ordersSvc,
		Inventory:      inventorySvc,
		Journal:        journal,
		ProviderOrders: providerOrdersSvc,
		Planner:        planner,
		Customers:      customersSvc,
		Providers:      providersSvc,
		Categories:     categoriesSvc,
	}, nil
}
