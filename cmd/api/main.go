package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/batcom-app/batcom-backend/api/routes"
	"github.com/batcom-app/batcom-backend/internal/notify"
	"github.com/batcom-app/batcom-backend/internal/orders"
	"github.com/batcom-app/batcom-backend/internal/payments"
	"github.com/batcom-app/batcom-backend/internal/reconcile"
	"github.com/batcom-app/batcom-backend/pkg/config"
	"github.com/batcom-app/batcom-backend/pkg/db"
	"github.com/batcom-app/batcom-backend/pkg/logger"
	"github.com/batcom-app/batcom-backend/pkg/metrics"
	"github.com/batcom-app/batcom-backend/pkg/migrate"
	"github.com/batcom-app/batcom-backend/pkg/payos"
	"github.com/batcom-app/batcom-backend/pkg/redis"
)

const webhookDedupeTTL = 24 * time.Hour

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

	payosClient, err := payos.NewClient(context.Background(), cfg.PayOS, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payos client", err)
		os.Exit(1)
	}

	intentsRepo := payments.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	sender := notify.NewSender(cfg.Notify, logg)

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Repo:    intentsRepo,
		Gateway: payosClient,
		Logger:  logg,
		Config:  cfg.Payment,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	notifyService, err := notify.NewService(notify.ServiceParams{
		Orders:   ordersRepo,
		Sender:   sender,
		Logger:   logg,
		Reminder: cfg.Reminder,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notify service", err)
		os.Exit(1)
	}

	reconcileService, err := reconcile.NewService(reconcile.ServiceParams{
		Intents:  intentsRepo,
		Orders:   ordersRepo,
		Gateway:  payosClient,
		Notifier: sender,
		Logger:   logg,
		Metrics:  metrics.NewReconcileMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile service", err)
		os.Exit(1)
	}

	webhookGuard, err := reconcile.NewIdempotencyGuard(redisClient, webhookDedupeTTL, "payos")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
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
			payosClient,
			paymentsService,
			reconcileService,
			notifyService,
			webhookGuard,
			prometheus.DefaultGatherer,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
