package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trailhop/partner-payments/api/routes"
	"github.com/trailhop/partner-payments/internal/bookings"
	"github.com/trailhop/partner-payments/internal/partneraccounts"
	"github.com/trailhop/partner-payments/internal/payments"
	"github.com/trailhop/partner-payments/pkg/config"
	"github.com/trailhop/partner-payments/pkg/db"
	"github.com/trailhop/partner-payments/pkg/logger"
	"github.com/trailhop/partner-payments/pkg/metrics"
	"github.com/trailhop/partner-payments/pkg/migrate"
	"github.com/trailhop/partner-payments/pkg/outbox"
	"github.com/trailhop/partner-payments/pkg/pubsub"
	"github.com/trailhop/partner-payments/pkg/redis"
	"github.com/trailhop/partner-payments/pkg/stripeconnect"
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

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	stripeClient, err := stripeconnect.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe client", err)
		os.Exit(1)
	}

	paymentMetrics := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	bookingsRepo := bookings.NewRepository(dbClient.DB())

	accountsService, err := partneraccounts.NewService(partneraccounts.ServiceParams{
		Repo:              partneraccounts.NewRepository(dbClient.DB()),
		Bookings:          bookingsRepo,
		Processor:         stripeClient,
		Outbox:            outboxService,
		TransactionRunner: dbClient,
		Checkout:          cfg.Checkout,
		Metrics:           paymentMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create partner accounts service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Bookings:          bookingsRepo,
		Accounts:          accountsService,
		Processor:         stripeClient,
		Locks:             redisClient,
		Outbox:            outboxService,
		TransactionRunner: dbClient,
		Checkout:          cfg.Checkout,
		Stripe:            cfg.Stripe,
		Metrics:           paymentMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"stripe_env": cfg.Stripe.Environment(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, pubsubClient, accountsService, paymentsService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
