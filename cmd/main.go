package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crockshine/backend-erp/internal/auth"
	"github.com/crockshine/backend-erp/internal/catalog"
	"github.com/crockshine/backend-erp/internal/discount"
	"github.com/crockshine/backend-erp/internal/events"
	"github.com/crockshine/backend-erp/internal/handler"
	"github.com/crockshine/backend-erp/internal/jobs"
	mid "github.com/crockshine/backend-erp/internal/middleware"
	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/internal/report"
	"github.com/crockshine/backend-erp/internal/sales"
	"github.com/crockshine/backend-erp/internal/store"
	"github.com/crockshine/backend-erp/internal/supply"
	"github.com/crockshine/backend-erp/pkg/config"
	"github.com/crockshine/backend-erp/pkg/database"
	"github.com/crockshine/backend-erp/pkg/jwtutil"
	"github.com/crockshine/backend-erp/pkg/logger"
	"github.com/crockshine/backend-erp/pkg/metrics"
	"github.com/crockshine/backend-erp/prometheus"
)

const serviceName = "erp-service"

func main() {
	// Load configuration
	appConfig, err := config.Load(serviceName)
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: appConfig.ServiceName,
		File:        appConfig.Log.File,
		MaxSizeMB:   appConfig.Log.MaxSizeMB,
		MaxBackups:  appConfig.Log.MaxBackups,
		MaxAgeDays:  appConfig.Log.MaxAgeDays,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting "+serviceName, appConfig.LogConfig()...)

	// Initialize Prometheus metrics
	registry := prom.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prometheus.InitMetrics(appConfig, registry)
	httpMetrics := metrics.NewHTTPMetrics(serviceName, registry)
	log.Info("Prometheus metrics initialized", zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.InitDB(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(model.All()...); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Wire services
	st := store.New(db)
	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      appConfig.JWT.SigningKey,
		ExpirationHours: appConfig.JWT.ExpirationHours,
	})
	discounts := discount.NewService(st)

	var recorder *events.Recorder
	saleOpts := []sales.Option{}
	if appConfig.Kafka.Enabled() {
		recorder = events.NewRecorder(st, appConfig.Kafka.TopicPrefix)
		saleOpts = append(saleOpts, sales.WithEvents(recorder))
	}
	if appConfig.Sales.ApplyDiscounts {
		saleOpts = append(saleOpts, sales.WithDiscountPricing(discounts))
		log.Info("Sales are priced with active discounts")
	}
	var supplyEvents supply.EventRecorder
	if recorder != nil {
		supplyEvents = recorder
	}

	h := &handler.Handler{
		Auth:      auth.NewService(st, tokens),
		Catalog:   catalog.NewService(st, discounts),
		Discounts: discounts,
		Sales:     sales.NewCoordinator(st, saleOpts...),
		Supply:    supply.NewService(st, supplyEvents),
		Reports:   report.NewService(st),
		DB:        db,
	}

	// Background jobs
	scheduler := jobs.New(log.Named("jobs"))
	if err := scheduler.Add("@every 1m", "inventory-gauge", jobs.InventoryGauge(st)); err != nil {
		log.Fatal("Failed to schedule job", zap.Error(err))
	}
	var publisher *events.KafkaPublisher
	if appConfig.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(appConfig.Kafka.Brokers)
		relay := events.NewRelay(st, publisher, appConfig.Outbox.BatchSize, log.Named("outbox"))
		if err := scheduler.Add(appConfig.Outbox.Schedule, "outbox-relay", jobs.OutboxRelay(relay, log)); err != nil {
			log.Fatal("Failed to schedule job", zap.Error(err))
		}
		log.Info("Event publishing enabled", zap.Strings("brokers", appConfig.Kafka.Brokers))
	}

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.ErrorHandler

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler(registry)))
	h.Register(e, tokens)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		port := appConfig.Server.Port
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	scheduler.Start()

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		errs = append(errs, e.Shutdown(shutdownCtx), scheduler.Stop(shutdownCtx))
		if publisher != nil {
			errs = append(errs, publisher.Close())
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server stopped")
}
