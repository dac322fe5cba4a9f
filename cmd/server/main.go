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
	"github.com/sellerdesk/backend/internal/application/aggregation"
	"github.com/sellerdesk/backend/internal/application/labels"
	"github.com/sellerdesk/backend/internal/application/orders"
	"github.com/sellerdesk/backend/internal/application/summary"
	"github.com/sellerdesk/backend/internal/infrastructure/config"
	"github.com/sellerdesk/backend/internal/infrastructure/ecommerce"
	"github.com/sellerdesk/backend/internal/infrastructure/logger"
	"github.com/sellerdesk/backend/internal/infrastructure/scheduler"
	"github.com/sellerdesk/backend/internal/infrastructure/state"
	"github.com/sellerdesk/backend/internal/infrastructure/storage"
	"github.com/sellerdesk/backend/internal/infrastructure/summarizer"
	"github.com/sellerdesk/backend/internal/infrastructure/telemetry"
	"github.com/sellerdesk/backend/internal/interfaces/http/handler"
	"github.com/sellerdesk/backend/internal/interfaces/http/middleware"
	"github.com/sellerdesk/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Seller Desk API
//	@version		1.0
//	@description	Multi-store marketplace order aggregation: merged order timeline, revenue stats, pick lists and labels

//	@host		localhost:8080
//	@BasePath	/api/v1

const instrumentationName = "github.com/sellerdesk/backend"

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Seller Desk backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("state_driver", cfg.State.Driver),
	)

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(instrumentationName)
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = telemetry.Bridge(log, loggerProvider, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	// Workspace state
	store, err := state.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open state store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing state store", zap.Error(err))
		}
	}()
	workspace := state.NewWorkspace(store)

	// Marketplace
	adapter, err := ecommerce.NewSellerAPIAdapter(&ecommerce.SellerAPIConfig{
		APIBaseURL: cfg.Marketplace.BaseURL,
		Timeout:    cfg.Marketplace.Timeout,
		UserAgent:  cfg.Marketplace.UserAgent,
	})
	if err != nil {
		log.Fatal("Invalid marketplace configuration", zap.Error(err))
	}

	aggOpts := []aggregation.Option{
		aggregation.WithTracer(tracerProvider.Tracer(instrumentationName)),
	}
	if aggMetrics, err := telemetry.NewAggregationMetrics(meter); err != nil {
		log.Warn("Aggregation metrics disabled", zap.Error(err))
	} else {
		aggOpts = append(aggOpts, aggregation.WithRecorder(aggMetrics))
	}
	aggregator := aggregation.NewAggregator(aggregation.NewStoreFetcher(adapter), log, aggOpts...)
	ordersService := orders.NewService(workspace, aggregator, cfg.Marketplace.WindowDays)

	// Labels, optionally archived to S3
	var archive labels.Archive
	if cfg.Storage.Enabled() {
		s3Archive, err := storage.NewS3LabelArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize label archive", zap.Error(err))
		}
		if err := s3Archive.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare label archive bucket", zap.Error(err), zap.String("bucket", s3Archive.Bucket()))
		}
		archive = s3Archive
		log.Info("Label archive enabled", zap.String("bucket", s3Archive.Bucket()))
	}
	labelsService := labels.NewService(adapter, archive, log)

	// Narrative summary
	var generator summary.Generator
	if cfg.Summary.APIKey != "" {
		client, err := summarizer.NewClient(summarizer.Config{
			Endpoint: cfg.Summary.Endpoint,
			APIKey:   cfg.Summary.APIKey,
			Model:    cfg.Summary.Model,
			Timeout:  cfg.Summary.Timeout,
		})
		if err != nil {
			log.Fatal("Failed to initialize summarizer", zap.Error(err))
		}
		generator = client
	} else {
		log.Info("Summary API key not set, summaries return the placeholder")
	}
	summaryService := summary.NewService(generator, cfg.Summary.MaxOrders, log)

	// Background refresh
	var refresher *scheduler.RefreshScheduler
	var refreshHandler *handler.RefreshHandler
	if cfg.Refresh.Enabled {
		refresher, err = scheduler.NewRefreshScheduler(scheduler.RefreshSchedulerConfig{
			Interval:   cfg.Refresh.Interval,
			JobTimeout: cfg.Refresh.JobTimeout,
			WindowDays: cfg.Marketplace.WindowDays,
			RunOnStart: cfg.Refresh.RunOnStart,
			MaxHistory: cfg.Refresh.History,
		}, ordersService, log)
		if err != nil {
			log.Fatal("Invalid refresh configuration", zap.Error(err))
		}
		if err := refresher.Start(ctx); err != nil {
			log.Fatal("Failed to start refresh scheduler", zap.Error(err))
		}
		refreshHandler = handler.NewRefreshHandler(refresher)
	}

	var fetchLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		fetchLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer fetchLimiter.Stop()
	}

	engine := router.NewEngine(router.EngineConfig{
		HTTP: cfg.HTTP,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Meter:        meter,
		Logger:       log,
		FetchLimiter: fetchLimiter,
	}, router.Handlers{
		Stores:  handler.NewStoreHandler(workspace),
		Orders:  handler.NewOrderHandler(ordersService),
		Labels:  handler.NewLabelHandler(workspace, ordersService, labelsService),
		Summary: handler.NewSummaryHandler(ordersService, summaryService),
		Refresh: refreshHandler,
		System: handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, map[string]handler.HealthCheck{
			"state": func(ctx context.Context) error {
				_, err := store.Get(ctx, state.KeyStores)
				if errors.Is(err, state.ErrNotFound) {
					return nil
				}
				return err
			},
		}),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if refresher != nil {
		if err := refresher.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping refresh scheduler", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
