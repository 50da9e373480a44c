// Command server runs the profile gateway: the legacy customer API in front
// of the modern customer system.
//
//	@title			Profile Gateway API
//	@version		1.0
//	@description	Serves legacy customer profiles backed by the modern customer system.
//	@BasePath		/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/profilegateway/backend/internal/infrastructure/auth"
	"github.com/profilegateway/backend/internal/infrastructure/cache"
	"github.com/profilegateway/backend/internal/infrastructure/config"
	"github.com/profilegateway/backend/internal/infrastructure/logger"
	"github.com/profilegateway/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logConfig := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}

	// The bootstrap logger reports telemetry setup before the OTLP core exists.
	bootLog, err := logger.New(logConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize OTEL logs", zap.Error(err))
	}

	log, err := logger.New(logConfig, logProvider.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync(log)

	log.Info("Starting profile gateway",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("backend_mode", cfg.Backend.Mode),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.TracingEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
		Tags:            map[string]string{"env": cfg.App.Env},
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if cfg.Telemetry.TracingEnabled && cfg.Telemetry.ProfilingEnabled {
		tracerProvider.EnableSpanProfiles()
	}

	var profileMetrics *telemetry.ProfileMetrics
	if meterProvider.IsEnabled() {
		profileMetrics, err = telemetry.NewProfileMetrics(meterProvider.Meter("profile-gateway"))
		if err != nil {
			log.Fatal("Failed to create profile metrics", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.Auth)

	backend, err := newBackend(cfg, jwtService, log)
	if err != nil {
		log.Fatal("Failed to initialize modern backend", zap.Error(err))
	}

	deps := dependencies{
		log:     log,
		jwt:     jwtService,
		backend: backend,
		meters:  meterProvider,
		metrics: profileMetrics,
	}

	if cfg.Idempotency.Enabled {
		factory := cache.NewIdempotencyStoreFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(!cfg.Idempotency.RequireRedis),
		)
		store, err := factory.CreateStore(cfg.Idempotency.Store)
		if err != nil {
			log.Fatal("Failed to initialize idempotency store", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("Failed to close idempotency store", zap.Error(err))
			}
		}()
		deps.store = store
	} else {
		log.Info("Idempotency-Key handling disabled")
	}

	engine, err := newEngine(cfg, deps)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown meter provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Failed to stop profiler", zap.Error(err))
	}

	log.Info("Server exited gracefully")

	// Last, so the shutdown entries above still reach the collector.
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		bootLog.Error("Failed to shutdown logger provider", zap.Error(err))
	}
}
