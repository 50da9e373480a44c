package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/profilegateway/backend/internal/application/customer"
	"github.com/profilegateway/backend/internal/domain/profile"
	"github.com/profilegateway/backend/internal/domain/shared"
	"github.com/profilegateway/backend/internal/infrastructure/auth"
	"github.com/profilegateway/backend/internal/infrastructure/config"
	"github.com/profilegateway/backend/internal/infrastructure/logger"
	"github.com/profilegateway/backend/internal/infrastructure/modern"
	"github.com/profilegateway/backend/internal/infrastructure/telemetry"
	"github.com/profilegateway/backend/internal/interfaces/http/handler"
	"github.com/profilegateway/backend/internal/interfaces/http/middleware"
	"github.com/profilegateway/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// dependencies are the long-lived collaborators the HTTP layer is built from.
type dependencies struct {
	log     *zap.Logger
	jwt     *auth.JWTService
	backend profile.ModernBackend
	store   shared.IdempotencyStore // nil when idempotency is disabled
	meters  *telemetry.MeterProvider
	metrics *telemetry.ProfileMetrics
}

// newBackend selects the modern system implementation from cfg.
func newBackend(cfg *config.Config, jwtService *auth.JWTService, log *zap.Logger) (profile.ModernBackend, error) {
	switch cfg.Backend.Mode {
	case config.BackendModeStub:
		log.Info("Using stub modern backend")
		return modern.NewStubClient(), nil
	case config.BackendModeHTTP:
		opts := []modern.HTTPClientOption{
			modern.WithTimeout(cfg.Backend.Timeout),
			modern.WithRetry(cfg.Backend.RetryAttempts, cfg.Backend.RetryDelay),
			modern.WithClientLogger(log),
		}
		if cfg.Backend.TokenAudience != "" {
			opts = append(opts, modern.WithServiceTokens(jwtService, cfg.Backend.TokenAudience))
		}
		client, err := modern.NewHTTPClient(cfg.Backend.BaseURL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create modern backend client: %w", err)
		}
		log.Info("Using HTTP modern backend", zap.String("base_url", cfg.Backend.BaseURL))
		return client, nil
	default:
		return nil, fmt.Errorf("unknown backend mode %q", cfg.Backend.Mode)
	}
}

// newEngine builds the gin engine with the global middleware chain, the
// health endpoint and the customer API.
func newEngine(cfg *config.Config, deps dependencies) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(deps.log),
		logger.GinMiddleware(deps.log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.TracingEnabled,
		}),
		middleware.SpanEnricher(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: deps.meters,
			Enabled:       cfg.Telemetry.MetricsEnabled,
		}),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	engine.GET("/health", handler.NewHealthHandler(cfg.Backend.Mode, deps.store).Health)

	var apiMiddleware []gin.HandlerFunc
	if cfg.Auth.Enabled {
		jwtConfig := middleware.DefaultJWTConfig(deps.jwt)
		jwtConfig.Logger = deps.log
		apiMiddleware = append(apiMiddleware, middleware.JWTAuthMiddlewareWithConfig(jwtConfig))
	}
	if deps.store != nil {
		apiMiddleware = append(apiMiddleware, middleware.Idempotency(middleware.IdempotencyConfig{
			Store:   deps.store,
			TTL:     cfg.Idempotency.TTL,
			Metrics: deps.metrics,
		}))
	}

	adapter := profile.NewAdapter(profile.WithAdapterLogger(deps.log.Named("adapter")))
	svc := customer.NewService(adapter, deps.backend, customer.WithMetrics(deps.metrics))

	r := router.NewRouter(engine, router.WithMiddleware(apiMiddleware...))
	r.Register(handler.NewCustomerHandler(svc).Routes())
	r.Setup()

	deps.log.Info("Routes registered",
		zap.String("base_path", r.BasePath()),
		zap.Bool("auth_enabled", cfg.Auth.Enabled),
		zap.Bool("idempotency_enabled", deps.store != nil),
	)
	return engine, nil
}
