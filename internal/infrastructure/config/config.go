package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend modes
const (
	BackendModeStub = "stub"
	BackendModeHTTP = "http"
)

// Idempotency store kinds
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Backend     BackendConfig
	Auth        AuthConfig
	Idempotency IdempotencyConfig
	Redis       RedisConfig
	Telemetry   TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// BackendConfig describes how the modern customer system is reached.
type BackendConfig struct {
	Mode          string // stub or http
	BaseURL       string
	Timeout       time.Duration // per attempt
	RetryAttempts uint          // total attempts for idempotent reads
	RetryDelay    time.Duration
	TokenAudience string // audience of outbound service tokens; empty disables them
}

// AuthConfig holds JWT settings for inbound callers and outbound service tokens.
type AuthConfig struct {
	Enabled       bool
	Secret        string
	Issuer        string
	ServiceSecret string
	ServiceTTL    time.Duration
}

// IdempotencyConfig controls Idempotency-Key handling on POST and PUT.
type IdempotencyConfig struct {
	Enabled      bool
	Store        string // memory or redis
	TTL          time.Duration
	RequireRedis bool // fail startup instead of falling back to memory
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	TracingEnabled    bool
	MetricsEnabled    bool
	LogsEnabled       bool
	ProfilingEnabled  bool
	CollectorEndpoint string
	PyroscopeEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsInterval   time.Duration
}

// Load reads configuration from config.toml and GATEWAY_ environment variables.
// Priority (highest to lowest):
//  1. Environment variables with GATEWAY_ prefix (e.g., GATEWAY_BACKEND_BASE_URL)
//  2. config.toml in ., ./config or /app
//  3. Built-in defaults
func Load() (*Config, error) {
	return LoadFrom(".", "./config", "/app")
}

// LoadFrom is Load with explicit config search paths.
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Defaults whose zero value is meaningful cannot go through applyDefaults.
	v.SetDefault("idempotency.enabled", true)
	v.SetDefault("telemetry.sampling_ratio", 1.0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Backend: BackendConfig{
			Mode:          strings.ToLower(v.GetString("backend.mode")),
			BaseURL:       v.GetString("backend.base_url"),
			Timeout:       v.GetDuration("backend.timeout"),
			RetryAttempts: v.GetUint("backend.retry_attempts"),
			RetryDelay:    v.GetDuration("backend.retry_delay"),
			TokenAudience: v.GetString("backend.token_audience"),
		},
		Auth: AuthConfig{
			Enabled:       v.GetBool("auth.enabled"),
			Secret:        v.GetString("auth.secret"),
			Issuer:        v.GetString("auth.issuer"),
			ServiceSecret: v.GetString("auth.service_secret"),
			ServiceTTL:    v.GetDuration("auth.service_ttl"),
		},
		Idempotency: IdempotencyConfig{
			Enabled:      v.GetBool("idempotency.enabled"),
			Store:        strings.ToLower(v.GetString("idempotency.store")),
			TTL:          v.GetDuration("idempotency.ttl"),
			RequireRedis: v.GetBool("idempotency.require_redis"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Telemetry: TelemetryConfig{
			TracingEnabled:    v.GetBool("telemetry.tracing_enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			PyroscopeEndpoint: v.GetString("telemetry.pyroscope_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "profile-gateway"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"}
	}

	if cfg.Backend.Mode == "" {
		cfg.Backend.Mode = BackendModeStub
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 5 * time.Second
	}
	if cfg.Backend.RetryAttempts == 0 {
		cfg.Backend.RetryAttempts = 3
	}
	if cfg.Backend.RetryDelay == 0 {
		cfg.Backend.RetryDelay = 200 * time.Millisecond
	}

	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "profile-gateway"
	}
	if cfg.Auth.ServiceTTL == 0 {
		cfg.Auth.ServiceTTL = 5 * time.Minute
	}

	if cfg.Idempotency.Store == "" {
		cfg.Idempotency.Store = StoreMemory
	}
	if cfg.Idempotency.TTL == 0 {
		cfg.Idempotency.TTL = 24 * time.Hour
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.PyroscopeEndpoint == "" {
		cfg.Telemetry.PyroscopeEndpoint = "http://localhost:4040"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 15 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Backend.Mode {
	case BackendModeStub:
	case BackendModeHTTP:
		if c.Backend.BaseURL == "" {
			return fmt.Errorf("backend.base_url is required when backend.mode is %q", BackendModeHTTP)
		}
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("backend.base_url %q is not an absolute URL", c.Backend.BaseURL)
		}
	default:
		return fmt.Errorf("backend.mode must be %q or %q, got %q", BackendModeStub, BackendModeHTTP, c.Backend.Mode)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout cannot be negative")
	}

	switch c.Idempotency.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("idempotency.store must be %q or %q, got %q", StoreMemory, StoreRedis, c.Idempotency.Store)
	}

	if c.Auth.Enabled && c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required when auth.enabled is true")
	}
	if c.Backend.TokenAudience != "" && c.Auth.ServiceSecret == "" {
		return fmt.Errorf("auth.service_secret is required when backend.token_audience is set")
	}

	if c.App.Env == "production" {
		if c.Auth.Enabled && len(c.Auth.Secret) < 32 {
			return fmt.Errorf("auth.secret must be at least 32 characters in production")
		}
		if c.Auth.ServiceSecret != "" && len(c.Auth.ServiceSecret) < 32 {
			return fmt.Errorf("auth.service_secret must be at least 32 characters in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Backend.Mode == BackendModeStub {
			return fmt.Errorf("backend.mode %q is not allowed in production", BackendModeStub)
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
