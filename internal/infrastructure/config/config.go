package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MSH_MARKETPLACE_BASE_URL
const EnvPrefix = "MSH"

// State store drivers
const (
	StateDriverMemory   = "memory"
	StateDriverSQLite   = "sqlite"
	StateDriverPostgres = "postgres"
	StateDriverRedis    = "redis"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Marketplace MarketplaceConfig
	State       StateConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Summary     SummaryConfig
	Refresh     RefreshConfig
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
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
	// Rate limit for routes that call the marketplace (aggregate, labels)
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// MarketplaceConfig holds seller API settings
type MarketplaceConfig struct {
	BaseURL string
	// Timeout bounds a single HTTP request to the seller API
	Timeout    time.Duration
	WindowDays int
	UserAgent  string
}

// StateConfig selects where workspace state (store credentials, packed marks) lives
type StateConfig struct {
	Driver string // memory, sqlite, postgres, redis
	DSN    string // sqlite file or postgres URL
	// KeyPrefix namespaces keys in shared backends
	KeyPrefix string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// StorageConfig holds S3-compatible settings for the label archive
type StorageConfig struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
	Prefix       string
}

// Enabled reports whether label archiving is configured
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

// SummaryConfig holds the narrative summary generator settings
type SummaryConfig struct {
	Endpoint  string
	APIKey    string
	Model     string
	Timeout   time.Duration
	MaxOrders int
}

// RefreshConfig controls the background re-aggregation of all stores
type RefreshConfig struct {
	Enabled    bool
	Interval   time.Duration
	JobTimeout time.Duration
	// RunOnStart refreshes once right after startup
	RunOnStart bool
	History    int
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable tracing
	CollectorEndpoint string  // OTEL Collector gRPC endpoint, e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool // Non-TLS collector connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	// LogsEnabled ships log entries to the collector alongside local output
	LogsEnabled bool
}

// Load loads configuration from config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with MSH_ prefix (e.g., MSH_STATE_DSN)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/sellerdesk")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds, defaults and validates a Config from an already
// populated viper instance. Environment overrides are enabled on v.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
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
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),

			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
		},
		Marketplace: MarketplaceConfig{
			BaseURL:    v.GetString("marketplace.base_url"),
			Timeout:    v.GetDuration("marketplace.timeout"),
			WindowDays: v.GetInt("marketplace.window_days"),
			UserAgent:  v.GetString("marketplace.user_agent"),
		},
		State: StateConfig{
			Driver:    strings.ToLower(v.GetString("state.driver")),
			DSN:       v.GetString("state.dsn"),
			KeyPrefix: v.GetString("state.key_prefix"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Storage: StorageConfig{
			Endpoint:     v.GetString("storage.endpoint"),
			Region:       v.GetString("storage.region"),
			Bucket:       v.GetString("storage.bucket"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			UseSSL:       v.GetBool("storage.use_ssl"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
			Prefix:       v.GetString("storage.prefix"),
		},
		Summary: SummaryConfig{
			Endpoint:  v.GetString("summary.endpoint"),
			APIKey:    v.GetString("summary.api_key"),
			Model:     v.GetString("summary.model"),
			Timeout:   v.GetDuration("summary.timeout"),
			MaxOrders: v.GetInt("summary.max_orders"),
		},
		Refresh: RefreshConfig{
			Enabled:    v.GetBool("refresh.enabled"),
			Interval:   v.GetDuration("refresh.interval"),
			JobTimeout: v.GetDuration("refresh.job_timeout"),
			RunOnStart: v.GetBool("refresh.run_on_start"),
			History:    v.GetInt("refresh.history"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
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
		cfg.App.Name = "sellerdesk"
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
	// Aggregation over many stores can take a while
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 5 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	// CORS origins have no wildcard fallback: empty means same-origin only
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 30
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.Marketplace.BaseURL == "" {
		cfg.Marketplace.BaseURL = "https://api-seller.ozon.ru"
	}
	if cfg.Marketplace.Timeout == 0 {
		cfg.Marketplace.Timeout = 30 * time.Second
	}
	if cfg.Marketplace.WindowDays == 0 {
		cfg.Marketplace.WindowDays = 15
	}
	if cfg.State.Driver == "" {
		cfg.State.Driver = StateDriverSQLite
	}
	if cfg.State.Driver == StateDriverSQLite && cfg.State.DSN == "" {
		cfg.State.DSN = "sellerdesk.db"
	}
	if cfg.State.KeyPrefix == "" {
		cfg.State.KeyPrefix = "sellerdesk:"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = "labels/"
	}
	if cfg.Summary.Endpoint == "" {
		cfg.Summary.Endpoint = "https://api.openai.com/v1"
	}
	if cfg.Summary.Model == "" {
		cfg.Summary.Model = "gpt-4o-mini"
	}
	if cfg.Summary.Timeout == 0 {
		cfg.Summary.Timeout = 60 * time.Second
	}
	if cfg.Summary.MaxOrders == 0 {
		cfg.Summary.MaxOrders = 30
	}
	if cfg.Refresh.Interval == 0 {
		cfg.Refresh.Interval = 15 * time.Minute
	}
	if cfg.Refresh.JobTimeout == 0 {
		cfg.Refresh.JobTimeout = 5 * time.Minute
	}
	if cfg.Refresh.History == 0 {
		cfg.Refresh.History = 50
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.State.Driver {
	case StateDriverMemory, StateDriverRedis:
	case StateDriverSQLite, StateDriverPostgres:
		if c.State.DSN == "" {
			return fmt.Errorf("state.dsn is required for driver %q", c.State.Driver)
		}
	default:
		return fmt.Errorf("state.driver must be one of memory, sqlite, postgres, redis, got %q", c.State.Driver)
	}

	if c.Marketplace.WindowDays < 0 {
		return fmt.Errorf("marketplace.window_days cannot be negative")
	}
	if c.Marketplace.Timeout < 0 {
		return fmt.Errorf("marketplace.timeout cannot be negative")
	}
	if c.Summary.MaxOrders < 0 {
		return fmt.Errorf("summary.max_orders cannot be negative")
	}

	if c.Refresh.Enabled && c.Refresh.Interval < time.Minute {
		return fmt.Errorf("refresh.interval must be at least 1m, got %s", c.Refresh.Interval)
	}

	if c.Storage.Enabled() && (c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		return fmt.Errorf("storage.access_key and storage.secret_key are required when storage.bucket is set")
	}

	if c.App.Env == "production" {
		if c.State.Driver == StateDriverMemory {
			return fmt.Errorf("state.driver=memory loses credentials on restart and is not allowed in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("http.cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	return nil
}
