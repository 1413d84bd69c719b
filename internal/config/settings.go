package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Compile time variables are set by -ldflags.
var (
	ServiceVersion string
	CommitSHA      string
	APIVersion     string
)

const (
	Development = 1 << iota
	Sandbox
	Staging
	Production
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"

	TraceExporterGRPC   = "grpc"
	TraceExporterStdout = "stdout"

	MetricsBackendPrometheus = "prometheus"
	MetricsBackendOtel       = "otel"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type (
	ServiceConfig struct {
		App                   App                   `json:"app"`
		SecretsStorage        SecretsStorage        `json:"secrets_storage"`
		HTTPServer            HTTPServer            `json:"http_server"`
		AdminServer           AdminServer           `json:"admin_server"`
		Compression           Compression           `json:"compression"`
		Storage               Storage               `json:"storage"`
		Database              Database              `json:"database"`
		Backoff               Backoff               `json:"backoff"`
		Cache                 Cache                 `json:"cache"`
		ProductsCache         ProductsCache         `json:"products_cache"`
		CircuitBreaker        CircuitBreaker        `json:"circuit_breaker"`
		ThrottledRateLimiting ThrottledRateLimiting `json:"throttled_rate_limiting"`
		Idempotency           Idempotency           `json:"idempotency"`
		Logging               Logging               `json:"logging"`
		Telemetry             Telemetry             `json:"telemetry"`
	}

	App struct {
		ServiceName    string      `envconfig:"APP_SERVICE_NAME" default:"catalog" json:"service_name"`
		ServiceVersion string      `envconfig:"APP_SERVICE_VERSION" default:"dev" json:"service_version"`
		CommitSHA      string      `envconfig:"APP_COMMIT_SHA" default:"" json:"commit_sha"`
		APIVersion     string      `envconfig:"APP_API_VERSION" default:"v1" json:"api_version"`
		Env            Environment `json:"environment"`
	}

	Environment struct {
		Name string `envconfig:"APP_ENVIRONMENT" default:"development" json:"env"`
	}

	SecretsStorage struct {
		Enabled    bool          `envconfig:"VAULT_ENABLED" default:"false" json:"enabled"`
		Address    string        `envconfig:"VAULT_ADDRESS" default:"http://vault:8200" json:"address"`
		Token      string        `envconfig:"VAULT_TOKEN" default:"" json:"token,omitempty"`
		MountPath  string        `envconfig:"VAULT_MOUNT_PATH" default:"secret" json:"mount_path"`
		SecretPath string        `envconfig:"VAULT_DATABASE_SECRET_PATH" default:"catalog/database" json:"secret_path"`
		Namespace  string        `envconfig:"VAULT_NAMESPACE" default:"" json:"namespace,omitempty"`
		Timeout    time.Duration `envconfig:"VAULT_TIMEOUT" default:"10s" json:"timeout"`
		MaxRetries uint          `envconfig:"VAULT_MAX_RETRIES" default:"3" json:"max_retries"`
	}

	HTTPServer struct {
		Host            string        `envconfig:"HTTP_SERVER_HOST" default:"0.0.0.0" json:"host"`
		Port            uint          `envconfig:"HTTP_SERVER_PORT" default:"8080" json:"port"`
		ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s" json:"read_timeout"`
		WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s" json:"write_timeout"`
		IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s" json:"idle_timeout"`
		ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"30s" json:"shutdown_timeout"`
		MaxBodyBytes    int64         `envconfig:"HTTP_MAX_BODY_BYTES" default:"1048576" json:"max_body_bytes"`
		AllowedOrigins  []string      `envconfig:"HTTP_CORS_ALLOWED_ORIGINS" default:"*" json:"allowed_origins"`
	}

	// AdminServer serves cache management on an internal port.
	AdminServer struct {
		Enabled bool   `envconfig:"ADMIN_SERVER_ENABLED" default:"false" json:"enabled"`
		Host    string `envconfig:"ADMIN_SERVER_HOST" default:"127.0.0.1" json:"host"`
		Port    uint   `envconfig:"ADMIN_SERVER_PORT" default:"8081" json:"port"`
	}

	Compression struct {
		Enabled bool `envconfig:"COMPRESSION_ENABLED" default:"true" json:"enabled"`
		// Level applies to gzip and deflate (1-9) and is clamped to 11 for brotli.
		Level        int      `envconfig:"COMPRESSION_LEVEL" default:"5" json:"level"`
		MinSize      int      `envconfig:"COMPRESSION_MIN_SIZE" default:"1024" json:"min_size"`
		ContentTypes []string `envconfig:"COMPRESSION_CONTENT_TYPES" default:"application/json,text/plain" json:"content_types"`
		SkipPaths    []string `envconfig:"COMPRESSION_SKIP_PATHS" default:"/metrics" json:"skip_paths"`
	}

	// Storage selects where products live. The memory driver evaluates
	// specifications in process, postgres translates them to SQL.
	Storage struct {
		Driver   string `envconfig:"STORAGE_DRIVER" default:"memory" json:"driver"`
		SeedFile string `envconfig:"STORAGE_SEED_FILE" default:"" json:"seed_file"`
	}

	Database struct {
		Host            string        `envconfig:"POSTGRES_HOST" default:"postgres" json:"host"`
		Port            uint          `envconfig:"POSTGRES_PORT" default:"5432" json:"port"`
		Database        string        `envconfig:"POSTGRES_DATABASE" default:"catalog" json:"database"`
		Username        string        `envconfig:"POSTGRES_USERNAME" default:"postgres" json:"username"`
		Password        string        `envconfig:"POSTGRES_PASSWORD" default:"" json:"password,omitempty"`
		SSLMode         string        `envconfig:"POSTGRES_SSL_MODE" default:"disable" json:"ssl_mode"`
		MaxConnections  int           `envconfig:"POSTGRES_MAX_CONNECTIONS" default:"25" json:"max_connections"`
		MinConnections  int           `envconfig:"POSTGRES_MIN_CONNECTIONS" default:"2" json:"min_connections"`
		ConnectTimeout  time.Duration `envconfig:"POSTGRES_CONNECT_TIMEOUT" default:"10s" json:"connect_timeout"`
		MaxConnLifetime time.Duration `envconfig:"POSTGRES_MAX_CONN_LIFETIME" default:"1h" json:"max_conn_lifetime"`
		MaxConnIdleTime time.Duration `envconfig:"POSTGRES_MAX_CONN_IDLE_TIME" default:"30m" json:"max_conn_idle_time"`
	}

	Backoff struct {
		BaseDelay      time.Duration `envconfig:"BACKOFF_BASE_DELAY" default:"500ms" json:"base_delay"`
		Multiplier     float64       `envconfig:"BACKOFF_MULTIPLIER" default:"1.5" json:"multiplier"`
		Jitter         float64       `envconfig:"BACKOFF_JITTER" default:"0.3" json:"jitter"`
		MaxDelay       time.Duration `envconfig:"BACKOFF_MAX_DELAY" default:"10s" json:"max_delay"`
		MaxElapsedTime time.Duration `envconfig:"BACKOFF_MAX_ELAPSED_TIME" default:"1m" json:"max_elapsed_time"`
	}

	Cache struct {
		Enabled       bool          `envconfig:"CACHE_ENABLED" default:"false" json:"enabled"`
		Address       string        `envconfig:"CACHE_ADDRESS" default:"keydb:6379" json:"address"`
		Password      string        `envconfig:"CACHE_PASSWORD" default:"" json:"password,omitempty"`
		DB            uint          `envconfig:"CACHE_DB" default:"0" json:"db"`
		PoolSize      uint          `envconfig:"CACHE_POOL_SIZE" default:"10" json:"pool_size"`
		MinIdleConns  uint          `envconfig:"CACHE_MIN_IDLE_CONNS" default:"2" json:"min_idle_conns"`
		DialTimeout   time.Duration `envconfig:"CACHE_DIAL_TIMEOUT" default:"5s" json:"dial_timeout"`
		ReadTimeout   time.Duration `envconfig:"CACHE_READ_TIMEOUT" default:"3s" json:"read_timeout"`
		WriteTimeout  time.Duration `envconfig:"CACHE_WRITE_TIMEOUT" default:"3s" json:"write_timeout"`
		PoolTimeout   time.Duration `envconfig:"CACHE_POOL_TIMEOUT" default:"5s" json:"pool_timeout"`
		MaxRetries    uint          `envconfig:"CACHE_MAX_RETRIES" default:"3" json:"max_retries"`
		DefaultExpiry time.Duration `envconfig:"CACHE_DEFAULT_EXPIRY" default:"10m" json:"default_expiry"`
	}

	ProductsCache struct {
		Enabled    bool          `envconfig:"PRODUCTS_CACHE_ENABLED" default:"true" json:"enabled"`
		ProductTTL time.Duration `envconfig:"PRODUCTS_CACHE_PRODUCT_TTL" default:"5m" json:"product_ttl"`
		FilterTTL  time.Duration `envconfig:"PRODUCTS_CACHE_FILTER_TTL" default:"1m" json:"filter_ttl"`
	}

	CircuitBreaker struct {
		Enabled          bool          `envconfig:"CB_ENABLED" default:"true" json:"enabled"`
		MaxRequests      uint          `envconfig:"CB_MAX_REQUESTS" default:"5" json:"max_requests"`
		Interval         time.Duration `envconfig:"CB_INTERVAL" default:"60s" json:"interval"`
		Timeout          time.Duration `envconfig:"CB_TIMEOUT" default:"30s" json:"timeout"`
		FailureThreshold uint          `envconfig:"CB_FAILURE_THRESHOLD" default:"5" json:"failure_threshold"`
	}

	ThrottledRateLimiting struct {
		Enabled           bool     `envconfig:"RATE_LIMITING_ENABLED" default:"true" json:"enabled"`
		RequestsPerSecond uint     `envconfig:"RATE_LIMITING_REQUESTS_PER_SECOND" default:"10" json:"requests_per_second"`
		BurstSize         uint     `envconfig:"RATE_LIMITING_BURST_SIZE" default:"20" json:"burst_size"`
		MaxKeys           uint     `envconfig:"RATE_LIMITING_MAX_KEYS" default:"1000" json:"max_keys"`
		// Distributed keeps limiter state in the cache, shared by every replica.
		Distributed       bool     `envconfig:"RATE_LIMITING_DISTRIBUTED" default:"false" json:"distributed"`
		SkipPaths         []string `envconfig:"RATE_LIMITING_SKIP_PATHS" default:"/health/liveness,/health/readiness,/metrics" json:"skip_paths"`
	}

	Idempotency struct {
		Enabled          bool          `envconfig:"IDEMPOTENCY_ENABLED" default:"true" json:"enabled"`
		CacheTTL         time.Duration `envconfig:"IDEMPOTENCY_CACHE_TTL" default:"24h" json:"cache_ttl"`
		LockTTL          time.Duration `envconfig:"IDEMPOTENCY_LOCK_TTL" default:"30s" json:"lock_ttl"`
		HeaderName       string        `envconfig:"IDEMPOTENCY_HEADER" default:"Idempotency-Key" json:"header_name"`
		ReplayedHeader   string        `envconfig:"IDEMPOTENCY_REPLAYED_HEADER" default:"Idempotent-Replayed" json:"replayed_header"`
		GracefulDegraded bool          `envconfig:"IDEMPOTENCY_GRACEFUL_DEGRADED" default:"true" json:"graceful_degraded"`
	}

	Logging struct {
		Level     string    `envconfig:"LOG_LEVEL" default:"info" json:"level"`
		Format    string    `envconfig:"LOG_FORMAT" default:"json" json:"format"`
		AccessLog AccessLog `json:"access_log"`
	}

	AccessLog struct {
		Enabled            bool `envconfig:"ACCESS_LOG_ENABLED" default:"true" json:"enabled"`
		LogHealthChecks    bool `envconfig:"ACCESS_LOG_HEALTH_CHECKS" default:"false" json:"log_health_checks"`
		IncludeQueryParams bool `envconfig:"ACCESS_LOG_INCLUDE_QUERY_PARAMS" default:"true" json:"include_query_params"`
	}

	Telemetry struct {
		Enabled      bool    `envconfig:"OTEL_ENABLED" default:"false" json:"enabled"`
		ExporterType string  `envconfig:"OTEL_EXPORTER" default:"grpc" json:"exporter_type"`
		OTLPEndpoint string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"otel-collector:4317" json:"otlp_endpoint"`
		Metrics      Metrics `json:"metrics"`
		Traces       Traces  `json:"traces"`
	}

	Metrics struct {
		Enabled   bool   `envconfig:"METRICS_ENABLED" default:"true" json:"enabled"`
		Backend   string `envconfig:"METRICS_BACKEND" default:"prometheus" json:"backend"`
		Namespace string `envconfig:"METRICS_NAMESPACE" default:"catalog" json:"namespace"`
	}

	Traces struct {
		Enabled      bool    `envconfig:"TRACES_ENABLED" default:"false" json:"enabled"`
		SamplerRatio float64 `envconfig:"TRACES_SAMPLER_RATIO" default:"1.0" json:"sampler_ratio"`
	}
)

func (c *ServiceConfig) GetEnvironment() int {
	switch c.App.Env.Name {
	case "production", "prod":
		return Production
	case "staging", "stg":
		return Staging
	case "sandbox", "sbx":
		return Sandbox
	default:
		return Development
	}
}

func (c *ServiceConfig) IsProduction() bool {
	return c.GetEnvironment() == Production
}

// Validate rejects combinations the runtime cannot wire.
func (c *ServiceConfig) Validate() error {
	var errs []error

	if !slices.Contains([]string{StorageDriverMemory, StorageDriverPostgres}, c.Storage.Driver) {
		errs = append(errs, fmt.Errorf("%w: storage driver %q", ErrInvalidConfig, c.Storage.Driver))
	}

	if !slices.Contains([]string{TraceExporterGRPC, TraceExporterStdout}, c.Telemetry.ExporterType) {
		errs = append(errs, fmt.Errorf("%w: trace exporter %q", ErrInvalidConfig, c.Telemetry.ExporterType))
	}

	if !slices.Contains([]string{MetricsBackendPrometheus, MetricsBackendOtel}, c.Telemetry.Metrics.Backend) {
		errs = append(errs, fmt.Errorf("%w: metrics backend %q", ErrInvalidConfig, c.Telemetry.Metrics.Backend))
	}

	if c.Telemetry.Traces.SamplerRatio < 0 || c.Telemetry.Traces.SamplerRatio > 1 {
		errs = append(errs, fmt.Errorf("%w: sampler ratio %v", ErrInvalidConfig, c.Telemetry.Traces.SamplerRatio))
	}

	if c.HTTPServer.Port == 0 || c.HTTPServer.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: http port %d", ErrInvalidConfig, c.HTTPServer.Port))
	}

	if c.AdminServer.Enabled && c.AdminServer.Port == c.HTTPServer.Port {
		errs = append(errs, fmt.Errorf("%w: admin port %d collides with http port", ErrInvalidConfig, c.AdminServer.Port))
	}

	return errors.Join(errs...)
}
