package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quanghuy1242/content-api/pkg/auth"
	"github.com/quanghuy1242/content-api/pkg/observability"
	"github.com/quanghuy1242/content-api/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Auth configuration
	Auth AuthConfig

	// Storage configuration
	Storage storage.Config

	// Rate limiting
	RateLimit RateLimitConfig

	// API behavior
	API APIConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// AuthConfig holds bearer token verification settings
type AuthConfig struct {
	// Issuer is the token issuer URL with trailing slash, e.g.
	// "https://tenant.auth0.com/".
	Issuer string

	// Audience is the API identifier tokens must carry.
	Audience string

	// ClientID is the machine client granted admin-equivalent access via
	// the client-credentials flow. Empty disables machine client
	// recognition.
	ClientID string

	// Mode is "enforce" or "bypass". Bypass skips signature checks and is
	// for local development only.
	Mode string
}

// RateLimitConfig holds the Redis-backed rate limiter settings
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// APIConfig holds request handling behavior
type APIConfig struct {
	// UploadTimeout bounds how long a pending image upload may stay
	// unconfirmed before validation retires it.
	UploadTimeout time.Duration

	// MaxBodyBytes caps JSON request body size.
	MaxBodyBytes int64

	// AllowedOrigins configures CORS; empty disables it.
	AllowedOrigins []string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// fileConfig is the YAML shape of the optional config file. Only the keys
// that are set override the environment-derived values, so a minimal file
// stays minimal.
type fileConfig struct {
	Server struct {
		Host       string `yaml:"host"`
		Port       string `yaml:"port"`
		HealthPort string `yaml:"healthPort"`
	} `yaml:"server"`
	Auth struct {
		Issuer   string `yaml:"issuer"`
		Audience string `yaml:"audience"`
		ClientID string `yaml:"clientId"`
		Mode     string `yaml:"mode"`
	} `yaml:"auth"`
	Storage struct {
		PostgresURL string `yaml:"postgresUrl"`
		S3Endpoint  string `yaml:"s3Endpoint"`
		S3Bucket    string `yaml:"s3Bucket"`
		RedisURL    string `yaml:"redisUrl"`
	} `yaml:"storage"`
	API struct {
		UploadTimeout  string   `yaml:"uploadTimeout"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"api"`
}

// LoadConfig loads configuration from environment variables, overlaid by an
// optional YAML file named in CONTENTAPI_CONFIG_FILE.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Auth:          loadAuthConfig(),
		Storage:       loadStorageConfig(),
		RateLimit:     loadRateLimitConfig(),
		API:           loadAPIConfig(),
		Observability: loadObservabilityConfig(),
	}

	if path := os.Getenv("CONTENTAPI_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyFile overlays values from a YAML config file.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	if fc.Server.Host != "" {
		c.Server.Host = fc.Server.Host
	}
	if fc.Server.Port != "" {
		c.Server.Port = fc.Server.Port
	}
	if fc.Server.HealthPort != "" {
		c.Server.HealthPort = fc.Server.HealthPort
	}
	if fc.Auth.Issuer != "" {
		c.Auth.Issuer = fc.Auth.Issuer
	}
	if fc.Auth.Audience != "" {
		c.Auth.Audience = fc.Auth.Audience
	}
	if fc.Auth.ClientID != "" {
		c.Auth.ClientID = fc.Auth.ClientID
	}
	if fc.Auth.Mode != "" {
		c.Auth.Mode = fc.Auth.Mode
	}
	if fc.Storage.PostgresURL != "" {
		c.Storage.PostgresURL = fc.Storage.PostgresURL
	}
	if fc.Storage.S3Endpoint != "" {
		c.Storage.S3Endpoint = fc.Storage.S3Endpoint
	}
	if fc.Storage.S3Bucket != "" {
		c.Storage.S3Bucket = fc.Storage.S3Bucket
	}
	if fc.Storage.RedisURL != "" {
		c.Storage.RedisURL = fc.Storage.RedisURL
	}
	if fc.API.UploadTimeout != "" {
		d, err := time.ParseDuration(fc.API.UploadTimeout)
		if err != nil {
			return fmt.Errorf("api.uploadTimeout: %w", err)
		}
		c.API.UploadTimeout = d
	}
	if len(fc.API.AllowedOrigins) > 0 {
		c.API.AllowedOrigins = fc.API.AllowedOrigins
	}
	return nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("CONTENTAPI_HOST", "0.0.0.0"),
		Port:            getEnv("CONTENTAPI_PORT", "8080"),
		ReadTimeout:     getEnvDuration("CONTENTAPI_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("CONTENTAPI_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("CONTENTAPI_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("CONTENTAPI_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("CONTENTAPI_HEALTH_PORT", "9090"),
	}
}

// loadAuthConfig loads token verification settings from environment
func loadAuthConfig() AuthConfig {
	return AuthConfig{
		Issuer:   getEnv("CONTENTAPI_AUTH_ISSUER", ""),
		Audience: getEnv("CONTENTAPI_AUTH_AUDIENCE", ""),
		ClientID: getEnv("CONTENTAPI_AUTH_CLIENT_ID", ""),
		Mode:     getEnv("CONTENTAPI_AUTH_MODE", string(auth.ModeEnforce)),
	}
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	// PostgreSQL config
	if pgURL := getEnv("CONTENTAPI_POSTGRES_URL", ""); pgURL != "" {
		cfg.PostgresURL = pgURL
	}
	if maxConns := getEnvInt("CONTENTAPI_POSTGRES_MAX_CONNS", 0); maxConns > 0 {
		cfg.PostgresMaxConns = maxConns
	}
	if minConns := getEnvInt("CONTENTAPI_POSTGRES_MIN_CONNS", 0); minConns > 0 {
		cfg.PostgresMinConns = minConns
	}
	if timeout := getEnvDuration("CONTENTAPI_POSTGRES_TIMEOUT", 0); timeout > 0 {
		cfg.PostgresTimeout = timeout
	}

	// S3 config
	if s3Endpoint := getEnv("CONTENTAPI_S3_ENDPOINT", ""); s3Endpoint != "" {
		cfg.S3Endpoint = s3Endpoint
	}
	if s3Region := getEnv("CONTENTAPI_S3_REGION", ""); s3Region != "" {
		cfg.S3Region = s3Region
	}
	if s3Bucket := getEnv("CONTENTAPI_S3_BUCKET", ""); s3Bucket != "" {
		cfg.S3Bucket = s3Bucket
	}
	if s3AccessKey := getEnv("CONTENTAPI_S3_ACCESS_KEY", ""); s3AccessKey != "" {
		cfg.S3AccessKey = s3AccessKey
	}
	if s3SecretKey := getEnv("CONTENTAPI_S3_SECRET_KEY", ""); s3SecretKey != "" {
		cfg.S3SecretKey = s3SecretKey
	}
	if s3UsePathStyle := getEnv("CONTENTAPI_S3_USE_PATH_STYLE", ""); s3UsePathStyle != "" {
		cfg.S3UsePathStyle = strings.ToLower(s3UsePathStyle) == "true"
	}
	if expiry := getEnvDuration("CONTENTAPI_SIGNED_URL_EXPIRY", 0); expiry > 0 {
		cfg.SignedURLExpiry = expiry
	}

	// Redis config
	if redisURL := getEnv("CONTENTAPI_REDIS_URL", ""); redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if redisPassword := getEnv("CONTENTAPI_REDIS_PASSWORD", ""); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}
	if redisDB := getEnvInt("CONTENTAPI_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if redisMaxRetries := getEnvInt("CONTENTAPI_REDIS_MAX_RETRIES", 0); redisMaxRetries > 0 {
		cfg.RedisMaxRetries = redisMaxRetries
	}
	if redisPoolSize := getEnvInt("CONTENTAPI_REDIS_POOL_SIZE", 0); redisPoolSize > 0 {
		cfg.RedisPoolSize = redisPoolSize
	}

	// Signed-URL cache config
	if cacheEnabled := getEnv("CONTENTAPI_CACHE_ENABLED", ""); cacheEnabled != "" {
		cfg.CacheEnabled = strings.ToLower(cacheEnabled) == "true"
	}
	if cacheSize := getEnvInt("CONTENTAPI_CACHE_SIZE", 0); cacheSize > 0 {
		cfg.CacheSize = cacheSize
	}
	if cacheTTL := getEnvDuration("CONTENTAPI_CACHE_TTL", 0); cacheTTL > 0 {
		cfg.CacheTTL = cacheTTL
	}

	return cfg
}

// loadRateLimitConfig loads rate limiter settings from environment
func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           getEnvBool("CONTENTAPI_RATELIMIT_ENABLED", false),
		RequestsPerWindow: getEnvInt("CONTENTAPI_RATELIMIT_REQUESTS", 300),
		WindowDuration:    getEnvDuration("CONTENTAPI_RATELIMIT_WINDOW", time.Minute),
	}
}

// loadAPIConfig loads request handling settings from environment
func loadAPIConfig() APIConfig {
	cfg := APIConfig{
		UploadTimeout: getEnvDuration("CONTENTAPI_UPLOAD_TIMEOUT", time.Hour),
		MaxBodyBytes:  getEnvInt64("CONTENTAPI_MAX_BODY_BYTES", 1<<20),
	}
	if origins := getEnv("CONTENTAPI_ALLOWED_ORIGINS", ""); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}
	return cfg
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("CONTENTAPI_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("CONTENTAPI_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("CONTENTAPI_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("CONTENTAPI_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("CONTENTAPI_OTEL_SERVICE_NAME", "content-api"),
		OTelServiceVersion: getEnv("CONTENTAPI_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("CONTENTAPI_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Validate auth config
	switch auth.Mode(c.Auth.Mode) {
	case auth.ModeEnforce, auth.ModeBypass:
	default:
		return fmt.Errorf("invalid auth mode: %s (must be enforce or bypass)", c.Auth.Mode)
	}
	if c.Auth.Issuer == "" {
		return fmt.Errorf("auth issuer is required")
	}
	if c.Auth.Audience == "" {
		return fmt.Errorf("auth audience is required")
	}

	// Validate storage config
	if c.Storage.PostgresURL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Storage.S3Bucket == "" {
		return fmt.Errorf("S3 bucket is required")
	}
	if c.Storage.CacheEnabled && c.Storage.CacheTTL >= c.Storage.SignedURLExpiry {
		return fmt.Errorf("cache TTL must be below the signed URL expiry")
	}

	// Validate rate limit config
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerWindow <= 0 {
			return fmt.Errorf("rate limit requests per window must be positive")
		}
		if c.RateLimit.WindowDuration <= 0 {
			return fmt.Errorf("rate limit window must be positive")
		}
	}

	// Validate API config
	if c.API.UploadTimeout <= 0 {
		return fmt.Errorf("upload timeout must be positive")
	}
	if c.API.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
