// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables
// with sensible defaults, optionally overlaid by a YAML file named in
// CONTENTAPI_CONFIG_FILE.
//
// # Configuration Structure
//
// Server settings:
//
//	CONTENTAPI_HOST="0.0.0.0"
//	CONTENTAPI_PORT="8080"
//	CONTENTAPI_HEALTH_PORT="9090"
//	CONTENTAPI_READ_TIMEOUT="15s"
//	CONTENTAPI_WRITE_TIMEOUT="15s"
//
// Auth settings:
//
//	CONTENTAPI_AUTH_ISSUER="https://tenant.auth0.com/"
//	CONTENTAPI_AUTH_AUDIENCE="https://content-api.example.com"
//	CONTENTAPI_AUTH_MODE="enforce"  # enforce, bypass (local dev only)
//
// Storage settings:
//
//	CONTENTAPI_POSTGRES_URL="postgres://localhost/content"
//	CONTENTAPI_POSTGRES_MAX_CONNS="20"
//	CONTENTAPI_S3_ENDPOINT="http://localhost:9000"  # MinIO in dev
//	CONTENTAPI_S3_BUCKET="content-images"
//	CONTENTAPI_S3_REGION="us-east-1"
//	CONTENTAPI_SIGNED_URL_EXPIRY="15m"
//
// Cache settings:
//
//	CONTENTAPI_CACHE_ENABLED="true"
//	CONTENTAPI_REDIS_URL="redis://localhost:6379"
//	CONTENTAPI_REDIS_POOL_SIZE="10"
//
// Observability settings:
//
//	CONTENTAPI_LOG_LEVEL="info"  # debug, info, warn, error
//	CONTENTAPI_METRICS_ENABLED="true"
//	CONTENTAPI_OTEL_ENABLED="true"
//	CONTENTAPI_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/observability: Uses observability configuration
package config
