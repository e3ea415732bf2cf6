package storage

import "time"

// Config for the storage backends: PostgreSQL for entity rows, S3 for image
// bytes, Redis for the signed-URL cache and rate limiting.
type Config struct {
	// PostgreSQL config
	PostgresURL         string
	PostgresMaxConns    int
	PostgresMinConns    int
	PostgresTimeout     time.Duration
	PostgresMaxLifetime time.Duration
	PostgresMaxIdleTime time.Duration

	// S3 config. Endpoint is only set for MinIO or other S3-compatible
	// stores; empty means real AWS.
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool

	// SignedURLExpiry is how long pre-signed upload and download links
	// stay valid.
	SignedURLExpiry time.Duration

	// Redis config
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// Cache config for signed download URLs. The TTL must stay below
	// SignedURLExpiry or clients get handed dead links.
	CacheEnabled bool
	CacheSize    int
	CacheTTL     time.Duration
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		PostgresMaxConns:    20,
		PostgresMinConns:    2,
		PostgresTimeout:     10 * time.Second,
		PostgresMaxLifetime: 1 * time.Hour,
		PostgresMaxIdleTime: 10 * time.Minute,
		S3Region:            "us-east-1",
		SignedURLExpiry:     15 * time.Minute,
		RedisDB:             0,
		RedisMaxRetries:     3,
		RedisPoolSize:       10,
		CacheEnabled:        true,
		CacheSize:           2048,
		CacheTTL:            10 * time.Minute,
	}
}
