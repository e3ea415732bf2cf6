package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quanghuy1242/content-api/pkg/observability"
)

// setRequiredEnv sets the minimum environment for LoadConfig to pass
// validation.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONTENTAPI_AUTH_ISSUER", "https://tenant.auth0.com/")
	t.Setenv("CONTENTAPI_AUTH_AUDIENCE", "https://content-api.example.com")
	t.Setenv("CONTENTAPI_POSTGRES_URL", "postgres://localhost/content_test")
	t.Setenv("CONTENTAPI_S3_BUCKET", "content-images")
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "TEST_VAR_NOT_SET",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		defaultValue bool
		envValue     string
		want         bool
	}{
		{name: "true string", envValue: "true", want: true},
		{name: "TRUE string", envValue: "TRUE", want: true},
		{name: "numeric one", envValue: "1", want: true},
		{name: "false string", envValue: "false", want: false},
		{name: "garbage is false", envValue: "yes please", want: false},
		{name: "unset uses default", envValue: "", defaultValue: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("TEST_BOOL_VAR", tt.envValue)
			}

			got := getEnvBool("TEST_BOOL_VAR", tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Run("parses integer", func(t *testing.T) {
		t.Setenv("TEST_INT_VAR", "42")
		if got := getEnvInt("TEST_INT_VAR", 10); got != 42 {
			t.Errorf("getEnvInt() = %v, want 42", got)
		}
	})

	t.Run("invalid integer uses default", func(t *testing.T) {
		t.Setenv("TEST_INT_VAR", "not-a-number")
		if got := getEnvInt("TEST_INT_VAR", 10); got != 10 {
			t.Errorf("getEnvInt() = %v, want 10", got)
		}
	})
}

func TestGetEnvDuration(t *testing.T) {
	t.Run("parses duration", func(t *testing.T) {
		t.Setenv("TEST_DUR_VAR", "90s")
		if got := getEnvDuration("TEST_DUR_VAR", time.Minute); got != 90*time.Second {
			t.Errorf("getEnvDuration() = %v, want 90s", got)
		}
	})

	t.Run("invalid duration uses default", func(t *testing.T) {
		t.Setenv("TEST_DUR_VAR", "soon")
		if got := getEnvDuration("TEST_DUR_VAR", time.Minute); got != time.Minute {
			t.Errorf("getEnvDuration() = %v, want 1m", got)
		}
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want observability.LogLevel
	}{
		{"debug", observability.DebugLevel},
		{"info", observability.InfoLevel},
		{"warn", observability.WarnLevel},
		{"warning", observability.WarnLevel},
		{"ERROR", observability.ErrorLevel},
		{"unknown", observability.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.HealthPort != "9090" {
		t.Errorf("Expected default health port 9090, got %s", cfg.Server.HealthPort)
	}
	if cfg.Auth.Mode != "enforce" {
		t.Errorf("Expected default auth mode enforce, got %s", cfg.Auth.Mode)
	}
	if cfg.API.UploadTimeout != time.Hour {
		t.Errorf("Expected default upload timeout 1h, got %v", cfg.API.UploadTimeout)
	}
	if cfg.API.MaxBodyBytes != 1<<20 {
		t.Errorf("Expected default max body 1MB, got %d", cfg.API.MaxBodyBytes)
	}
	if cfg.RateLimit.Enabled {
		t.Error("Expected rate limiting disabled by default")
	}
	if !cfg.Observability.MetricsEnabled {
		t.Error("Expected metrics enabled by default")
	}
	if cfg.Observability.OTelEnabled {
		t.Error("Expected OTel disabled by default")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CONTENTAPI_PORT", "3000")
	t.Setenv("CONTENTAPI_AUTH_MODE", "bypass")
	t.Setenv("CONTENTAPI_UPLOAD_TIMEOUT", "30m")
	t.Setenv("CONTENTAPI_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("CONTENTAPI_RATELIMIT_ENABLED", "true")
	t.Setenv("CONTENTAPI_RATELIMIT_REQUESTS", "50")
	t.Setenv("CONTENTAPI_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Server.Port != "3000" {
		t.Errorf("Expected port 3000, got %s", cfg.Server.Port)
	}
	if cfg.Auth.Mode != "bypass" {
		t.Errorf("Expected auth mode bypass, got %s", cfg.Auth.Mode)
	}
	if cfg.API.UploadTimeout != 30*time.Minute {
		t.Errorf("Expected upload timeout 30m, got %v", cfg.API.UploadTimeout)
	}
	if len(cfg.API.AllowedOrigins) != 2 || cfg.API.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("Unexpected allowed origins: %v", cfg.API.AllowedOrigins)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RequestsPerWindow != 50 {
		t.Errorf("Unexpected rate limit config: %+v", cfg.RateLimit)
	}
	if cfg.Observability.LogLevel != observability.DebugLevel {
		t.Errorf("Expected debug log level, got %v", cfg.Observability.LogLevel)
	}
}

func TestLoadConfig_FileOverlay(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
server:
  port: "4000"
auth:
  mode: bypass
api:
  uploadTimeout: 45m
  allowedOrigins:
    - https://file.example.com
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONTENTAPI_CONFIG_FILE", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Server.Port != "4000" {
		t.Errorf("Expected file port 4000, got %s", cfg.Server.Port)
	}
	if cfg.Auth.Mode != "bypass" {
		t.Errorf("Expected file auth mode bypass, got %s", cfg.Auth.Mode)
	}
	if cfg.API.UploadTimeout != 45*time.Minute {
		t.Errorf("Expected file upload timeout 45m, got %v", cfg.API.UploadTimeout)
	}
	if len(cfg.API.AllowedOrigins) != 1 || cfg.API.AllowedOrigins[0] != "https://file.example.com" {
		t.Errorf("Unexpected allowed origins: %v", cfg.API.AllowedOrigins)
	}
	// Keys absent from the file keep their env/default values.
	if cfg.Server.HealthPort != "9090" {
		t.Errorf("Expected health port 9090, got %s", cfg.Server.HealthPort)
	}
}

func TestLoadConfig_FileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("CONTENTAPI_CONFIG_FILE", "/nonexistent/config.yaml")

		if _, err := LoadConfig(); err == nil {
			t.Error("Expected error for missing config file")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		setRequiredEnv(t)
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("server: [not a map"), 0o600); err != nil {
			t.Fatalf("write config file: %v", err)
		}
		t.Setenv("CONTENTAPI_CONFIG_FILE", path)

		if _, err := LoadConfig(); err == nil {
			t.Error("Expected error for malformed yaml")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		t.Helper()
		setRequiredEnv(t)
		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error: %v", err)
		}
		return cfg
	}

	t.Run("missing issuer", func(t *testing.T) {
		cfg := valid(t)
		cfg.Auth.Issuer = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for missing issuer")
		}
	})

	t.Run("invalid auth mode", func(t *testing.T) {
		cfg := valid(t)
		cfg.Auth.Mode = "permissive"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for invalid auth mode")
		}
	})

	t.Run("missing postgres url", func(t *testing.T) {
		cfg := valid(t)
		cfg.Storage.PostgresURL = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for missing postgres URL")
		}
	})

	t.Run("missing s3 bucket", func(t *testing.T) {
		cfg := valid(t)
		cfg.Storage.S3Bucket = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for missing S3 bucket")
		}
	})

	t.Run("same server and health port", func(t *testing.T) {
		cfg := valid(t)
		cfg.Server.HealthPort = cfg.Server.Port
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for colliding ports")
		}
	})

	t.Run("cache ttl above signed url expiry", func(t *testing.T) {
		cfg := valid(t)
		cfg.Storage.CacheEnabled = true
		cfg.Storage.CacheTTL = cfg.Storage.SignedURLExpiry + time.Minute
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for cache TTL above signed URL expiry")
		}
	})

	t.Run("zero upload timeout", func(t *testing.T) {
		cfg := valid(t)
		cfg.API.UploadTimeout = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for zero upload timeout")
		}
	})

	t.Run("rate limit enabled with bad window", func(t *testing.T) {
		cfg := valid(t)
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.WindowDuration = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for zero rate limit window")
		}
	})

	t.Run("otel enabled without endpoint", func(t *testing.T) {
		cfg := valid(t)
		cfg.Observability.OTelEnabled = true
		cfg.Observability.OTelEndpoint = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for missing OTel endpoint")
		}
	})
}
