package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/quanghuy1242/content-api/pkg/api"
	"github.com/quanghuy1242/content-api/pkg/auth"
	"github.com/quanghuy1242/content-api/pkg/config"
	"github.com/quanghuy1242/content-api/pkg/middleware"
	"github.com/quanghuy1242/content-api/pkg/observability"
	"github.com/quanghuy1242/content-api/pkg/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "content-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	ctx := context.Background()

	// Tracing and OTLP metrics, when a collector is configured.
	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return fmt.Errorf("init otel: %w", err)
	}

	// PostgreSQL for entity records.
	store, err := postgres.NewStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("Database schema ready")

	// Redis is optional: it backs the shared signed-URL cache tier and the
	// rate limiter. Without it the cache stays local and rate limiting must
	// be disabled.
	var client *redis.Client
	if cfg.Storage.RedisURL != "" {
		client, err = postgres.NewRedisClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("Connected to Redis")
	}

	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	var otelMetrics *observability.OTelMetrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}
	if cfg.Observability.OTelEnabled {
		otelMetrics, err = observability.NewOTelMetrics()
		if err != nil {
			return fmt.Errorf("init otel metrics: %w", err)
		}
	}

	var limiter *middleware.RateLimiter
	var urlCache *postgres.URLCache
	if cfg.Storage.CacheEnabled {
		urlCache = postgres.NewURLCache(cfg.Storage.CacheSize, cfg.Storage.CacheTTL, client).WithMetrics(metrics)
	}
	if cfg.RateLimit.Enabled {
		if client == nil {
			return errors.New("rate limiting requires a Redis URL")
		}
		limiter = middleware.NewRateLimiter(client, &middleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			WindowDuration:    cfg.RateLimit.WindowDuration,
		}, "contentapi")
	}

	// S3 for image bytes, reached only through pre-signed URLs.
	objects, err := postgres.NewObjectStore(cfg.Storage, urlCache)
	if err != nil {
		return fmt.Errorf("connect object store: %w", err)
	}
	objects.WithMetrics(metrics)

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		Mode:     auth.Mode(cfg.Auth.Mode),
	})
	if err != nil {
		return fmt.Errorf("configure verifier: %w", err)
	}
	if auth.Mode(cfg.Auth.Mode) == auth.ModeBypass {
		logger.Warn("Auth bypass mode enabled; token signatures are NOT verified")
	}

	server := api.NewServer(store, objects, verifier, limiter, logger, metrics, api.ServerConfig{
		Policy: auth.Policy{
			ClientID: cfg.Auth.ClientID,
			Audience: cfg.Auth.Audience,
		},
		UploadTimeout:  cfg.API.UploadTimeout,
		MaxBodyBytes:   cfg.API.MaxBodyBytes,
		AllowedOrigins: cfg.API.AllowedOrigins,
	})

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      otelhttp.NewHandler(server, "content-api"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Probes and metrics live on a separate port so they are reachable even
	// when the public port is firewalled.
	checker := observability.NewHealthChecker(store.DB(), client).
		WithObjectStore(objects.HealthCheck)
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, checker)
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	collectorCtx, stopCollector := context.WithCancel(ctx)
	defer stopCollector()
	if metrics != nil || otelMetrics != nil {
		go collectPoolStats(collectorCtx, store, metrics, otelMetrics, logger)
	}

	var group errgroup.Group
	group.Go(func() error {
		logger.Infof("API server listening on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		manager := observability.NewShutdownManager(logger, apiServer, cfg.Server.ShutdownTimeout)
		manager.RegisterShutdownFunc(healthServer.Shutdown)
		manager.RegisterShutdownFunc(func(shutdownCtx context.Context) error {
			stopCollector()
			return nil
		})
		if client != nil {
			manager.RegisterShutdownFunc(func(shutdownCtx context.Context) error {
				return client.Close()
			})
		}
		if providers != nil {
			manager.RegisterShutdownFunc(func(shutdownCtx context.Context) error {
				return observability.ShutdownOTel(shutdownCtx, providers, logger)
			})
		}
		return manager.WaitForShutdown()
	})

	return group.Wait()
}

// collectPoolStats periodically exports database pool gauges.
func collectPoolStats(ctx context.Context, store *postgres.Storage, metrics *observability.Metrics, otelMetrics *observability.OTelMetrics, logger *observability.Logger) {
	defer observability.RecoverPanic(logger, "db stats collector")

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := store.DB().Stats()
			if metrics != nil {
				metrics.DBConnectionsActive.Set(float64(stats.InUse))
				metrics.DBConnectionsIdle.Set(float64(stats.Idle))
				metrics.DBConnectionsWaitCount.Set(float64(stats.WaitCount))
				metrics.DBConnectionsWaitDuration.Set(stats.WaitDuration.Seconds())
			}
			if otelMetrics != nil {
				otelMetrics.UpdateDBConnectionStats(ctx, stats.InUse, stats.Idle, stats.MaxOpenConnections)
			}
		}
	}
}
