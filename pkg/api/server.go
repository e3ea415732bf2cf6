package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/quanghuy1242/content-api/pkg/auth"
	"github.com/quanghuy1242/content-api/pkg/httputil"
	"github.com/quanghuy1242/content-api/pkg/middleware"
	"github.com/quanghuy1242/content-api/pkg/observability"
	"github.com/quanghuy1242/content-api/pkg/validation"
)

// ServerConfig carries the knobs the server needs beyond its collaborators.
type ServerConfig struct {
	// Policy drives all authorization decisions.
	Policy auth.Policy

	// UploadTimeout bounds how long a PENDING image may wait for its bytes
	// before validation declares it stale and turns it INACTIVE.
	UploadTimeout time.Duration

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64

	// AllowedOrigins configures CORS; empty disables it.
	AllowedOrigins []string
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		UploadTimeout: time.Hour,
		MaxBodyBytes:  1 << 20, // 1MB; bodies are JSON, image bytes go to object storage
	}
}

// Server is the content API: route dispatch, the shared middleware chain,
// and the per-entity handlers.
type Server struct {
	storage   Storage
	objects   ObjectStore
	router    *mux.Router
	policy    auth.Policy
	validator *validation.Validator
	logger    *observability.Logger
	metrics   *observability.Metrics
	config    ServerConfig

	// now is swapped in tests that exercise upload staleness.
	now func() time.Time
}

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithClock overrides the server's time source.
func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) { s.now = now }
}

// NewServer creates the API server and mounts all routes. The rate limiter
// is optional; pass nil to run without one.
func NewServer(
	storage Storage,
	objects ObjectStore,
	verifier *auth.Verifier,
	limiter *middleware.RateLimiter,
	logger *observability.Logger,
	metrics *observability.Metrics,
	config ServerConfig,
	opts ...ServerOption,
) *Server {
	s := &Server{
		storage:   storage,
		objects:   objects,
		router:    mux.NewRouter(),
		policy:    config.Policy,
		validator: validation.New(),
		logger:    logger,
		metrics:   metrics,
		config:    config,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	chain := []mux.MiddlewareFunc{
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
		httputil.RecoveryMiddleware(logger),
	}
	if metrics != nil {
		chain = append(chain, observability.HTTPMetricsMiddleware(metrics))
	}
	if len(config.AllowedOrigins) > 0 {
		chain = append(chain, httputil.CORSMiddleware(config.AllowedOrigins))
	}
	chain = append(chain,
		httputil.ContentTypeMiddleware,
		httputil.MaxBytesMiddleware(config.MaxBodyBytes),
		// Auth runs in optional mode: public reads pass through anonymous,
		// but a presented token must always be valid. Per-route gates
		// enforce the rest.
		middleware.NewAuthMiddleware(verifier, true).Handler,
	)
	if limiter != nil {
		// After auth so authenticated callers are keyed by subject
		// rather than source IP.
		chain = append(chain, limiter.Handler)
	}
	s.router.Use(chain...)

	s.setupRoutes()
	return s
}

// setupRoutes mounts the health probe and the entity route groups.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.health).Methods("GET")

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	s.RegisterRoutes(v1, NewCategoryHandlers(s.storage.Categories(), s.policy, s.validator))
	s.RegisterRoutes(v1, NewContentHandlers(s.storage.Contents(), s.storage.Categories(), s.policy, s.validator))
	s.RegisterRoutes(v1, NewImageHandlers(s.storage.Images(), s.objects, s.policy, s.validator, s.config.UploadTimeout, s.metrics, s.now))
	s.RegisterRoutes(v1, NewUserHandlers(s.storage.Users(), s.policy, s.validator))
}

// health handles GET /health
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ok"))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RouteRegistrar is an interface for types that can register routes
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// RegisterRoutes registers routes from a RouteRegistrar
func (s *Server) RegisterRoutes(router *mux.Router, registrar RouteRegistrar) {
	registrar.RegisterRoutes(router)
}
