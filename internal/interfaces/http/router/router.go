package router

import (
	"context"
	"net/http"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
	health     HealthCheck
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithHealthCheck makes GET /health answer 503 while check fails
func WithHealthCheck(check HealthCheck) RouterOption {
	return func(r *Router) {
		r.health = check
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup registers the health probe, every registrar under /api/<version>
// and a JSON 404 for unknown routes.
func (r *Router) Setup() {
	r.engine.GET("/health", r.healthz)

	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrorInfo{
			Code:      shared.CodeNotFound,
			Message:   "Route not found",
			RequestID: middleware.GetRequestID(c),
		}))
	})
}

func (r *Router) healthz(c *gin.Context) {
	if r.health != nil {
		if err := r.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// EngineConfig selects the middleware chain of NewEngine
type EngineConfig struct {
	Mode           string // gin.ReleaseMode, gin.DebugMode or gin.TestMode
	ServiceName    string
	TracingEnabled bool
	MaxBodyBytes   int64
	TrustedProxies []string
	CORS           middleware.CORSConfig
}

// NewEngine builds a gin engine with the standard middleware chain:
// recovery, request and actor ids, tracing, request logging, security
// headers, CORS and the body limit.
func NewEngine(cfg EngineConfig, log *zap.Logger) (*gin.Engine, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Actor(),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     cfg.TracingEnabled,
		}),
		middleware.TracingAttributeInjector(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
	)
	if cfg.MaxBodyBytes > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	}
	return engine, nil
}
