// Package httpapi wires the HTTP transport (Gin) to the authorization
// service, middleware, and route handlers. It centralizes cross-cutting
// concerns: tracing, correlation IDs, logging with redaction, panic
// recovery, metrics, compression, CORS, security headers, and rate limiting.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with password scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter and gzip
//  6. Metrics
//  7. Rate limiter (per client IP)
//  8. CORS and security headers
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/Drew466/auth-server-tbot/internal/config"
	"github.com/Drew466/auth-server-tbot/internal/domain"
	"github.com/Drew466/auth-server-tbot/internal/http/handlers"
	"github.com/Drew466/auth-server-tbot/internal/http/middleware"
	"github.com/Drew466/auth-server-tbot/internal/repo"
	"github.com/Drew466/auth-server-tbot/internal/services"
)

// authRepoShim adapts the repository free functions to the services.AuthRepo
// interface expected by the AuthService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type authRepoShim struct{}

// GetGrant proxies repo.GetGrant.
func (authRepoShim) GetGrant(ctx context.Context, db *gorm.DB, userID int64) (*domain.AuthGrant, error) {
	return repo.GetGrant(ctx, db, userID)
}

// UpsertGrant proxies repo.UpsertGrant.
func (authRepoShim) UpsertGrant(ctx context.Context, db *gorm.DB, userID int64, until time.Time) error {
	return repo.UpsertGrant(ctx, db, userID, until)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: the password form, the authorize/check routes, health, and metrics.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging; the shared password must never reach the logs
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Small body cap (the only POST is a password form) and compression
	r.Use(limitBody(64 << 10))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: service ← repo/db
	authSvc := services.NewAuthService(db, authRepoShim{}, cfg.GrantWindow)
	h := handlers.New(authSvc, cfg.AuthPassword)

	// Public surface
	r.GET("/", h.LoginForm)
	r.POST("/", h.Login)
	r.GET("/authorize/:id", h.Authorize)
	r.GET("/check/:id", h.Check)
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints using http.MaxBytesReader.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
