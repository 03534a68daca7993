// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, redacted logging, panic recovery, metrics,
// CORS, security headers, idempotency, and edge rate limiting.
//
// Route groups:
//   - widget:    POST/GET /api/chat (CORS open to hotel sites)
//   - events:    POST /api/events (idempotency keys, edge limiter)
//   - dashboard: analytics, summary, overview, live (tenant gate, edge
//     limiter, gzip, no-store)
//   - ops:       /health, /api/health, /api/health/db, /metrics, /swagger
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/hotel-concierge/internal/config"
	"github.com/tbourn/hotel-concierge/internal/domain"
	"github.com/tbourn/hotel-concierge/internal/faq"
	"github.com/tbourn/hotel-concierge/internal/http/handlers"
	"github.com/tbourn/hotel-concierge/internal/http/middleware"
	"github.com/tbourn/hotel-concierge/internal/repo"
	"github.com/tbourn/hotel-concierge/internal/services"
	"github.com/tbourn/hotel-concierge/internal/tenant"
)

// maxBodyBytes caps every request body. Chat messages are a few hundred
// characters; events carry small meta objects.
const maxBodyBytes = 64 << 10

// replyRepoShim adapts the repository free functions to services.ReplyRepo.
type replyRepoShim struct{}

// GetHotel proxies repo.GetHotel.
func (replyRepoShim) GetHotel(ctx context.Context, db *gorm.DB, id string) (*domain.Hotel, error) {
	return repo.GetHotel(ctx, db, id)
}

// ListFaqs proxies repo.ListFaqs.
func (replyRepoShim) ListFaqs(ctx context.Context, db *gorm.DB, hotelID, lang string) ([]domain.Faq, error) {
	return repo.ListFaqs(ctx, db, hotelID, lang)
}

// UpsertSession proxies repo.UpsertSession.
func (replyRepoShim) UpsertSession(ctx context.Context, db *gorm.DB, hotelID, sessionID string) error {
	return repo.UpsertSession(ctx, db, hotelID, sessionID)
}

// CreateMessage proxies repo.CreateMessage.
func (replyRepoShim) CreateMessage(ctx context.Context, db *gorm.DB, hotelID, sessionID, role, text, lang, source string) (*domain.ChatMessage, error) {
	return repo.CreateMessage(ctx, db, hotelID, sessionID, role, text, lang, source)
}

// Deps are the process-wide collaborators built by cmd/server. The router
// creates the request-facing services around them.
type Deps struct {
	Auth    *services.Authenticator
	Rules   *faq.RuleSet
	Plans   tenant.Plans
	Limiter services.RateLimiter
	Usage   services.UsageCounter
	// Model may be nil or disabled; the pipeline then answers with the
	// placeholder echo.
	Model services.Completer
	// Events is shared with the idempotency janitor.
	Events *services.EventService
}

// RegisterRoutes attaches all middleware and HTTP endpoints to r.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs, hotel keys masked
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{middleware.HeaderIdempotencyKey},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/collaborators
	replySvc := &services.ReplyService{
		DB:              db,
		Repo:            replyRepoShim{},
		Auth:            deps.Auth,
		Rules:           deps.Rules,
		Plans:           deps.Plans,
		Limiter:         deps.Limiter,
		Usage:           deps.Usage,
		Model:           deps.Model,
		MaxMessageRunes: cfg.Chat.MaxMessageChars,
	}
	analyticsSvc := &services.AnalyticsService{DB: db, Plans: deps.Plans, Usage: deps.Usage}
	eventSvc := deps.Events
	if eventSvc == nil {
		eventSvc = &services.EventService{DB: db, IdempotencyTTL: cfg.IdempotencyTTL}
	}

	h := handlers.New(handlers.Deps{
		Replies:   replySvc,
		Analytics: analyticsSvc,
		Events:    eventSvc,
		Auth:      deps.Auth,
		Ping:      func(ctx context.Context) (time.Time, error) { return repo.Ping(ctx, db) },
		Info: handlers.ServiceInfo{
			HasModelKey:    replySvc.ModelEnabled(),
			Model:          cfg.OpenAI.Model,
			CounterBackend: cfg.Chat.CounterBackend,
		},
		MaxMessageChars: cfg.Chat.MaxMessageChars,
	})

	// Health
	r.GET("/health", h.Liveness)
	r.GET("/api/health", h.Health)
	r.GET("/api/health/db", h.DBHealth)

	// Widget
	r.POST("/api/chat", h.PostChat)
	r.GET("/api/chat", h.ChatUsage)

	edge := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByHotelOrIP())

	// Events
	r.POST("/api/events",
		edge.Handler(),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{}),
		h.TrackEvent,
	)

	// Dashboard
	dash := r.Group("/api",
		middleware.TenantGate(deps.Auth),
		edge.Handler(),
		middleware.SecurityHeaders(middleware.SecurityOptions{NoStore: true}),
		gzip.Gzip(gzip.DefaultCompression),
	)
	{
		dash.GET("/analytics", h.Analytics)
		dash.GET("/analytics/summary", h.Summary)
		dash.GET("/dashboard/overview", h.Overview)
		dash.GET("/conversations/live", h.LiveConversations)
	}
}

// corsConfig allows any origin when none are configured; the widget runs on
// arbitrary hotel sites and carries no cookies.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderIdempotencyKey, "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Retry-After", handlers.HeaderIdempotencyReplayed},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

// limitBody caps the request body at maxBytes; reads past it fail with
// *http.MaxBytesError.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
