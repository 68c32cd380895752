package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/dailyskills/marketplace/docs"
	"github.com/dailyskills/marketplace/internal/api/handler"
	"github.com/dailyskills/marketplace/internal/api/middleware"
	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
	"github.com/dailyskills/marketplace/internal/infrastructure/http/handlers"
)

// Dependencies are the services the HTTP API is built on.
type Dependencies struct {
	Auth     ports.AuthService
	Jobs     ports.JobService
	Messages ports.MessagingService
	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handlers.Check
	// Registerer receives the HTTP request metrics. Defaults to the
	// Prometheus default registerer.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "dailyskills",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	jobHandler := handler.NewJobHandler(deps.Jobs)
	messageHandler := handler.NewMessageHandler(deps.Messages)
	requireAuth := middleware.Auth(deps.Auth)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, requireAuth)
	e.GET("/auth/me", authHandler.Me, requireAuth)

	// --- Marketplace routes ---
	v1 := e.Group("/v1", requireAuth)
	v1.GET("/jobs", jobHandler.List)
	v1.POST("/jobs", jobHandler.Create, middleware.RBAC(domain.RoleEmployer))
	v1.GET("/conversations", messageHandler.ListConversations)
	v1.POST("/conversations", messageHandler.StartConversation)
	v1.GET("/conversations/:id/messages", messageHandler.ListMessages)
	v1.POST("/conversations/:id/messages", messageHandler.Send)
	v1.GET("/conversations/:id/stream", messageHandler.Stream)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger logs one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			entry := log.Info()
			if v.Status >= 500 {
				entry = log.Error().Err(v.Error)
			}
			entry.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
