package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/task-tracker/docs"
	"github.com/99minutos/task-tracker/internal/api/handler"
	"github.com/99minutos/task-tracker/internal/api/middleware"
	"github.com/99minutos/task-tracker/internal/core/ports"
)

const maxBodySize = "1M"

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	AuthService ports.AuthService
	TaskService ports.TaskService
	Tokens      ports.TokenService
	Identities  ports.IdentityResolver
	// Health lists the dependencies checked by the readiness probe.
	Health map[string]ports.Pinger
	Log    zerolog.Logger
	// Registerer receives the HTTP request metrics. Nil means the default registry.
	Registerer prometheus.Registerer
	// Swagger mounts the API docs under /swagger/.
	Swagger bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "tasktracker",
		Registerer: deps.Registerer,
	}))
	e.Use(echomiddleware.BodyLimit(maxBodySize))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	taskHandler := handler.NewTaskHandler(deps.TaskService)
	healthHandler := handler.NewHealthHandler(deps.Health)
	authGate := middleware.Auth(deps.Tokens, deps.Identities, deps.Log)

	// --- Operational routes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	if deps.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- User routes ---
	users := e.Group("/api/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.GET("/me", authHandler.Me, authGate)

	// --- Task routes (every route behind the auth gate) ---
	tasks := e.Group("/api/tasks", authGate)
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)
	tasks.GET("/:id/activity", taskHandler.Activity)

	return e
}

// requestLogger emits one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
