package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/identity-hub/identity-service/internal/api/handler"
	"github.com/identity-hub/identity-service/internal/api/middleware"
	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
	"github.com/identity-hub/identity-service/internal/pkg/validate"
)

// RouterDeps carries everything the HTTP layer needs.
type RouterDeps struct {
	Registration ports.RegistrationService
	Auth         ports.AuthService
	Profiles     ports.ProfileService
	Queries      ports.UserQueryService
	Verifier     ports.TokenVerifier
	Revocations  ports.RevocationStore
	Checks       map[string]handler.DependencyCheck

	UploadDir      string // served under /uploads when set
	MaxUploadBytes int64
	RateLimitRPS   float64
	CORSOrigins    []string
	Log            zerolog.Logger

	// Metrics receives the HTTP collectors and backs /metrics.
	// Nil means the default Prometheus registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Metrics != nil {
		registerer, gatherer = deps.Metrics, deps.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "identity",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Registration, deps.Auth, deps.MaxUploadBytes, deps.Log)
	userHandler := handler.NewUserHandler(deps.Profiles, deps.Queries)
	authenticated := []echo.MiddlewareFunc{
		middleware.Auth(deps.Verifier, deps.Revocations),
		middleware.LoadActor(deps.Queries),
	}

	// --- Auth routes ---
	limited := middleware.RateLimit(deps.RateLimitRPS)
	e.POST("/auth/register", authHandler.Register, limited)
	e.POST("/auth/login", authHandler.Login, limited)
	e.POST("/auth/logout", authHandler.Logout, authenticated...)

	// --- User routes ---
	users := e.Group("/v1/users", authenticated...)
	users.GET("", userHandler.List, middleware.RBAC(domain.RoleAdmin, domain.RoleSuperAdmin))
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id/email", userHandler.UpdateEmail)
	users.PUT("/:id/password", userHandler.UpdatePassword)
	users.PUT("/:id/name", userHandler.UpdateName)
	users.DELETE("/:id", userHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if deps.UploadDir != "" {
		e.Static("/uploads", deps.UploadDir)
	}

	return e
}

// requestLogger logs one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
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
