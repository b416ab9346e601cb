package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/devportfolio/portfolio-api/internal/api/handler"
	"github.com/devportfolio/portfolio-api/internal/api/metrics"
	"github.com/devportfolio/portfolio-api/internal/api/middleware"
	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
	opshttp "github.com/devportfolio/portfolio-api/internal/infrastructure/http"
	"github.com/devportfolio/portfolio-api/internal/infrastructure/http/handlers"
)

// RateLimits holds one store per rate-limited route family. A nil store
// leaves that family unlimited.
type RateLimits struct {
	Login   echomiddleware.RateLimiterStore
	Like    echomiddleware.RateLimiterStore
	Contact echomiddleware.RateLimiterStore
}

// Deps is everything the router wires into handlers and middleware.
type Deps struct {
	Logger zerolog.Logger

	Tokens   ports.TokenVerifier
	Auth     ports.AuthService
	Users    ports.UserService
	Posts    ports.PostService
	Contacts ports.ContactService

	RateLimits  RateLimits
	CORSOrigins []string
	BodyLimit   string

	// Health lists the backing services the readiness probe pings.
	Health []handlers.Dependency
	// Registerer receives the HTTP request metrics. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Logger))
	e.Use(cors(deps.CORSOrigins))
	if deps.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(deps.BodyLimit))
	}
	e.Use(httpMetrics(deps.Registerer))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	postHandler := handler.NewPostHandler(deps.Posts, deps.Auth)
	contactHandler := handler.NewContactHandler(deps.Contacts)

	requireAuth := middleware.Auth(deps.Tokens)
	optionalAuth := middleware.OptionalAuth(deps.Tokens)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login, rateLimit("login", deps.RateLimits.Login)...)
	auth.GET("/me", authHandler.Me, requireAuth)
	auth.PUT("/me", authHandler.UpdateMe, requireAuth)
	auth.PUT("/change-password", authHandler.ChangePassword, requireAuth)
	auth.POST("/logout", authHandler.Logout, requireAuth)
	auth.POST("/register", userHandler.Create, requireAuth, adminOnly)

	users := auth.Group("/users", requireAuth, adminOnly)
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)
	users.PUT("/:id/unlock", userHandler.Unlock)

	// --- Blog routes ---
	blog := api.Group("/blog")
	blog.GET("", postHandler.List, optionalAuth)
	blog.GET("/slug/:slug", postHandler.GetBySlug, optionalAuth)
	blog.GET("/:id", postHandler.Get, optionalAuth)
	blog.GET("/:id/related", postHandler.Related)
	blog.POST("/:id/like", postHandler.Like, rateLimit("like", deps.RateLimits.Like)...)
	blog.POST("", postHandler.Create, requireAuth, adminOnly)
	blog.PUT("/:id", postHandler.Update, requireAuth, adminOnly)
	blog.DELETE("/:id", postHandler.Delete, requireAuth, adminOnly)

	// --- Contact routes ---
	contact := api.Group("/contact")
	contact.POST("", contactHandler.Submit, rateLimit("contact", deps.RateLimits.Contact)...)
	contact.GET("", contactHandler.List, requireAuth, adminOnly)
	contact.GET("/:id", contactHandler.Get, requireAuth, adminOnly)
	contact.PUT("/:id/status", contactHandler.UpdateStatus, requireAuth, adminOnly)
	contact.DELETE("/:id", contactHandler.Delete, requireAuth, adminOnly)

	// --- Health probes, metrics and docs (no auth required) ---
	opshttp.RegisterOps(e, deps.Health...)

	return e
}

// NewMemoryRateLimitStore allows limit requests per window per client,
// refilling gradually. It backs the limiter when Redis is not configured.
func NewMemoryRateLimitStore(limit int, window time.Duration) echomiddleware.RateLimiterStore {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(limit) / window.Seconds()),
		Burst:     limit,
		ExpiresIn: window,
	})
}

func rateLimit(scope string, store echomiddleware.RateLimiterStore) []echo.MiddlewareFunc {
	if store == nil {
		return nil
	}
	return []echo.MiddlewareFunc{echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client").SetInternal(err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
		},
	})}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= http.StatusInternalServerError {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func cors(origins []string) echo.MiddlewareFunc {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	})
}

func httpMetrics(reg prometheus.Registerer) echo.MiddlewareFunc {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "portfolio",
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			switch c.Path() {
			case "/metrics", "/health", "/health/ready":
				return true
			}
			return false
		},
	})
}
