package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/devportfolio/portfolio-api/internal/infrastructure/http/handlers"
)

// RegisterOps mounts the operational endpoints: health probes, Prometheus
// exposition and the Swagger UI. None of them require authentication.
func RegisterOps(e *echo.Echo, deps ...handlers.Dependency) {
	health := e.Group("/health")
	health.GET("", handlers.NewHealthHandler().Liveness)
	health.GET("/ready", handlers.NewHealthDependenciesHandler(deps...).Readiness)

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
