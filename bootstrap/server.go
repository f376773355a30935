package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPServer creates and configures the Echo ops server. It carries no
// feed functionality, only health and metrics.
func NewHTTPServer(deps *Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/api/v1/health" || path == "/metrics"
		},
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			deps.Logger.InfoContext(ctx, "http request completed",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"error", v.Error)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/api/v1/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":       "healthy",
			"active_feeds": deps.Scheduler.ActiveCount(),
			"dependencies": pingDependencies(c.Request().Context(), deps),
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

// StartHTTPServer starts the ops server in a goroutine.
func StartHTTPServer(e *echo.Echo, port int, log *slog.Logger) {
	go func() {
		addr := fmt.Sprintf(":%d", port)
		log.Info("starting ops server", "port", port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("ops server error", "error", err)
		}
	}()
}
