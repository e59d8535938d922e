package http

import (
	"context"
	"log/slog"
	"net/http"
	"timetracker/internal/config"
	adminHandler "timetracker/internal/delivery/http/admin_handler"
	authHandler "timetracker/internal/delivery/http/auth_handler"
	timetrackerHandler "timetracker/internal/delivery/http/timetracker_handler"
	metrics "timetracker/internal/metrics"

	"github.com/labstack/echo/v4"
	middleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Auth        *authHandler.AuthHandler
	TimeTracker *timetrackerHandler.TimeTrackerHandler
	Admin       *adminHandler.AdminHandler
}

func MapRoutes(
	e *echo.Echo,
	handlers Handlers,
	authUsecase AuthUsecase,
	logger *slog.Logger,
	rateLimiterConfig config.RateLimiterConfig,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	client *redis.Client,
	health echo.HandlerFunc,
) {
	// Middlewares
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper:   middleware.DefaultSkipper,
		LogURI:    true,
		LogMethod: true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {

			if v.Error != nil {
				logger.Error("HTTP request error",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"error", v.Error,
				)
				return nil
			}

			logger.Info("HTTP request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)

			return nil
		},
	},
	))
	e.Use(MetricsMiddleware(m))

	auth := AuthMiddleware(authUsecase)
	limited := RateLimitMiddleware(client, &rateLimiterConfig, logger)

	//routes
	e.GET("/healthz", health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	e.POST("/register", handlers.Auth.Register, limited)
	e.POST("/login", handlers.Auth.Login, limited)

	e.GET("/dashboard", handlers.TimeTracker.Dashboard, auth)
	tt := e.Group("/time-tracker", auth)
	tt.GET("", handlers.TimeTracker.Sessions)
	tt.POST("/clock-in", handlers.TimeTracker.ClockIn, limited)
	tt.POST("/clock-out", handlers.TimeTracker.ClockOut, limited)

	adm := e.Group("/admin", auth, AdminMiddleware(authUsecase))
	adm.GET("/dashboard", handlers.Admin.Dashboard)
	adm.GET("/users", handlers.Admin.Users)
	adm.POST("/users", handlers.Admin.CreateUser)
	adm.GET("/users/:id", handlers.Admin.User)
	adm.PUT("/users/:id", handlers.Admin.UpdateUser)
	adm.DELETE("/users/:id", handlers.Admin.DeleteUser)
	adm.GET("/users/:id/time-tracker", handlers.Admin.UserTimeTracker)
	adm.GET("/users/:id/time-tracker/range", handlers.Admin.UserTimeTrackerRange)
	adm.GET("/users/:id/sessions", handlers.Admin.UserSessions)
	adm.GET("/sessions", handlers.Admin.Sessions)
	adm.PUT("/sessions/:id", handlers.Admin.UpdateSession)
	adm.DELETE("/sessions/:id", handlers.Admin.DeleteSession)
	adm.GET("/stats", handlers.Admin.Stats)

	logger.Info("HTTP routes mapped successfully")
}

// HealthHandler answers 200 while ping succeeds and 503 otherwise.
func HealthHandler(ping func(ctx context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
