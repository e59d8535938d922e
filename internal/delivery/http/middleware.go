package http

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
	"timetracker/internal/config"
	metrics "timetracker/internal/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const userIDKey = "userID"

type AuthUsecase interface {
	// VerifyUser verifies the access token and returns the user ID.
	VerifyUser(token string) (userID uuid.UUID, err error)

	// IsAdmin reports whether the user holds the admin flag.
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

func AuthMiddleware(authUsecase AuthUsecase) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {

			header := c.Request().Header.Get("authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			accessToken := strings.TrimPrefix(header, "Bearer ")

			userID, err := authUsecase.VerifyUser(accessToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			if userID == uuid.Nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware(authUsecase AuthUsecase) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(userIDKey).(uuid.UUID)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			isAdmin, err := authUsecase.IsAdmin(c.Request().Context(), userID)
			if err != nil {
				return err
			}
			if !isAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
			}
			return next(c)
		}
	}
}

// ClientIPExtractor decides what c.RealIP() returns. The client IP is part of
// the device check, so forwarding headers are only honoured when the direct
// peer is one of trustedProxies.
func ClientIPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect(), nil
	}

	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, proxy := range trustedProxies {
		proxy = strings.TrimSpace(proxy)
		if !strings.Contains(proxy, "/") {
			ip := net.ParseIP(proxy)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", proxy)
			}
			if ip.To4() != nil {
				proxy += "/32"
			} else {
				proxy += "/128"
			}
		}
		_, ipNet, err := net.ParseCIDR(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", proxy, err)
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...), nil
}

// MetricsMiddleware records request duration by route template and counts 5xx responses.
func MetricsMiddleware(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			if status >= http.StatusInternalServerError {
				m.TotalErrors.WithLabelValues("http_" + strconv.Itoa(status)).Inc()
			}

			m.RequestDuration.
				WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// RateLimitMiddleware is a fixed-window limiter keyed by client IP and route.
// Redis failures let the request through. A window left without an expiry,
// for example after a failed EXPIRE, gets one on its next hit.
func RateLimitMiddleware(client *redis.Client, cfg *config.RateLimiterConfig, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := "ratelimit:" + c.Path() + ":" + c.RealIP()

			var (
				incr *redis.IntCmd
				ttl  *redis.DurationCmd
			)
			if _, err := client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
				incr = pipe.Incr(ctx, key)
				ttl = pipe.TTL(ctx, key)
				return nil
			}); err != nil {
				logger.Error("rate limiter unavailable", slog.String("error", err.Error()))
				return next(c)
			}

			remaining := ttl.Val()
			if remaining < 0 {
				if err := client.Expire(ctx, key, cfg.Window).Err(); err != nil {
					logger.Error("rate limiter expire failed", slog.String("error", err.Error()))
				}
				remaining = cfg.Window
			}

			if incr.Val() > int64(cfg.Limit) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(max(1, int(remaining.Seconds()))))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too Many Requests")
			}
			return next(c)
		}
	}
}
