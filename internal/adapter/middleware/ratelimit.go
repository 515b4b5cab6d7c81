package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// storeTimeout bounds every Redis round-trip so a slow store cannot stall requests.
const storeTimeout = 500 * time.Millisecond

type RateLimitConfig struct {
	// Limit is the number of requests allowed per client per Window.
	Limit  int
	Window time.Duration
	Prefix string
}

// RateLimit is a fixed-window limiter keyed by client IP. A nil client
// disables it. Store errors let the request through.
func RateLimit(rdb *redis.Client, cfg RateLimitConfig) echo.MiddlewareFunc {
	if rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := nowUTC()
			start := now.Truncate(cfg.Window)
			key := buildKey(cfg.Prefix, c.RealIP(), start)

			ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
			defer cancel()
			n, err := hit(ctx, rdb, key, cfg.Window)
			if err != nil {
				c.Logger().Warnf("ratelimit: redis error for key=%s: %v", key, err)
				return next(c)
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				secs := int(math.Ceil(start.Add(cfg.Window).Sub(now).Seconds()))
				if secs < 1 {
					secs = 1
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
