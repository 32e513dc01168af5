package middleware

import (
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/caching"
	"storefront/internal/common"

	"github.com/labstack/echo/v4"
)

// RateLimit allows at most limit requests per client IP within window.
// When the cache is unavailable requests are let through.
func RateLimit(cache caching.CacheService, name string, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cache == nil {
				return next(c)
			}
			key := name + ":" + c.RealIP()
			limited, err := cache.IsRateLimited(c.Request().Context(), key, limit, window)
			if err != nil {
				log.Printf("WARN: rate limit check for %s failed: %v", key, err)
				return next(c)
			}
			if limited {
				c.Response().Header().Set("Retry-After", retryAfter(window))
				return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", "Too many requests, try again later", nil))
			}
			return next(c)
		}
	}
}

// retryAfter renders window as delta-seconds, rounded up and never zero.
func retryAfter(window time.Duration) string {
	seconds := int(math.Ceil(window.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
