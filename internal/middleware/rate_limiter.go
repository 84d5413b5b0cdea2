package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// UpgradeRateLimiter limits each IP to bursts of 20 connection attempts.
// It guards the WebSocket upgrade endpoint against reconnect storms; joined
// connections are unaffected since they hold one long-lived request.
func UpgradeRateLimiter() echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		// A simple in-memory store; the registry is single-process anyway.
		Store: middleware.NewRateLimiterMemoryStore(20),

		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.String(http.StatusTooManyRequests, "too many connection attempts, try again later")
		},
	}
	return middleware.RateLimiterWithConfig(config)
}
