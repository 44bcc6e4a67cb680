package middleware

import (
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/labstack/echo/v4"
)

// RateLimit limits requests per client IP to rps using tollbooth.
// A non-positive rps disables limiting.
func RateLimit(rps float64) echo.MiddlewareFunc {
	if rps <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	lmt := tollbooth.NewLimiter(rps, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetIPLookups([]string{"RemoteAddr", "X-Forwarded-For", "X-Real-IP"})
	lmt.SetMessage("too many requests, please try again later")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if httpErr := tollbooth.LimitByRequest(lmt, c.Response(), c.Request()); httpErr != nil {
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.Message)
			}
			return next(c)
		}
	}
}
