package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/identity-hub/identity-service/internal/core/ports"
)

// Auth validates the bearer token, rejects revoked tokens and injects the
// verified claims into context.
func Auth(verifier ports.TokenVerifier, revocations ports.RevocationStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(c.Request().Context(), claims.TokenID)
				if err != nil {
					return fmt.Errorf("auth: %w", err)
				}
				if revoked {
					return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
				}
			}

			SetClaims(c, claims)
			return next(c)
		}
	}
}
