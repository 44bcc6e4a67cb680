package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identity-hub/identity-service/internal/core/domain"
)

// ActorResolver loads the current role set of a user.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID string) (domain.Actor, error)
}

// LoadActor resolves the token subject into an Actor. Must run after Auth.
// A token whose subject no longer exists is rejected.
func LoadActor(resolver ActorResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			actor, err := resolver.ResolveActor(c.Request().Context(), claims.Subject)
			if errors.Is(err, domain.ErrUserNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "account no longer exists")
			}
			if err != nil {
				return err
			}

			SetActor(c, actor)
			return next(c)
		}
	}
}
