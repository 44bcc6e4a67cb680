package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identity-hub/identity-service/internal/core/domain"
)

// RBAC lets the request through when the actor holds any of allowedRoles.
// Must run after LoadActor.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, _ := ActorFrom(c)
			for _, r := range allowedRoles {
				if actor.HasRole(r) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
