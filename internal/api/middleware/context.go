package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/identity-hub/identity-service/internal/core/domain"
)

const (
	claimsKey = "auth.claims"
	actorKey  = "auth.actor"
)

// ClaimsFrom returns the token claims stored by Auth.
func ClaimsFrom(c echo.Context) (*domain.TokenClaims, bool) {
	claims, ok := c.Get(claimsKey).(*domain.TokenClaims)
	return claims, ok && claims != nil
}

// ActorFrom returns the actor stored by LoadActor.
func ActorFrom(c echo.Context) (domain.Actor, bool) {
	actor, ok := c.Get(actorKey).(domain.Actor)
	return actor, ok && actor.ID != ""
}

// SetClaims stores verified token claims on the request context.
func SetClaims(c echo.Context, claims *domain.TokenClaims) {
	c.Set(claimsKey, claims)
}

// SetActor stores actor on the request context.
func SetActor(c echo.Context, actor domain.Actor) {
	c.Set(actorKey, actor)
}
