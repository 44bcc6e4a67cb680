package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identity-hub/identity-service/internal/api/middleware"
	"github.com/identity-hub/identity-service/internal/core/domain"
)

// ctxActor extracts the actor injected by the LoadActor middleware. Its
// absence means the route was registered without authentication.
func ctxActor(c echo.Context) (domain.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return actor, nil
}

func ctxClaims(c echo.Context) (*domain.TokenClaims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
