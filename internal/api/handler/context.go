package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/task-tracker/internal/api/middleware"
	"github.com/99minutos/task-tracker/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware. Its
// absence means the route was mounted without the gate; fail closed with 401.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := c.Get(middleware.IdentityKey).(domain.Identity)
	if !ok || identity.ID == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthorized.Error())
	}
	return identity, nil
}
