package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dailyskills/marketplace/internal/api/middleware"
	"github.com/dailyskills/marketplace/internal/core/domain"
)

// ctxClaims extracts the identity injected by the Auth middleware and
// fails fast when it is missing, which means the route was mounted without
// the middleware.
func ctxClaims(c echo.Context) (userID string, role domain.Role, err error) {
	userID, _ = c.Get(middleware.KeyUserID).(string)
	role, _ = c.Get(middleware.KeyRole).(domain.Role)
	if userID == "" || !role.Valid() {
		return "", domain.RoleUnset, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, role, nil
}

// bindAndValidate decodes the request body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
