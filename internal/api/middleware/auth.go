package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
)

// Context keys set by Auth.
const (
	KeyUserID = "user_id"
	KeyRole   = "role"
	KeyEmail  = "email"
	KeyName   = "name"
	KeyToken  = "token"
)

// TokenVerifier checks a bearer token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*ports.TokenClaims, error)
}

// Auth validates the bearer token and injects its claims into the context.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
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

			claims, err := verifier.Verify(c.Request().Context(), parts[1])
			if err != nil {
				if errors.Is(err, domain.ErrTokenRevoked) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(KeyUserID, claims.UserID)
			c.Set(KeyRole, claims.Role)
			c.Set(KeyEmail, claims.Email)
			c.Set(KeyName, claims.Name)
			c.Set(KeyToken, parts[1])

			return next(c)
		}
	}
}
