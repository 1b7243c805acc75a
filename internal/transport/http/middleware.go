package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
	"github.com/atlasimmo/atlas-immo-api/internal/service"
	"github.com/atlasimmo/atlas-immo-api/internal/util"
)

const (
	contextClaimsKey = "auth.claims"
	contextTokenKey  = "auth.token"
)

// RequireAuth validates the bearer token and stores its claims in the request
// context. Token verification is pure signature and expiry checking; no
// repository call happens per request.
func RequireAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if strings.TrimSpace(authHeader) == "" {
				return c.JSON(http.StatusUnauthorized, util.Fail("missing authorization header"))
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, util.Fail("invalid authorization header"))
			}
			token := strings.TrimSpace(parts[1])
			claims, err := auth.Authenticate(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, util.Fail("invalid or expired token"))
			}
			c.Set(contextClaimsKey, claims)
			c.Set(contextTokenKey, token)
			return next(c)
		}
	}
}

// RequireAdmin gates a route on the role carried by the token claims.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := CurrentClaims(c)
			if !ok || claims == nil {
				return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
			}
			if claims.Role != domain.RoleAdmin {
				return c.JSON(http.StatusForbidden, util.Fail("admin privileges required"))
			}
			return next(c)
		}
	}
}

func CurrentClaims(c echo.Context) (*util.Claims, bool) {
	claims, ok := c.Get(contextClaimsKey).(*util.Claims)
	return claims, ok
}

func isAdminRequest(c echo.Context) bool {
	claims, ok := CurrentClaims(c)
	return ok && claims != nil && claims.Role == domain.RoleAdmin
}
