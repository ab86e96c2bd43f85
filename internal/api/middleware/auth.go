package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/upskillai/roadmap-api/internal/api/metrics"
	"github.com/upskillai/roadmap-api/internal/core/ports"
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	VerifyToken(token string) (ports.TokenClaims, error)
}

// bearerPrefix is matched literally, including case.
const bearerPrefix = "Bearer "

// Auth validates the bearer token and injects claims into context. The
// header must start with exactly "Bearer "; anything else is rejected
// before the verifier runs.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				metrics.AuthRejectionsTotal.WithLabelValues("missing_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}

			if !strings.HasPrefix(authHeader, bearerPrefix) {
				metrics.AuthRejectionsTotal.WithLabelValues("bad_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}

			claims, err := verifier.VerifyToken(authHeader[len(bearerPrefix):])
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("is_admin", claims.IsAdmin)

			return next(c)
		}
	}
}
