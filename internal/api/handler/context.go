package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/upskillai/roadmap-api/internal/core/ports"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: a non-empty user id
// proves the middleware ran.
func ctxClaims(c echo.Context) (ports.TokenClaims, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return ports.TokenClaims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	email, _ := c.Get("email").(string)
	isAdmin, _ := c.Get("is_admin").(bool)

	return ports.TokenClaims{UserID: userID, Email: email, IsAdmin: isAdmin}, nil
}
