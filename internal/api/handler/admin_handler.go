package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/upskillai/roadmap-api/internal/core/ports"
)

// AdminHandler handles the admin-only account management endpoints.
type AdminHandler struct {
	accounts ports.AccountAdminService
}

func NewAdminHandler(accounts ports.AccountAdminService) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

type adminUserResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	IsAdmin        bool   `json:"is_admin"`
	IsBlocked      bool   `json:"is_blocked"`
	IsAgentEnabled bool   `json:"is_agent_enabled"`
	Credits        int    `json:"credits"`
	CreatedAt      string `json:"created_at"`
}

// ListUsers handles GET /api/admin/users.
//
// @Summary      List all accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   adminUserResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}

	accounts, err := h.accounts.ListAccounts(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]adminUserResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, adminUserResponse{
			ID:             a.ID,
			Email:          a.Email,
			IsAdmin:        a.IsAdmin,
			IsBlocked:      a.IsBlocked,
			IsAgentEnabled: a.IsAgentEnabled,
			Credits:        a.Credits,
			CreatedAt:      a.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// BlockUser handles PUT /api/admin/users/:id/block.
//
// @Summary      Block an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/admin/users/{id}/block [put]
func (h *AdminHandler) BlockUser(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.accounts.BlockAccount(c.Request().Context(), claims.UserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User blocked successfully"})
}

// UnblockUser handles PUT /api/admin/users/:id/unblock.
//
// @Summary      Unblock an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/admin/users/{id}/unblock [put]
func (h *AdminHandler) UnblockUser(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.accounts.UnblockAccount(c.Request().Context(), claims.UserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User unblocked successfully"})
}

// DeleteUser handles DELETE /api/admin/users/:id.
//
// @Summary      Delete an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.accounts.DeleteAccount(c.Request().Context(), claims.UserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
