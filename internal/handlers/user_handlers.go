package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"clinicpulse/internal/common"
	"clinicpulse/internal/services"
)

type UserHandlers struct {
	users services.UserService
}

func NewUserHandlers(users services.UserService) *UserHandlers {
	return &UserHandlers{users: users}
}

// Me handles GET /v1/me
func (h *UserHandlers) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	user, err := h.users.Me(c.Request().Context(), p)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// List handles GET /v1/users
func (h *UserHandlers) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	limit, offset := pagination(c)
	users, err := h.users.List(c.Request().Context(), p, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// SetActive handles PATCH /v1/users/:id/active
func (h *UserHandlers) SetActive(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "user id")
	if err != nil {
		return writeError(c, common.ValidationError("%s", err.Error()))
	}

	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil || req.Active == nil {
		return writeError(c, common.ValidationError("active is required"))
	}

	user, err := h.users.SetActive(c.Request().Context(), p, id, *req.Active)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func pagination(c echo.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}
