package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinicpulse/internal/common"
	"clinicpulse/internal/services"
)

type InvitationHandlers struct {
	invitations services.InvitationService
}

func NewInvitationHandlers(invitations services.InvitationService) *InvitationHandlers {
	return &InvitationHandlers{invitations: invitations}
}

// Create handles POST /v1/invitations
func (h *InvitationHandlers) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ValidationError("invalid request body"))
	}

	inv, err := h.invitations.Invite(c.Request().Context(), p, req.Email, req.Role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, inv)
}

// List handles GET /v1/invitations
func (h *InvitationHandlers) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	invitations, err := h.invitations.List(c.Request().Context(), p)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, invitations)
}

// Delete handles DELETE /v1/invitations/:id
func (h *InvitationHandlers) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "invitation id")
	if err != nil {
		return writeError(c, common.ValidationError("%s", err.Error()))
	}

	if err := h.invitations.Cancel(c.Request().Context(), p, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
