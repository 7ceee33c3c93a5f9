package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinicpulse/internal/services"
)

type ActivityHandlers struct {
	activity services.ActivityService
}

func NewActivityHandlers(activity services.ActivityService) *ActivityHandlers {
	return &ActivityHandlers{activity: activity}
}

// List handles GET /v1/activity
func (h *ActivityHandlers) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	limit, offset := pagination(c)
	entries, err := h.activity.List(c.Request().Context(), p, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}
