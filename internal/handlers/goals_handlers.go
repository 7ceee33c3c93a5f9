package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinicpulse/internal/common"
	"clinicpulse/internal/services"
)

type GoalsHandlers struct {
	goals services.GoalsService
}

func NewGoalsHandlers(goals services.GoalsService) *GoalsHandlers {
	return &GoalsHandlers{goals: goals}
}

// Get handles GET /v1/goals
func (h *GoalsHandlers) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	goals, err := h.goals.Get(c.Request().Context(), p)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, goals)
}

// Update handles PUT /v1/goals
func (h *GoalsHandlers) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	var req services.UpdateGoalsRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ValidationError("invalid request body"))
	}

	goals, err := h.goals.Update(c.Request().Context(), p, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, goals)
}
