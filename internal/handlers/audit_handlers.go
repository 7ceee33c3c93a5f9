package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinicpulse/internal/common"
	"clinicpulse/internal/models"
	"clinicpulse/internal/services"
)

type AuditHandlers struct {
	audits services.AuditService
}

func NewAuditHandlers(audits services.AuditService) *AuditHandlers {
	return &AuditHandlers{audits: audits}
}

// List handles GET /v1/audits
func (h *AuditHandlers) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	summaries, err := h.audits.List(c.Request().Context(), p)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, summaries)
}

// Get handles GET /v1/audits/:month
func (h *AuditHandlers) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	month, err := common.ParseMonth(c.Param("month"))
	if err != nil {
		return writeError(c, common.ValidationError("%s", err.Error()))
	}

	audit, err := h.audits.Get(c.Request().Context(), p, month)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, audit)
}

// Save handles PUT /v1/audits/:month
func (h *AuditHandlers) Save(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	month, err := common.ParseMonth(c.Param("month"))
	if err != nil {
		return writeError(c, common.ValidationError("%s", err.Error()))
	}

	var audit models.MonthlyAudit
	if err := c.Bind(&audit); err != nil {
		return writeError(c, common.ValidationError("invalid request body"))
	}
	audit.Month = month

	saved, err := h.audits.Save(c.Request().Context(), p, &audit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, saved)
}

// Delete handles DELETE /v1/audits/:month
func (h *AuditHandlers) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	month, err := common.ParseMonth(c.Param("month"))
	if err != nil {
		return writeError(c, common.ValidationError("%s", err.Error()))
	}

	if err := h.audits.Delete(c.Request().Context(), p, month); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Scorecard handles GET /v1/audits/:month/scorecard
func (h *AuditHandlers) Scorecard(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	month, err := common.ParseMonth(c.Param("month"))
	if err != nil {
		return writeError(c, common.ValidationError("%s", err.Error()))
	}

	report, err := h.audits.Scorecard(c.Request().Context(), p, month)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
