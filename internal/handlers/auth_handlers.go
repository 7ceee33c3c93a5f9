package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinicpulse/internal/common"
	"clinicpulse/internal/services"
)

type AuthHandlers struct {
	auth services.AuthService
}

func NewAuthHandlers(auth services.AuthService) *AuthHandlers {
	return &AuthHandlers{auth: auth}
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req services.SignupRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ValidationError("invalid request body"))
	}

	session, err := h.auth.Signup(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

// Login handles POST /v1/auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ValidationError("invalid request body"))
	}

	session, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// ForgotPassword handles POST /v1/auth/forgot-password. The response is the
// same whether or not the email has an account.
func (h *AuthHandlers) ForgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ValidationError("invalid request body"))
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "if the email has an account, a reset link has been sent",
	})
}

// ResetPassword handles POST /v1/auth/reset-password
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ValidationError("invalid request body"))
	}

	if err := h.auth.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "password updated"})
}

// AcceptInvitation handles POST /v1/auth/accept-invitation
func (h *AuthHandlers) AcceptInvitation(c echo.Context) error {
	var req struct {
		Token    string `json:"token"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ValidationError("invalid request body"))
	}

	session, err := h.auth.AcceptInvitation(c.Request().Context(), req.Token, req.Name, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}
