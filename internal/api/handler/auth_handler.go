package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/task-tracker/internal/api/metrics"
	"github.com/99minutos/task-tracker/internal/core/domain"
	"github.com/99minutos/task-tracker/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account and returns a bearer token for it.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
		return err
	}

	session, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	metrics.AuthAttemptsTotal.WithLabelValues("register", authResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toSessionResponse(session))
}

// Login authenticates a user and returns a fresh bearer token.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	metrics.AuthAttemptsTotal.WithLabelValues("login", authResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// Me returns the identity attached by the auth gate.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  identityResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/users/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toIdentityResponse(identity))
}

func authResult(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, domain.ErrAccountExists):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "unauthorized"
	default:
		return "error"
	}
}
