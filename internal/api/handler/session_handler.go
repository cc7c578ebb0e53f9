package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/service"
)

// SessionManager is the Session Store surface the console drives.
type SessionManager interface {
	Current() domain.Session
	State() domain.SessionState
	Login(ctx context.Context, email, password string) (*domain.User, error)
	RegisterAndLogin(ctx context.Context, form service.RegisterForm) (*domain.User, error)
	Logout(ctx context.Context)
}

type SessionHandler struct {
	sessions SessionManager
}

func NewSessionHandler(sessions SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Password        string      `json:"password"`
	ConfirmPassword string      `json:"confirmPassword"`
	Role            domain.Role `json:"role"`
}

// sessionResponse never carries the token; the console keeps it server side.
type sessionResponse struct {
	State         domain.SessionState `json:"state"`
	Authenticated bool                `json:"authenticated"`
	Admin         bool                `json:"admin"`
	User          *domain.User        `json:"user,omitempty"`
	ExpiresAt     *time.Time          `json:"expiresAt,omitempty"`
}

func (h *SessionHandler) snapshot() sessionResponse {
	sess := h.sessions.Current()
	resp := sessionResponse{
		State:         h.sessions.State(),
		Authenticated: sess.IsAuthenticated(),
		Admin:         sess.IsAdmin(),
		User:          sess.User,
	}
	if !sess.ExpiresAt.IsZero() {
		exp := sess.ExpiresAt
		resp.ExpiresAt = &exp
	}
	return resp
}

// Get reports the current session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /v1/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.snapshot())
}

// Login authenticates against the backend and persists the session.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  ErrorBody
// @Failure      401   {object}  ErrorBody
// @Router       /v1/session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if _, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.snapshot())
}

// Register creates an account and signs in with it.
//
// @Summary      Register and login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  ErrorBody
// @Router       /v1/session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	_, err := h.sessions.RegisterAndLogin(c.Request().Context(), service.RegisterForm{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Confirm:  req.ConfirmPassword,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h.snapshot())
}

// Logout clears the session.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /v1/session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, h.snapshot())
}
