package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// Context keys set by RequireSession.
const (
	UserKey = "user"
	RoleKey = "role"
)

// SessionReader exposes the signed-in identity.
type SessionReader interface {
	Current() domain.Session
}

// RequireSession rejects requests while the Session Store is anonymous and
// injects the user and role into the context.
func RequireSession(sessions SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := sessions.Current()
			if !sess.IsAuthenticated() {
				return domain.ErrNotAuthenticated
			}
			c.Set(UserKey, sess.User)
			c.Set(RoleKey, sess.User.Role)
			return next(c)
		}
	}
}
