package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/metrics"
)

// TokenSource yields the current bearer credential, "" when anonymous.
type TokenSource interface {
	Token() string
}

// SessionInvalidator drops the session after the backend refused it.
type SessionInvalidator interface {
	Invalidate(ctx context.Context)
}

// BearerAuth stamps Authorization: Bearer <token>. Without a token the
// header is left out entirely.
func BearerAuth(src TokenSource) RequestInterceptor {
	return func(req *http.Request) error {
		if tok := src.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		} else {
			req.Header.Del("Authorization")
		}
		return nil
	}
}

// DefaultLoginViews are the views a 401 never redirects away from.
var DefaultLoginViews = []string{ports.ViewLogin}

// UnauthorizedRedirect ends the session on any 401 and sends the navigator to
// the login view, unless the current view is already one of allow.
func UnauthorizedRedirect(sessions SessionInvalidator, nav ports.Navigator, allow []string, log zerolog.Logger) ResponseInterceptor {
	return func(req *http.Request, resp *http.Response) {
		if resp.StatusCode != http.StatusUnauthorized {
			return
		}
		metrics.UnauthorizedTotal.Inc()
		sessions.Invalidate(req.Context())

		current := nav.Current()
		for _, view := range allow {
			if strings.HasPrefix(current, view) {
				return
			}
		}
		log.Info().Str("from", current).Str("path", req.URL.Path).Msg("session expired, redirecting to login")
		nav.Navigate(ports.ViewLogin)
	}
}
