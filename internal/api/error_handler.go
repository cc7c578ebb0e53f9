package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pulsepr/storefront/internal/api/handler"
	"github.com/pulsepr/storefront/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Passes backend 4xx rejections through with the backend's message.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handler.ErrorBody{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Error()
	}
	var ae *domain.AuthenticationError
	if errors.As(err, &ae) {
		return http.StatusUnauthorized, domain.UserMessage(err, "Login failed")
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "login required"
	case errors.Is(err, domain.ErrAuthorizationExpired):
		return http.StatusUnauthorized, "session expired"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, domain.ErrAttemptNotFound):
		return http.StatusNotFound, "checkout attempt not found"
	case errors.Is(err, domain.ErrSessionEnded):
		return http.StatusConflict, "session ended during checkout"
	case errors.Is(err, domain.ErrCheckoutInProgress):
		return http.StatusConflict, "checkout already in progress"
	case errors.Is(err, domain.ErrAlreadyVerified):
		return http.StatusConflict, "payment already submitted for verification"
	case errors.Is(err, domain.ErrOutOfStock):
		return http.StatusConflict, "out of stock"
	case errors.Is(err, domain.ErrVerificationFailed):
		return http.StatusPaymentRequired, "payment verification failed"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, err.Error()
	}

	var httpErr *domain.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status >= 400 && httpErr.Status < 500 {
		return httpErr.Status, domain.UserMessage(err, http.StatusText(httpErr.Status))
	}
	var netErr *domain.NetworkError
	if errors.As(err, &netErr) {
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend unreachable")
		return http.StatusServiceUnavailable, "backend unavailable"
	}
	if httpErr != nil {
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend error")
		return http.StatusBadGateway, "backend error"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
