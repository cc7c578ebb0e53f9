package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// paramID parses a positive integer path parameter, failing fast with 400
// before any service call.
func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// message is the body of responses that carry only a confirmation.
type message struct {
	Message string `json:"message"`
}

// SessionReader exposes the signed-in identity.
type SessionReader interface {
	Current() domain.Session
}

// ErrorBody is the canonical error envelope for all console errors.
type ErrorBody struct {
	Error string `json:"error"`
}
