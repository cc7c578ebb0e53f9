package mockapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Rejections shared by several routes. They carry the backend's wording.
var (
	errProductNotFound   = echo.NewHTTPError(http.StatusNotFound, "Product not found")
	errBadLine           = echo.NewHTTPError(http.StatusBadRequest, "Invalid size or quantity")
	errInsufficientStock = echo.NewHTTPError(http.StatusBadRequest, "Insufficient stock")
	errUnauthorized      = echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
	errNoToken           = echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
	errAdminOnly         = echo.NewHTTPError(http.StatusForbidden, "Access denied. Admins only.")
	errInvalidPayload    = echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
)

// messageBody is the error envelope the storefront backend answers with.
type messageBody struct {
	Message string `json:"message"`
}

// errorHandler renders every error as {"message": "..."}.
func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "Server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code, msg = he.Code, fmt.Sprintf("%v", he.Message)
		} else {
			log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		}
		_ = c.JSON(code, messageBody{Message: msg})
	}
}

func fail(code int, msg string) *echo.HTTPError {
	return echo.NewHTTPError(code, msg)
}
