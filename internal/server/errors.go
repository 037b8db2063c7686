package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

var errMissingDetector = errors.New("server: detector is required")

// JSONErrorHandler returns a custom HTTP error handler that returns JSON responses
// This ensures all errors (including 404s and 429s) have consistent JSON format
func JSONErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		// Don't send response if already committed
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, ErrorResponse{
				Status: "error",
				Error:  http.StatusText(he.Code),
				Code:   he.Code,
			})
			return
		}

		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status: "error",
			Error:  "internal server error",
			Code:   http.StatusInternalServerError,
		})
	}
}
