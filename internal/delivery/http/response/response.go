// Package response renders the success envelope shared by every handler.
// Failures are rendered by the error middleware.
package response

import (
	"github.com/labstack/echo/v4"
)

// Response unified API response structure
type Response struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`    // HTTP status code
	Message string `json:"message"` // User-friendly message
	Data    any    `json:"data,omitempty"`
}

// Success successful response
func Success(c echo.Context, statusCode int, data any, message string) error {
	if message == "" {
		message = "Success"
	}

	return c.JSON(statusCode, Response{
		Success: true,
		Code:    statusCode,
		Message: message,
		Data:    data,
	})
}
