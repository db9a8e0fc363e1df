package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	deliverycontext "storefront/internal/delivery/context"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/errors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware error handling middleware
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler.
// Server-side failures are logged in full and rendered without details.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	body := m.render(err, c)
	body.Success = false
	body.RequestID = deliverycontext.RequestID(c.Request().Context())

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(body.Code)
	} else {
		writeErr = c.JSON(body.Code, body)
	}
	if writeErr != nil {
		m.log(c).Error("Failed to write error response", slog.Any("error", writeErr))
	}
}

func (m *ErrorMiddleware) render(err error, c echo.Context) domainerrors.Response {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			m.logFailure(c, err)

			return domainerrors.Response{
				Code:    appErr.HTTPCode(),
				Message: appErr.Message(),
				Error:   &domainerrors.ErrorInfo{Code: appErr.ErrorCode()},
			}
		}

		return domainerrors.Response{
			Code:    appErr.HTTPCode(),
			Message: appErr.Message(),
			Error: &domainerrors.ErrorInfo{
				Code:    appErr.ErrorCode(),
				Details: appErr.Details(),
			},
		}
	}

	// Routing, binding and body limit failures from echo itself.
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
		message := http.StatusText(httpErr.Code)
		if httpErr.Message != nil {
			message = fmt.Sprint(httpErr.Message)
		}

		return domainerrors.Response{
			Code:    httpErr.Code,
			Message: message,
			Error:   &domainerrors.ErrorInfo{Code: "HTTP_ERROR"},
		}
	}

	m.logFailure(c, err)

	return domainerrors.Response{
		Code:    http.StatusInternalServerError,
		Message: domainerrors.ErrInternalError.Message(),
		Error:   &domainerrors.ErrorInfo{Code: domainerrors.ErrInternalError.ErrorCode()},
	}
}

func (m *ErrorMiddleware) logFailure(c echo.Context, err error) {
	m.log(c).Error("Unhandled error",
		slog.String("error", fmt.Sprintf("%+v", err)),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)
}

func (m *ErrorMiddleware) log(c echo.Context) *slog.Logger {
	return deliverycontext.Logger(c.Request().Context(), m.logger)
}
