package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	deliverycontext "storefront/internal/delivery/context"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMiddleware_HandleHTTPError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantDetails string
		wantLogged  bool
	}{
		{
			name:        "client error keeps details",
			err:         errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("email is required")),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "VALIDATION_FAILED",
			wantDetails: "email is required",
		},
		{
			name:       "wrapped duplicate",
			err:        errors.Wrap(domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists"), "register"),
			wantStatus: http.StatusConflict,
			wantCode:   "USER_ALREADY_EXISTS",
		},
		{
			name:       "rate limited",
			err:        domainerrors.ErrRateLimited,
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "RATE_LIMITED",
		},
		{
			name:       "store failure hides details",
			err:        domainerrors.NewDatabaseExecuteError(errors.New("dial tcp 10.0.0.7:5432"), "find user by email"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "DATABASE_EXECUTE_FAILED",
			wantLogged: true,
		},
		{
			name:       "unknown error",
			err:        errors.New("nil pointer in secret place"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantLogged: true,
		},
		{
			name:       "echo not found",
			err:        echo.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "HTTP_ERROR",
		},
		{
			name:       "echo server error is internal",
			err:        echo.NewHTTPError(http.StatusBadGateway, "upstream 10.0.0.9 refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantLogged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newBufferLogger()
			m := NewErrorMiddleware(logger)

			req := httptest.NewRequest(http.MethodPost, "/user/login", nil)
			req = req.WithContext(deliverycontext.WithRequestID(req.Context(), "req-42"))
			c, rec := newContext(t, req)

			m.HandleHTTPError(tt.err, c)

			require.Equal(t, tt.wantStatus, rec.Code)

			var body domainerrors.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantStatus, body.Code)
			assert.Equal(t, "req-42", body.RequestID)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantDetails, body.Error.Details)

			if tt.wantStatus >= http.StatusInternalServerError {
				assert.NotContains(t, rec.Body.String(), "10.0.0.")
				assert.NotContains(t, rec.Body.String(), "secret place")
			}
			assert.Equal(t, tt.wantLogged, logs.Len() > 0)
		})
	}
}

func TestErrorMiddleware_CommittedResponse(t *testing.T) {
	logger, _ := newBufferLogger()
	m := NewErrorMiddleware(logger)

	c, rec := newContext(t, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, c.String(http.StatusOK, "done"))

	m.HandleHTTPError(errors.New("late failure"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
