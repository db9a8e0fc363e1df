package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/config"

	"github.com/labstack/echo/v4"
)

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Cookie:    &config.CookieConfig{AccessTokenName: config.DefaultAccessCookieName},
		RateLimit: &config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2},
	}

	return cfg
}

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}

	return slog.New(slog.NewJSONHandler(buf, nil)), buf
}

func newContext(t *testing.T, req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	rec := httptest.NewRecorder()

	return echo.New().NewContext(req, rec), rec
}
