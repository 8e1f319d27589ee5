package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/pland/internal/logging"
)

func TestNewHTTPMetrics(t *testing.T) {
	m := NewHTTPMetrics(logging.NewNop())
	require.NotNil(t, m)
	assert.NotNil(t, m.meter)

	m = NewHTTPMetrics(nil)
	require.NotNil(t, m)
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(NewHTTPMetrics(logging.NewNop()).Middleware())
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}
