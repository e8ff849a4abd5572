package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestNewHandler_AllChecksPass(t *testing.T) {
	h := NewHandler("api", Check{Name: "designer", Probe: func(ctx context.Context) error { return nil }})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "api", body.Service)
	assert.Equal(t, map[string]string{"designer": "ok"}, body.Checks)
}

func TestNewHandler_FailingCheckDegrades(t *testing.T) {
	h := NewHandler("generator",
		Check{Name: "rabbitmq", Probe: func(ctx context.Context) error { return errors.New("connection closed") }},
		Check{Name: "designer", Probe: func(ctx context.Context) error { return nil }},
	)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "connection closed", body.Checks["rabbitmq"])
	assert.Equal(t, "ok", body.Checks["designer"])
}
