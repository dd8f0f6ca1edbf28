package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }
func (f fakePinger) Dialect() string            { return "sqlite" }

type envelope struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Status  string `json:"status"`
		Backend string `json:"backend"`
		Cache   string `json:"cache"`
	} `json:"data"`
}

func serve(t *testing.T, h *HealthHandler, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHealthz(t *testing.T) {
	logger, _ := test.NewNullLogger()
	w, body := serve(t, NewHealthHandler(nil, nil, logger), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "ok", body.Data.Status)
}

func TestReadyz(t *testing.T) {
	logger, hook := test.NewNullLogger()

	w, body := serve(t, NewHealthHandler(fakePinger{}, nil, logger), "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sqlite", body.Data.Backend)

	w, body = serve(t, NewHealthHandler(fakePinger{err: errors.New("down")}, nil, logger), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "database unavailable", body.Message)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "readiness check failed", hook.LastEntry().Message)

	w, _ = serve(t, NewHealthHandler(nil, nil, logger), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadyzReportsCacheWithoutFailing(t *testing.T) {
	logger, _ := test.NewNullLogger()
	w, body := serve(t, NewHealthHandler(fakePinger{}, fakePinger{err: errors.New("refused")}, logger), "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "down", body.Data.Cache)

	_, body = serve(t, NewHealthHandler(fakePinger{}, fakePinger{}, logger), "/readyz")
	assert.Equal(t, "ok", body.Data.Cache)
}
