package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cipher/pkg/response"
)

// Pinger is satisfied by repository.Provider.
type Pinger interface {
	Ping(ctx context.Context) error
	Dialect() string
}

// CachePinger reports whether the cooldown store answers. Optional.
type CachePinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB      Pinger
	Cache   CachePinger
	Logger  logrus.FieldLogger
	Timeout time.Duration
}

func NewHealthHandler(db Pinger, cache CachePinger, logger logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{DB: db, Cache: cache, Logger: logger, Timeout: 2 * time.Second}
}

type healthStatus struct {
	Status  string `json:"status"`
	Backend string `json:"backend,omitempty"`
	// Cache is reported but never fails readiness; cooldowns fail open.
	Cache string `json:"cache,omitempty"`
}

// Healthz reports that the process is up.
func (h *HealthHandler) Healthz(c *gin.Context) {
	response.Success(c, http.StatusOK, healthStatus{Status: "ok"}, "alive")
}

// Readyz pings the backend.
func (h *HealthHandler) Readyz(c *gin.Context) {
	if h.DB == nil {
		response.Error(c, http.StatusServiceUnavailable, "database not configured", nil)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()
	if err := h.DB.Ping(ctx); err != nil {
		h.Logger.WithError(err).WithField("dialect", h.DB.Dialect()).Warn("readiness check failed")
		response.Error(c, http.StatusServiceUnavailable, "database unavailable", healthStatus{Status: "down", Backend: h.DB.Dialect()})
		return
	}
	status := healthStatus{Status: "ok", Backend: h.DB.Dialect()}
	if h.Cache != nil {
		status.Cache = "ok"
		if err := h.Cache.Ping(ctx); err != nil {
			h.Logger.WithError(err).Warn("cache unreachable")
			status.Cache = "down"
		}
	}
	response.Success(c, http.StatusOK, status, "ready")
}
