package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/cipher/internal/interface/http"
	"github.com/oksasatya/cipher/internal/interface/middleware"
)

// HealthModule serves GET /healthz and GET /readyz. Probes from private
// networks bypass the limiter.
type HealthModule struct {
	Handler *handlers.HealthHandler
	Limiter *middleware.Cooldown
	Logger  logrus.FieldLogger
}

func NewHealthModule(h *handlers.HealthHandler, limiter *middleware.Cooldown, logger logrus.FieldLogger) *HealthModule {
	return &HealthModule{Handler: h, Limiter: limiter, Logger: logger}
}

func (m *HealthModule) Name() string { return "health" }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Limiter, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP(), m.Logger)
	rg.GET("/healthz", m.Handler.Healthz)
	rg.GET("/readyz", rl, m.Handler.Readyz)
}
