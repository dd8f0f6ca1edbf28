package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cipher/internal/interface/middleware"
)

// DebugModule exposes expvar, including the edit session counters.
type DebugModule struct {
	Limiter *middleware.Cooldown
	Logger  logrus.FieldLogger
}

func NewDebugModule(limiter *middleware.Cooldown, logger logrus.FieldLogger) *DebugModule {
	return &DebugModule{Limiter: limiter, Logger: logger}
}

func (m *DebugModule) Name() string { return "debug" }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Limiter, middleware.KeyByIP(), middleware.AllowPrivateIP(), m.Logger)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
