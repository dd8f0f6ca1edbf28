package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cipher/internal/domain/repository"
	"github.com/oksasatya/cipher/internal/interface/middleware"
)

// app-level container to share constructed components with the router.
// Optional components (redis, limiter) stay nil when unconfigured.

var (
	logger      *logrus.Logger
	provider    repository.Provider
	redisClient *redis.Client
	opsLimiter  *middleware.Cooldown
)

func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger != nil {
		return logger
	}
	return logrus.StandardLogger()
}
func SetProvider(p repository.Provider) { provider = p }
func GetProvider() repository.Provider  { return provider }
func SetRedis(r *redis.Client)          { redisClient = r }
func GetRedis() *redis.Client           { return redisClient }

func SetOpsLimiter(l *middleware.Cooldown) { opsLimiter = l }
func GetOpsLimiter() *middleware.Cooldown  { return opsLimiter }
