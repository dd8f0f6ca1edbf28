package router

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/cipher/internal/container"
	handlers "github.com/oksasatya/cipher/internal/interface/http"
	"github.com/oksasatya/cipher/internal/interface/middleware"
	"github.com/oksasatya/cipher/internal/router/modules"
)

type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }

// InitModules wires the ops modules from the container. Call once during
// startup, after the container is populated.
func InitModules(r *Registry) {
	logger := container.GetLogger()
	r.Use(middleware.RequestID(), middleware.RealIP())

	var (
		db    handlers.Pinger
		cache handlers.CachePinger
	)
	if p := container.GetProvider(); p != nil {
		db = p
	}
	if rdb := container.GetRedis(); rdb != nil {
		cache = redisPinger{rdb: rdb}
	}
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(db, cache, logger), container.GetOpsLimiter(), logger))
	r.Add(modules.NewDebugModule(container.GetOpsLimiter(), logger))
}
