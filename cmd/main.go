package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/cipher/config"
	"github.com/oksasatya/cipher/internal/application"
	"github.com/oksasatya/cipher/internal/container"
	"github.com/oksasatya/cipher/internal/editor"
	"github.com/oksasatya/cipher/internal/infrastructure/database"
	"github.com/oksasatya/cipher/internal/interface/discord"
	"github.com/oksasatya/cipher/internal/interface/middleware"
	"github.com/oksasatya/cipher/internal/router"
	"github.com/oksasatya/cipher/pkg/helpers"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		log.Printf("dotenv: %v", err)
	}

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	provider, err := database.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = provider.Close() }()

	container.SetLogger(logger)
	container.SetProvider(provider)

	// Redis is optional; without it cooldowns and rate limits are off
	var editCooldown *middleware.Cooldown
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			logger.WithError(err).Warn("redis unreachable, commands fail open until it is back")
		}
		container.SetRedis(rdb)
		container.SetOpsLimiter(middleware.NewCooldown(rdb, 120, time.Minute))
		editCooldown = middleware.NewCooldown(rdb, cfg.EditCooldownLimit, cfg.EditCooldownWindow)
	}

	var publisher application.EventPublisher
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQProfileQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, profile events disabled")
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	profiles := application.NewProfileService(provider, publisher, logger, editor.WithTimeout(cfg.EditSessionTimeout))
	bot, err := discord.New(cfg.BotToken, discord.Deps{
		Profiles: profiles,
		Staff:    application.NewStaffService(provider),
		Cooldown: editCooldown,
		Logger:   logger,
		GuildIDs: cfg.GuildIDs(),
		About: discord.About{
			Title:         cfg.AboutTitle,
			Description:   cfg.AboutDescription,
			SourceCodeURL: cfg.SourceCodeURL,
		},
	})
	if err != nil {
		logger.Fatalf("failed to create discord bot: %v", err)
	}
	if err := bot.Open(); err != nil {
		logger.Fatalf("failed to connect to discord: %v", err)
	}

	var srv *http.Server
	if cfg.HTTPAddr != "" {
		r := gin.New()
		r.Use(gin.Recovery())
		if cfg.IsDevelopment() {
			r.Use(gin.Logger())
		}
		reg := router.NewRegistry(r)
		router.InitModules(reg)
		reg.RegisterAll()
		logger.WithField("modules", reg.Names()).Debug("ops routes registered")

		srv = &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Infof("ops server starting on %s", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatalf("listen: %s\n", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := bot.Close(); err != nil {
		logger.WithError(err).Warn("discord close failed")
	}
	if srv != nil {
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Errorf("server forced to shutdown: %v", err)
		}
	}
	logger.Info("exited properly")
}
