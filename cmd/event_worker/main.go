package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cipher/config"
	"github.com/oksasatya/cipher/internal/application"
	"github.com/oksasatya/cipher/pkg/helpers"
)

// Consumes profile events and writes them to the audit log.
func main() {
	_ = config.LoadDotenv()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-events", cfg.Env, cfg.LogLevel)
	if cfg.RabbitMQURL == "" || cfg.RabbitMQProfileQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQProfileQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQProfileQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			ev, err := application.DecodeProfileEvent(msg.Body)
			if err != nil {
				helpers.LogError(logger, "dropping bad message", err, logrus.Fields{"delivery_tag": msg.DeliveryTag})
				_ = msg.Nack(false, false)
				continue
			}
			logger.WithFields(logrus.Fields{
				"event":           ev.Type,
				"discord_user_id": ev.DiscordUserID,
				"profile_id":      ev.ProfileID,
				"occurred_at":     ev.OccurredAt,
			}).Info("profile event")
			_ = msg.Ack(false)
		}
		close(done)
	}()

	logger.Infof("event worker listening on queue=%s", cfg.RabbitMQProfileQueue)
	<-stop
	logger.Info("shutting down...")
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
