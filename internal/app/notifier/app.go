// Package notifier собирает воркер уведомлений: подключение к брокеру,
// SMTP-транспорт и потребителя очереди биллинговых событий.
package notifier

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/config"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/rabbitmq"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/smtp"
	notifierservice "github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/notifier"
)

// App — собранный воркер уведомлений.
type App struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	service *notifierservice.Service
	logger  *slog.Logger
}

// New собирает воркер из конфигурации.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.RabbitURL, cfg.RabbitMQ.RabbitRetries, cfg.RabbitMQ.RabbitDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	service := notifierservice.New(transport, logger)

	return &App{
		conn:    conn,
		ch:      ch,
		service: service,
		logger:  logger,
	}, nil
}

// Run запускает потребителя и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.Consume(ctx, a.ch, rabbitmq.BillingQueue, a.service.HandleBillingEvent)
	if err != nil {
		a.logger.Error("failed to start billing queue consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notifier shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
