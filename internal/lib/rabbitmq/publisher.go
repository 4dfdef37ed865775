package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
)

// channelPublisher — минимальная поверхность amqp.Channel для публикации.
type channelPublisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// EventPublisher публикует биллинговые события в брокер.
type EventPublisher struct {
	ch channelPublisher
}

// NewEventPublisher создает EventPublisher поверх открытого канала.
func NewEventPublisher(ch channelPublisher) *EventPublisher {
	return &EventPublisher{ch: ch}
}

// Publish сериализует событие и отправляет его персистентным сообщением.
func (p *EventPublisher) Publish(event models.BillingEvent) error {
	const op = "rabbitmq.Publish"

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		BillingExchange,
		BillingRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
