// Package rabbitmq содержит обвязку над брокером сообщений: подключение
// с повторами, объявление топологии биллинговых событий, публикацию
// и потребление.
package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Топология биллинговых событий: один direct-exchange, одна очередь
// воркера уведомлений.
const (
	BillingExchange   = "billing"
	BillingRoutingKey = "billing.event"
	BillingQueue      = "notification.billing"
)

// Connect подключается к брокеру с повторами. Брокер поднимается дольше
// сервиса, поэтому первые попытки обычно неуспешны.
func Connect(url string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var conn *amqp.Connection
	var err error

	for range retries {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel открывает канал и объявляет топологию биллинговых событий.
// Объявления идемпотентны, обе стороны вызывают SetupChannel независимо.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		BillingExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = ch.QueueDeclare(
		BillingQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, BillingQueue, err)
	}

	err = ch.QueueBind(BillingQueue, BillingRoutingKey, BillingExchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, BillingQueue, err)
	}

	return ch, nil
}
