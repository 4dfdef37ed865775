package rabbitmq

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func TestPublishBillingEvent(t *testing.T) {
	ch := &fakeChannel{}
	pub := NewEventPublisher(ch)

	event := models.BillingEvent{
		Kind:    models.BillingEventSubscribed,
		UserUID: "u-1",
		Email:   "pastor@example.com",
	}
	require.NoError(t, pub.Publish(event))

	assert.Equal(t, BillingExchange, ch.exchange)
	assert.Equal(t, BillingRoutingKey, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, uint8(amqp.Persistent), ch.msg.DeliveryMode)

	var decoded models.BillingEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, event, decoded)
}

func TestPublishReturnsBrokerError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	pub := NewEventPublisher(ch)

	err := pub.Publish(models.BillingEvent{Kind: models.BillingEventCanceled, UserUID: "u-2"})
	assert.Error(t, err)
}
