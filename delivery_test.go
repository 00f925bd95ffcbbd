package amqp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryFromDeliverCarriesPropertiesAndEnvelope(t *testing.T) {
	ch := &Channel{id: 4}
	props := properties{
		ContentType:   "text/plain",
		CorrelationId: "corr-1",
		Timestamp:     time.Unix(1690000000, 0),
	}
	m := &basicDeliver{
		ConsumerTag: "worker-1",
		DeliveryTag: 9,
		Redelivered: true,
		Exchange:    "orders",
		RoutingKey:  "orders.created",
	}

	d := deliveryFromDeliver(ch, m, props, []byte("payload"))

	assert.Same(t, ch, d.Acknowledger)
	assert.Equal(t, "text/plain", d.ContentType)
	assert.Equal(t, "corr-1", d.CorrelationId)
	assert.Equal(t, "worker-1", d.ConsumerTag)
	assert.Equal(t, uint64(9), d.DeliveryTag)
	assert.True(t, d.Redelivered)
	assert.Equal(t, "orders", d.Exchange)
	assert.Equal(t, "orders.created", d.RoutingKey)
	assert.Equal(t, []byte("payload"), d.Body)
}

func TestDeliveryFromGetOkCarriesMessageCount(t *testing.T) {
	ch := &Channel{id: 1}
	m := &basicGetOk{DeliveryTag: 3, MessageCount: 41, Exchange: "x", RoutingKey: "rk"}

	d := deliveryFromGetOk(ch, m, properties{}, []byte("body"))

	assert.Equal(t, uint64(3), d.DeliveryTag)
	assert.Equal(t, uint32(41), d.MessageCount)
	assert.Equal(t, "x", d.Exchange)
	assert.Empty(t, d.ConsumerTag)
}

func TestReturnFromBasicReturn(t *testing.T) {
	m := &basicReturn{ReplyCode: 312, ReplyText: "NO_ROUTE", Exchange: "orders", RoutingKey: "nowhere"}
	props := properties{MessageId: "m-1"}

	r := returnFromBasicReturn(m, props, []byte("bounced"))

	assert.Equal(t, uint16(312), r.ReplyCode)
	assert.Equal(t, "NO_ROUTE", r.ReplyText)
	assert.Equal(t, "m-1", r.MessageId)
	assert.Equal(t, []byte("bounced"), r.Body)
}

func TestPublishingToPropertiesPreservesAllFields(t *testing.T) {
	p := Publishing{
		ContentType:   "application/json",
		DeliveryMode:  2,
		Priority:      9,
		CorrelationId: "c",
		MessageId:     "mid",
		AppId:         "svc",
	}

	props := publishingToProperties(p)

	assert.Equal(t, p.ContentType, props.ContentType)
	assert.Equal(t, p.DeliveryMode, props.DeliveryMode)
	assert.Equal(t, p.Priority, props.Priority)
	assert.Equal(t, p.CorrelationId, props.CorrelationId)
	assert.Equal(t, p.MessageId, props.MessageId)
	assert.Equal(t, p.AppId, props.AppId)
}
